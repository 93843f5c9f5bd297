package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"

	"github.com/Comcast/remap/tools"
)

var templatePath = regexp.MustCompile(`^/templates/([-a-zA-Z0-9_.]+)$`)
var templateHTMLPath = regexp.MustCompile(`^/templates/([-a-zA-Z0-9_.]+)\.html$`)

func (s *Service) HTTPServer(ctx context.Context, port string) error {
	complain := func(w http.ResponseWriter, x interface{}, status int) {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error":"%s"}`+"\n", x)
	}

	respond := func(w http.ResponseWriter, x interface{}) {
		js, err := json.Marshal(x)
		if err != nil {
			complain(w, err, http.StatusInternalServerError)
			return
		}
		if _, err = w.Write(append(js, '\n')); err != nil {
			log.Printf("Service.HTTPServer warning on Write(): %v", err)
		}
	}

	http.Handle("/map", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		js, err := io.ReadAll(r.Body)
		if err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}
		if err := r.Body.Close(); err != nil {
			log.Printf("Service.HTTPServer warning on Body.Close(): %v", err)
		}

		var req MapRequest
		if err := json.Unmarshal(js, &req); err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}
		respond(w, s.Process(ctx, &req))
	}))

	http.Handle("/templates", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		names, err := s.store.ListTemplates(ctx)
		if err != nil {
			complain(w, err, http.StatusInternalServerError)
			return
		}
		respond(w, names)
	}))

	http.Handle("/templates/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ss := templateHTMLPath.FindStringSubmatch(r.URL.Path); ss != nil {
			template, err := s.store.GetTemplate(ctx, ss[1])
			if err != nil {
				complain(w, err, http.StatusNotFound)
				return
			}
			if err = tools.RenderTemplatePage(ss[1], template, w, nil); err != nil {
				complain(w, err, http.StatusInternalServerError)
			}
			return
		}

		ss := templatePath.FindStringSubmatch(r.URL.Path)
		if ss == nil {
			complain(w, "no template name in "+r.URL.Path, http.StatusBadRequest)
			return
		}
		name := ss[1]

		switch r.Method {
		case http.MethodGet:
			template, err := s.store.GetTemplate(ctx, name)
			if err != nil {
				complain(w, err, http.StatusNotFound)
				return
			}
			respond(w, template)
		case http.MethodPut, http.MethodPost:
			js, err := io.ReadAll(r.Body)
			if err != nil {
				complain(w, err, http.StatusBadRequest)
				return
			}
			template, err := tools.ParseTemplate(js)
			if err != nil {
				complain(w, err, http.StatusBadRequest)
				return
			}
			if err = s.store.PutTemplate(ctx, name, template); err != nil {
				complain(w, err, http.StatusInternalServerError)
				return
			}
			respond(w, name)
		case http.MethodDelete:
			if err := s.store.RemTemplate(ctx, name); err != nil {
				complain(w, err, http.StatusInternalServerError)
				return
			}
			respond(w, name)
		default:
			complain(w, "unsupported method "+r.Method, http.StatusMethodNotAllowed)
		}
	}))

	return http.ListenAndServe(port, nil)
}
