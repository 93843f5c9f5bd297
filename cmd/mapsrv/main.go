// Package main is a little HTTP service that maps documents with
// stored or inline templates.
//
//	mapsrv -h :8080 -d templates.db -libs libs.yaml
//
// Then:
//
//	curl -X PUT -d '{"name":{"source":"user.name"}}' localhost:8080/templates/demo
//	curl -d '{"source":{"user":{"name":"homer"}},"templateRef":"demo"}' localhost:8080/map
package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"github.com/Comcast/remap/util"
)

func main() {

	var (
		dbFile   = flag.String("d", "templates.db", "storage filename")
		libsFile = flag.String("libs", "", "filename for ECMAScript function sources")

		httpPort  = flag.String("h", ":8080", "HTTP port for our service")
		wsService = flag.Bool("w", true, "WebSockets service")
		httpDir   = flag.String("f", "", "directory to serve via HTTP")
	)

	flag.BoolVar(&util.Logging, "v", false, "log lots of wonderful things")

	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := NewService(ctx, *dbFile, *libsFile)
	if err != nil {
		panic(err)
	}
	s.store.Debug = util.Logging
	defer s.store.Close(ctx) // ToDo: Check error.

	if *wsService {
		log.Printf("WebSockets service starting")
		if err := s.WebSocketService(ctx); err != nil {
			panic(err)
		}
	}

	if *httpDir != "" {
		log.Printf("HTTP serving files in %s", *httpDir)
		fs := http.FileServer(http.Dir(*httpDir))
		http.Handle("/static/", http.StripPrefix("/static", fs))
	}

	log.Printf("HTTP service on %s", *httpPort)
	if err := s.HTTPServer(ctx, *httpPort); err != nil {
		panic(err)
	}
}
