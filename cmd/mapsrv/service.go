/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"

	"github.com/Comcast/remap/core"
	"github.com/Comcast/remap/funcs"
	"github.com/Comcast/remap/funcs/ecmascript"
	"github.com/Comcast/remap/tools"
)

// Service maps documents using templates given inline or by reference
// to stored templates.
type Service struct {
	store *Storage
	fs    core.FuncMap
}

// NewService opens the store and assembles the function table: the
// builtins plus any compiled library sources.
func NewService(ctx context.Context, storeFile, libsFile string) (*Service, error) {
	store, err := NewStorage(storeFile)
	if err != nil {
		return nil, err
	}
	if err = store.Open(ctx); err != nil {
		return nil, err
	}

	fs := funcs.Standard()
	if libsFile != "" {
		srcs, err := tools.LoadLibs(libsFile)
		if err != nil {
			return nil, err
		}
		compiled, err := ecmascript.NewInterpreter().CompileFuncs(srcs)
		if err != nil {
			return nil, err
		}
		for name, f := range compiled {
			fs[name] = f
		}
	}

	return &Service{
		store: store,
		fs:    fs,
	}, nil
}

// MapRequest asks for one evaluation.
//
// Exactly one of Template and TemplateRef should be given.
type MapRequest struct {
	// Id is an opaque tag echoed in the response.
	Id string `json:"id,omitempty"`

	Source   interface{} `json:"source"`
	Template interface{} `json:"template,omitempty"`

	// TemplateRef names a stored template.
	TemplateRef string `json:"templateRef,omitempty"`
}

// MapResponse reports one evaluation.
type MapResponse struct {
	Id     string      `json:"id,omitempty"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Process runs one request.  Evaluation problems are reported in the
// response, not as an error.
func (s *Service) Process(ctx context.Context, req *MapRequest) *MapResponse {
	resp := &MapResponse{
		Id: req.Id,
	}

	template := req.Template
	if template == nil && req.TemplateRef != "" {
		var err error
		if template, err = s.store.GetTemplate(ctx, req.TemplateRef); err != nil {
			resp.Error = err.Error()
			return resp
		}
	}
	if template == nil {
		resp.Error = errors.New("need a template or a templateRef").Error()
		return resp
	}

	out, err := core.Map(ctx, req.Source, template, s.fs, nil)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	resp.Result = core.Scrub(out)
	return resp
}
