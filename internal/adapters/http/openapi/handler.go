// Package openapi serves the API description.
package openapi

import (
	"context"
	_ "embed"
	"net/http"
)

// Document is the embedded OpenAPI description of the HTTP API.
//
//go:embed openapi.yaml
var Document []byte

// Register attaches GET /openapi.yaml to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(Document)
	})
}
