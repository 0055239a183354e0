// Package apiserver provides the JSON API HTTP server and its OpenAPI document
package apiserver

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec embed.FS

// OpenAPIHandler serves the API description as YAML and JSON
type OpenAPIHandler struct {
	logger   *zap.Logger
	yamlSpec []byte
	jsonSpec []byte
}

// NewOpenAPIHandler loads the embedded document and prepares its JSON form
func NewOpenAPIHandler(logger *zap.Logger) (*OpenAPIHandler, error) {
	specData, err := openAPISpec.ReadFile("openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI spec: %w", err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(specData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert OpenAPI spec to JSON: %w", err)
	}

	return &OpenAPIHandler{
		logger:   logger,
		yamlSpec: specData,
		jsonSpec: jsonData,
	}, nil
}

// ServeOpenAPISpec serves the OpenAPI specification in YAML format
func (h *OpenAPIHandler) ServeOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	h.write(w, "application/x-yaml", h.yamlSpec)
}

// ServeOpenAPIJSON serves the OpenAPI specification in JSON format
func (h *OpenAPIHandler) ServeOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	h.write(w, "application/json", h.jsonSpec)
}

func (h *OpenAPIHandler) write(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("Failed to write OpenAPI spec", zap.Error(err))
	}
}
