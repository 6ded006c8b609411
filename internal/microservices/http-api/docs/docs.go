// Package docs serves the OpenAPI description of the HTTP API.
package docs

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// YAML returns the document as written.
func YAML() []byte {
	return openAPIYAML
}

// Document decodes the embedded YAML into a JSON-encodable tree.
func Document() (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openAPIYAML, &doc); err != nil {
		return nil, fmt.Errorf("decode openapi document: %w", err)
	}
	return doc, nil
}
