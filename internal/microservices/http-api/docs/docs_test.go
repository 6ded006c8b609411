package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentDecodesAndListsRoutes(t *testing.T) {
	doc, err := Document()
	require.NoError(t, err)

	assert.Equal(t, "3.0.3", doc["openapi"])
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	for _, p := range []string{"/recipes", "/recipes/{id}", "/recipes/{id}/ingredients", "/ingredients", "/ingredients/{id}/recipes"} {
		assert.Contains(t, paths, p)
	}

	// yaml.v3 decodes nested maps as map[string]any, so the tree must survive encoding/json
	_, err = json.Marshal(doc)
	assert.NoError(t, err)
}

func TestYAMLIsEmbedded(t *testing.T) {
	assert.Contains(t, string(YAML()), "Recipe Book API")
}
