package subprocess

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizePandocMetaRenamesAndFilters(t *testing.T) {
	raw := map[string]pandocMetaValue{
		"abstract":  {Type: "MetaString", C: json.RawMessage(`"a summary"`)},
		"date":      {Type: "MetaString", C: json.RawMessage(`"2024-01-01"`)},
		"author":    {Type: "MetaString", C: json.RawMessage(`"Jane Doe"`)},
		"institute": {Type: "MetaString", C: json.RawMessage(`"Acme Labs"`)},
		"unknown-key": {Type: "MetaString", C: json.RawMessage(`"dropped"`)},
	}
	out := canonicalizePandocMeta(raw)

	assert.Equal(t, "a summary", out["summary"])
	assert.Equal(t, "2024-01-01", out["created_at"])
	assert.Equal(t, "Jane Doe", out["authors"])
	assert.Equal(t, "Acme Labs", out["organization"])
	assert.NotContains(t, out, "unknown-key")
	assert.NotContains(t, out, "abstract")
}

func TestRenderPandocBlocksAsMarkdown(t *testing.T) {
	blocks := []json.RawMessage{
		json.RawMessage(`{"t":"Para","c":[{"t":"Str","c":"Hello"},{"t":"Space"},{"t":"Str","c":"world"}]}`),
	}
	content := renderPandocBlocksAsMarkdown(blocks)
	assert.Equal(t, "Hello world", content)
}
