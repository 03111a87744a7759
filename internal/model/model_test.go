package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTablePadsRaggedRows(t *testing.T) {
	tbl := NewTable([][]string{
		{"a", "b", "c"},
		{"d"},
		{"e", "f"},
	}, 2)
	for _, row := range tbl.Cells {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, []string{"d", "", ""}, tbl.Cells[1])
	assert.Equal(t, 2, tbl.Page)
}

func TestNewExtractionResultDefaultsMimeType(t *testing.T) {
	r := NewExtractionResult("hello", "")
	assert.Equal(t, "application/octet-stream", r.MimeType)
	assert.Equal(t, "hello", r.Content)
}

func TestPostprocessorConfigWhitelistTakesPrecedence(t *testing.T) {
	cfg := &PostprocessorConfig{
		Enabled:            true,
		EnabledProcessors:  map[string]struct{}{"p1": {}, "p3": {}},
		DisabledProcessors: map[string]struct{}{"p1": {}},
	}
	assert.True(t, cfg.ShouldRun("p1"))
	assert.True(t, cfg.ShouldRun("p3"))
	assert.False(t, cfg.ShouldRun("p2"))
}

func TestPostprocessorConfigEmptyWhitelistDisablesAll(t *testing.T) {
	cfg := &PostprocessorConfig{Enabled: true, EnabledProcessors: map[string]struct{}{}}
	assert.False(t, cfg.ShouldRun("anything"))
}

func TestPostprocessorConfigNilMeansRunAll(t *testing.T) {
	var cfg *PostprocessorConfig
	assert.True(t, cfg.ShouldRun("p1"))
}

func TestResolvedConcurrencyDefaultsPositive(t *testing.T) {
	cfg := ExtractionConfig{}
	assert.Greater(t, cfg.ResolvedConcurrency(), 0)
	cfg.MaxConcurrentExtractions = 7
	assert.Equal(t, 7, cfg.ResolvedConcurrency())
}
