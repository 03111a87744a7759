package subprocess

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
)

// PandocTimeout bounds a single Pandoc invocation (spec §4.6).
const PandocTimeout = 120 * time.Second

// pandocRenameTable maps Pandoc-specific metadata keys to the canonical
// names this library exposes, per spec §4.6.
var pandocRenameTable = map[string]string{
	"abstract":     "summary",
	"date":         "created_at",
	"author":       "authors",
	"contributors": "authors",
	"institute":    "organization",
}

// pandocMetadataAllowList is the fixed set of canonical metadata keys
// preserved from a Pandoc AST's "meta" block; anything else is dropped
// (spec §4.6, §9).
var pandocMetadataAllowList = map[string]struct{}{
	"title":        {},
	"summary":      {},
	"created_at":   {},
	"authors":      {},
	"organization": {},
	"subject":      {},
	"keywords":     {},
	"description":  {},
}

// PandocResult is the combined content + metadata extracted from a single
// Pandoc invocation's JSON AST, avoiding a second spawn for metadata alone
// (spec §4.6: "halving spawn cost vs. separate content and metadata
// invocations").
type PandocResult struct {
	Markdown string
	Metadata map[string]any
}

type pandocInline struct {
	Type string            `json:"t"`
	C    json.RawMessage   `json:"c,omitempty"`
}

type pandocMetaValue struct {
	Type string          `json:"t"`
	C    json.RawMessage `json:"c"`
}

type pandocAST struct {
	Meta   map[string]pandocMetaValue `json:"meta"`
	Blocks []json.RawMessage         `json:"blocks"`
}

// ConvertViaPandoc invokes `pandoc -f <fromFormat> -t json` on data and
// parses the resulting AST into Markdown-ish content plus canonicalized
// metadata, in one subprocess call.
func ConvertViaPandoc(ctx context.Context, data []byte, fromFormat string) (PandocResult, error) {
	in, err := NewTempFile("", "kreuzberg-pandoc-in-*", data)
	if err != nil {
		return PandocResult{}, err
	}
	defer in.Close()

	res, err := Run(ctx, PandocTimeout, "pandoc", "-f", fromFormat, "-t", "json", in.Path)
	if err != nil {
		return PandocResult{}, err
	}

	var ast pandocAST
	if err := json.Unmarshal(res.Stdout, &ast); err != nil {
		return PandocResult{}, kerrors.New(kerrors.Parsing, "pandoc.parse_ast", err)
	}

	metadata := canonicalizePandocMeta(ast.Meta)
	content := renderPandocBlocksAsMarkdown(ast.Blocks)
	return PandocResult{Markdown: content, Metadata: metadata}, nil
}

func canonicalizePandocMeta(meta map[string]pandocMetaValue) map[string]any {
	out := make(map[string]any, len(meta))
	for rawKey, v := range meta {
		key := rawKey
		if renamed, ok := pandocRenameTable[rawKey]; ok {
			key = renamed
		}
		if _, allowed := pandocMetadataAllowList[key]; !allowed {
			continue
		}
		out[key] = flattenPandocMetaValue(v)
	}
	return out
}

func flattenPandocMetaValue(v pandocMetaValue) string {
	switch v.Type {
	case "MetaString":
		var s string
		_ = json.Unmarshal(v.C, &s)
		return s
	case "MetaList":
		var items []pandocMetaValue
		_ = json.Unmarshal(v.C, &items)
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, flattenPandocMetaValue(item))
		}
		return strings.Join(parts, ", ")
	case "MetaInlines":
		var inlines []pandocInline
		_ = json.Unmarshal(v.C, &inlines)
		var sb strings.Builder
		for _, inl := range inlines {
			if inl.Type == "Str" {
				var s string
				_ = json.Unmarshal(inl.C, &s)
				sb.WriteString(s)
			} else if inl.Type == "Space" {
				sb.WriteByte(' ')
			}
		}
		return sb.String()
	default:
		return ""
	}
}

// renderPandocBlocksAsMarkdown is a minimal AST-to-Markdown projection
// covering the block shapes needed to exercise the dispatcher end-to-end;
// a production-grade renderer belongs to a full Pandoc-AST library, out of
// this CORE's scope (only the extraction contract is in-scope per spec §1).
func renderPandocBlocksAsMarkdown(blocks []json.RawMessage) string {
	var sb strings.Builder
	for _, raw := range blocks {
		var block struct {
			Type string          `json:"t"`
			C    json.RawMessage `json:"c"`
		}
		if err := json.Unmarshal(raw, &block); err != nil {
			continue
		}
		switch block.Type {
		case "Para", "Plain":
			var inlines []pandocInline
			_ = json.Unmarshal(block.C, &inlines)
			for _, inl := range inlines {
				if inl.Type == "Str" {
					var s string
					_ = json.Unmarshal(inl.C, &s)
					sb.WriteString(s)
				} else if inl.Type == "Space" {
					sb.WriteByte(' ')
				}
			}
			sb.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(sb.String())
}
