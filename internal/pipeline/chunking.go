package pipeline

import (
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/model"
)

// chunkContent splits content into overlapping chunks of approximately
// maxChars runes, trimmed of surrounding whitespace, with maxOverlap runes
// of trailing context repeated at the start of the next chunk (spec §4.4
// step 3).
func chunkContent(content string, maxChars, maxOverlap int) []model.Chunk {
	if maxChars <= 0 || content == "" {
		return nil
	}
	if maxOverlap < 0 || maxOverlap >= maxChars {
		maxOverlap = 0
	}

	runes := []rune(content)
	var chunks []model.Chunk
	start := 0
	index := 0
	for start < len(runes) {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		text := strings.TrimSpace(string(runes[start:end]))
		if text != "" {
			chunks = append(chunks, model.Chunk{Text: text, Index: index})
			index++
		}
		if end == len(runes) {
			break
		}
		start = end - maxOverlap
	}
	return chunks
}
