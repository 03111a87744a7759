package ocr

import (
	"encoding/csv"
	"sort"
	"strconv"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/model"
)

// tsvRow mirrors a single line of tesseract's TSV output format.
type tsvRow struct {
	left, top, width, height int
	confidence               float64
	text                     string
}

// reconstructTableFromTSV parses tesseract TSV output, filters by
// table_min_confidence, clusters words into rows/columns using the
// configured thresholds, and renders a single Markdown table (spec §4.5
// step 7).
func reconstructTableFromTSV(tsv string, cfg model.OCRConfig) (model.Table, bool) {
	rows, err := parseTSV(tsv, cfg.TableMinConfidence)
	if err != nil || len(rows) == 0 {
		return model.Table{}, false
	}

	rowThreshold := cfg.TableRowThresholdRatio
	if rowThreshold <= 0 {
		rowThreshold = 0.5
	}
	colThreshold := cfg.TableColumnThreshold
	if colThreshold <= 0 {
		colThreshold = 20
	}

	lines := clusterIntoRows(rows, rowThreshold)
	cells := make([][]string, 0, len(lines))
	for _, line := range lines {
		cells = append(cells, clusterIntoColumns(line, colThreshold))
	}

	table := model.NewTable(cells, 0)
	table.Markdown = renderMarkdownTable(table.Cells)
	return table, true
}

func parseTSV(tsv string, minConfidence float64) ([]tsvRow, error) {
	reader := csv.NewReader(strings.NewReader(tsv))
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil || len(records) < 2 {
		return nil, err
	}

	header := records[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		return -1
	}
	leftIdx, topIdx, widthIdx, heightIdx := col("left"), col("top"), col("width"), col("height")
	confIdx, textIdx := col("conf"), col("text")
	if leftIdx < 0 || topIdx < 0 || confIdx < 0 || textIdx < 0 {
		return nil, nil
	}

	var rows []tsvRow
	for _, rec := range records[1:] {
		if textIdx >= len(rec) || strings.TrimSpace(rec[textIdx]) == "" {
			continue
		}
		conf, _ := strconv.ParseFloat(rec[confIdx], 64)
		if conf < minConfidence*100 {
			continue
		}
		left, _ := strconv.Atoi(rec[leftIdx])
		top, _ := strconv.Atoi(rec[topIdx])
		width, height := 0, 0
		if widthIdx >= 0 && widthIdx < len(rec) {
			width, _ = strconv.Atoi(rec[widthIdx])
		}
		if heightIdx >= 0 && heightIdx < len(rec) {
			height, _ = strconv.Atoi(rec[heightIdx])
		}
		rows = append(rows, tsvRow{left: left, top: top, width: width, height: height, confidence: conf, text: rec[textIdx]})
	}
	return rows, nil
}

// clusterIntoRows sorts words by top edge and starts a new row whenever a
// word's top edge is more than rowThresholdRatio * mean word height below
// the previous word's top edge.
func clusterIntoRows(words []tsvRow, rowThresholdRatio float64) [][]tsvRow {
	sorted := append([]tsvRow(nil), words...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].top < sorted[j].top })

	avgHeight := 0.0
	for _, w := range sorted {
		avgHeight += float64(w.height)
	}
	if len(sorted) > 0 {
		avgHeight /= float64(len(sorted))
	}
	threshold := avgHeight * rowThresholdRatio
	if threshold <= 0 {
		threshold = 10
	}

	var lines [][]tsvRow
	var current []tsvRow
	lastTop := -1.0
	for _, w := range sorted {
		top := float64(w.top)
		if current != nil && top-lastTop > threshold {
			lines = append(lines, current)
			current = nil
		}
		current = append(current, w)
		lastTop = top
	}
	if current != nil {
		lines = append(lines, current)
	}
	return lines
}

// clusterIntoColumns sorts a row's words left-to-right and merges a word
// into the current cell when the gap between the previous word's right
// edge and its left edge is at most colThreshold pixels.
func clusterIntoColumns(line []tsvRow, colThreshold int) []string {
	sorted := append([]tsvRow(nil), line...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].left < sorted[j].left })

	var cells []string
	var builder strings.Builder
	lastRight := -1
	for _, w := range sorted {
		if builder.Len() > 0 && w.left-lastRight > colThreshold {
			cells = append(cells, strings.TrimSpace(builder.String()))
			builder.Reset()
		} else if builder.Len() > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(w.text)
		lastRight = w.left + w.width
	}
	if builder.Len() > 0 {
		cells = append(cells, strings.TrimSpace(builder.String()))
	}
	return cells
}

func renderMarkdownTable(cells [][]string) string {
	if len(cells) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, row := range cells {
		sb.WriteString("| ")
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteString(" |\n")
		if i == 0 {
			sb.WriteString("|")
			for range row {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
