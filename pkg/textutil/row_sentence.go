package textutil

import (
	"regexp"
	"strconv"
	"strings"

	"docqa-be/internal/entity"
)

// RowSentence renders one table row as a deterministic sentence:
//
//	Table: {caption} | H1=v1; H2=v2; ...
//
// Re-ingesting the same table must produce byte-identical content, so no
// maps or locale-dependent formatting are involved.
func RowSentence(caption string, headers []string, row []string) string {
	var b strings.Builder
	b.WriteString("Table: ")
	b.WriteString(strings.TrimSpace(caption))
	b.WriteString(" | ")
	for i, cell := range row {
		if i > 0 {
			b.WriteString("; ")
		}
		header := ""
		if i < len(headers) {
			header = strings.TrimSpace(headers[i])
		}
		if header == "" {
			header = "col_" + strconv.Itoa(i+1)
		}
		b.WriteString(header)
		b.WriteString("=")
		b.WriteString(strings.TrimSpace(cell))
	}
	return b.String()
}

var cellValueRe = regexp.MustCompile(`^([\d.,+-]+)\s*([A-Za-z%]*)$`)

// NormalizeCell parses a cell as {value, unit, raw} when it looks numeric.
func NormalizeCell(raw string) entity.NormalizedCell {
	cell := entity.NormalizedCell{Raw: raw}
	m := cellValueRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return cell
	}
	numeric := strings.ReplaceAll(m[1], ",", "")
	v, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return cell
	}
	cell.Value = &v
	cell.Unit = m[2]
	return cell
}

// NormalizeRow maps NormalizeCell over a row.
func NormalizeRow(row []string) []entity.NormalizedCell {
	out := make([]entity.NormalizedCell, len(row))
	for i, cell := range row {
		out[i] = NormalizeCell(cell)
	}
	return out
}
