package tables

import (
	"fmt"
	"strings"

	"docqa-be/pkg/parser"

	"golang.org/x/net/html"
)

// Markdown rendering stops after this many data rows; the full table lives in
// the TSV and HTML forms.
const maxMarkdownRows = 30

// Normalized is the canonical table shape every extractor variant converges
// to.
type Normalized struct {
	Header []string
	Rows   [][]string
	TSV    string
	MD     string
	HTML   string
	NRows  int
	NCols  int
}

// Normalize converges the extractor's table variants onto one shape:
// HTML first, explicit rows/header second, preview rows last.
func Normalize(t *parser.RawTable) (*Normalized, error) {
	htmlSrc := t.HTML
	if htmlSrc == "" && t.Metadata != nil {
		if s, ok := t.Metadata["text_as_html"].(string); ok {
			htmlSrc = s
		}
	}

	var header []string
	var rows [][]string

	switch {
	case htmlSrc != "":
		var err error
		header, rows, err = parseHTMLTable(htmlSrc)
		if err != nil {
			return nil, err
		}
	case len(t.Rows) > 0 || len(t.Header) > 0:
		header = t.Header
		rows = t.Rows
		if len(header) == 0 && len(rows) > 0 {
			header = syntheticHeader(len(rows[0]))
		}
	case len(t.PreviewRows) > 0:
		header = t.PreviewRows[0]
		rows = t.PreviewRows[1:]
	default:
		return nil, fmt.Errorf("table has no html, rows, or preview rows")
	}

	nCols := len(header)
	for _, r := range rows {
		if len(r) > nCols {
			nCols = len(r)
		}
	}
	if t.NCols != nil && *t.NCols > nCols {
		nCols = *t.NCols
	}
	nRows := len(rows)
	if t.NRows != nil && *t.NRows > nRows {
		nRows = *t.NRows
	}

	out := &Normalized{
		Header: pad(header, nCols),
		NRows:  nRows,
		NCols:  nCols,
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, pad(r, nCols))
	}
	out.TSV = renderTSV(out.Header, out.Rows)
	out.MD = renderMarkdown(out.Header, out.Rows)
	if htmlSrc != "" {
		out.HTML = htmlSrc
	} else {
		out.HTML = renderHTML(out.Header, out.Rows)
	}
	return out, nil
}

func syntheticHeader(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("col_%d", i+1)
	}
	return out
}

func pad(row []string, n int) []string {
	if len(row) >= n {
		return row[:n]
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

// parseHTMLTable takes the first <tr> as header and the remainder as data
// rows. Both <td> and <th> cells count.
func parseHTMLTable(src string) ([]string, [][]string, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, nil, fmt.Errorf("parse table html: %w", err)
	}

	var trs []*html.Node
	var findRows func(*html.Node)
	findRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			trs = append(trs, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findRows(c)
		}
	}
	findRows(root)
	if len(trs) == 0 {
		return nil, nil, fmt.Errorf("table html has no rows")
	}

	extractCells := func(tr *html.Node) []string {
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cells = append(cells, strings.TrimSpace(nodeText(c)))
			}
		}
		return cells
	}

	header := extractCells(trs[0])
	var rows [][]string
	for _, tr := range trs[1:] {
		rows = append(rows, extractCells(tr))
	}
	return header, rows, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func renderTSV(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(sanitizeRow(header, "\t"), "\t"))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(strings.Join(sanitizeRow(r, "\t"), "\t"))
	}
	return b.String()
}

func renderMarkdown(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(sanitizeRow(header, "|"), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for i, r := range rows {
		if i >= maxMarkdownRows {
			b.WriteString(fmt.Sprintf("| … %d more rows … |\n", len(rows)-maxMarkdownRows))
			break
		}
		b.WriteString("| " + strings.Join(sanitizeRow(r, "|"), " | ") + " |\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderHTML(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("<table><tr>")
	for _, h := range header {
		b.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	b.WriteString("</tr>")
	for _, r := range rows {
		b.WriteString("<tr>")
		for _, c := range r {
			b.WriteString("<td>" + html.EscapeString(c) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// sanitizeRow keeps delimiters out of flat renderings.
func sanitizeRow(row []string, delim string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		c = strings.ReplaceAll(c, "\n", " ")
		out[i] = strings.ReplaceAll(c, delim, " ")
	}
	return out
}
