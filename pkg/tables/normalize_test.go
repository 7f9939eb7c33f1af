package tables

import (
	"strconv"
	"strings"
	"testing"

	"docqa-be/pkg/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFromHTML(t *testing.T) {
	raw := &parser.RawTable{
		HTML: `<table><tr><th>분기</th><th>매출</th></tr><tr><td>1Q</td><td>1,200</td></tr><tr><td>2Q</td><td>1,500</td></tr></table>`,
	}
	norm, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"분기", "매출"}, norm.Header)
	require.Len(t, norm.Rows, 2)
	assert.Equal(t, []string{"1Q", "1,200"}, norm.Rows[0])
	assert.Equal(t, 2, norm.NCols)
	assert.Equal(t, 2, norm.NRows)
	assert.Contains(t, norm.TSV, "분기\t매출")
	assert.Contains(t, norm.MD, "| 분기 | 매출 |")
	assert.Equal(t, raw.HTML, norm.HTML)
}

func TestNormalizeFromMetadataHTML(t *testing.T) {
	raw := &parser.RawTable{
		Metadata: map[string]interface{}{
			"text_as_html": `<table><tr><td>h1</td></tr><tr><td>v1</td></tr></table>`,
		},
	}
	norm, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"h1"}, norm.Header)
	require.Len(t, norm.Rows, 1)
}

func TestNormalizeFromRowsWithHeader(t *testing.T) {
	raw := &parser.RawTable{
		Header: []string{"name", "score"},
		Rows:   [][]string{{"kim", "90"}, {"lee", "85"}},
	}
	norm, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "score"}, norm.Header)
	assert.Contains(t, norm.HTML, "<th>name</th>")
}

func TestNormalizeSynthesizesHeaderFromRows(t *testing.T) {
	raw := &parser.RawTable{
		Rows: [][]string{{"a", "b", "c"}},
	}
	norm, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"col_1", "col_2", "col_3"}, norm.Header)
}

func TestNormalizeFromPreviewRows(t *testing.T) {
	raw := &parser.RawTable{
		PreviewRows: [][]string{{"h1", "h2"}, {"v1", "v2"}},
	}
	norm, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "h2"}, norm.Header)
	require.Len(t, norm.Rows, 1)
	assert.Equal(t, []string{"v1", "v2"}, norm.Rows[0])
}

func TestNormalizeEmptyTableFails(t *testing.T) {
	_, err := Normalize(&parser.RawTable{})
	assert.Error(t, err)
}

func TestNormalizePadsRaggedRows(t *testing.T) {
	raw := &parser.RawTable{
		Header: []string{"a", "b", "c"},
		Rows:   [][]string{{"1"}, {"1", "2", "3"}},
	}
	norm, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "", ""}, norm.Rows[0])
}

func TestMarkdownTruncatesAtThirtyRows(t *testing.T) {
	var rows [][]string
	for i := 0; i < 50; i++ {
		rows = append(rows, []string{strconv.Itoa(i)})
	}
	raw := &parser.RawTable{Header: []string{"n"}, Rows: rows}
	norm, err := Normalize(raw)
	require.NoError(t, err)

	assert.Contains(t, norm.MD, "20 more rows")
	assert.Equal(t, 50, norm.NRows)
	// the TSV keeps everything
	assert.Equal(t, 51, len(strings.Split(norm.TSV, "\n")))
}
