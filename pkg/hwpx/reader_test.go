package hwpx

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"docqa-be/pkg/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildHwpx(t *testing.T, sections map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range sections {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractText(t *testing.T) {
	data := buildHwpx(t, map[string]string{
		"Contents/section0.xml": `<sec><p><run><t>첫 문단</t></run></p><p><run><t>둘째 문단</t></run></p></sec>`,
		"mimetype":              "application/hwp+zip",
	})

	doc, err := Extract(data)
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "첫 문단")
	assert.Contains(t, doc.Text, "둘째 문단")
	assert.Equal(t, "hwpx", doc.Engine)
	assert.Empty(t, doc.Tables)
}

func TestExtractCountsTables(t *testing.T) {
	data := buildHwpx(t, map[string]string{
		"Contents/section0.xml": `<sec><p><run><t>before</t></run></p><tbl><tr><tc><t>cell</t></tc></tr></tbl></sec>`,
	})

	doc, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	assert.Equal(t, "hwpx", doc.Tables[0].Source)
}

func TestExtractOrdersSections(t *testing.T) {
	data := buildHwpx(t, map[string]string{
		"Contents/section1.xml": `<sec><p><t>second</t></p></sec>`,
		"Contents/section0.xml": `<sec><p><t>first</t></p></sec>`,
	})

	doc, err := Extract(data)
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(doc.Text), []byte("first")), bytes.Index([]byte(doc.Text), []byte("second")))
}

func TestExtractRejectsNonZip(t *testing.T) {
	_, err := Extract([]byte("not a zip archive"))
	var parseErr *parser.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestExtractRejectsZipWithoutSections(t *testing.T) {
	data := buildHwpx(t, map[string]string{"mimetype": "application/hwp+zip"})
	_, err := Extract(data)
	var parseErr *parser.ParseError
	assert.True(t, errors.As(err, &parseErr))
}
