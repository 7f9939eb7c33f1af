package hwpx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"docqa-be/pkg/parser"
)

// Extract opens an HWPX document (a ZIP container), walks every
// Contents/section*.xml in order, and returns the concatenated text plus a
// minimal table stub per <tbl> element. The stubs only mark that a table was
// seen; HWPX table cells are flattened into the prose stream.
func Extract(data []byte) (*parser.ParsedDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &parser.ParseError{Reason: "open hwpx container", Err: err}
	}

	var sections []*zip.File
	for _, f := range zr.File {
		dir, name := path.Split(f.Name)
		if dir == "Contents/" && strings.HasPrefix(name, "section") && strings.HasSuffix(name, ".xml") {
			sections = append(sections, f)
		}
	}
	if len(sections) == 0 {
		return nil, &parser.ParseError{Reason: "no Contents/section*.xml in hwpx"}
	}
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Name < sections[j].Name
	})

	var text strings.Builder
	var tables []parser.RawTable
	for _, f := range sections {
		rc, err := f.Open()
		if err != nil {
			return nil, &parser.ParseError{Reason: "open " + f.Name, Err: err}
		}
		nTables, err := walkSection(rc, &text)
		rc.Close()
		if err != nil {
			return nil, &parser.ParseError{Reason: "parse " + f.Name, Err: err}
		}
		for i := 0; i < nTables; i++ {
			tables = append(tables, parser.RawTable{Source: "hwpx"})
		}
	}

	return &parser.ParsedDocument{
		Text:     text.String(),
		Tables:   tables,
		Engine:   "hwpx",
		Pictures: nil,
	}, nil
}

// walkSection streams one section document, appending character data of <t>
// elements and counting <tbl> occurrences.
func walkSection(r io.Reader, out *strings.Builder) (int, error) {
	dec := xml.NewDecoder(r)
	tables := 0
	inText := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("xml token: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tables++
			case "t":
				inText++
			case "p":
				if out.Len() > 0 {
					out.WriteString("\n")
				}
			}
		case xml.EndElement:
			if t.Name.Local == "t" && inText > 0 {
				inText--
			}
		case xml.CharData:
			if inText > 0 {
				out.Write([]byte(t))
			}
		}
	}
	return tables, nil
}
