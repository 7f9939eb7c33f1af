package parser

import "fmt"

// ParseError reports a parser subprocess that exited nonzero or produced
// unusable stdout.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Err)
	}
	return "parse error: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RawTable is one table as reported by the extractor. All fields are
// optional; normalization happens downstream.
type RawTable struct {
	Page        *int                   `json:"page,omitempty"`
	Caption     string                 `json:"caption,omitempty"`
	HTML        string                 `json:"html,omitempty"`
	Header      []string               `json:"header,omitempty"`
	Rows        [][]string             `json:"rows,omitempty"`
	PreviewRows [][]string             `json:"preview_rows,omitempty"`
	NRows       *int                   `json:"n_rows,omitempty"`
	NCols       *int                   `json:"n_cols,omitempty"`
	ImagePath   string                 `json:"image_path,omitempty"`
	Source      string                 `json:"source,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// RawPicture is one extracted image.
type RawPicture struct {
	Page      *int   `json:"page,omitempty"`
	Caption   string `json:"caption,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
	Source    string `json:"source,omitempty"`
}

// ParsedDocument is the extractor's structured output for one source file.
type ParsedDocument struct {
	Text     string       `json:"text"`
	Tables   []RawTable   `json:"tables"`
	Pictures []RawPicture `json:"pictures"`
	Engine   string       `json:"engine,omitempty"`
}
