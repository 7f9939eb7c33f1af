package context

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docqa-be/internal/entity"
)

const (
	// A single fragment contributes at most this many characters; longer
	// content keeps its head and tail.
	maxFragmentChars = 1600
	headTailChars    = 800

	// The whole composed context is capped at this many characters.
	maxContextChars = 4000
)

// Source identifies one document that contributed to the answer.
type Source struct {
	Filename   string  `json:"filename"`
	Page       *int    `json:"page,omitempty"`
	Type       string  `json:"type"`
	Similarity float64 `json:"similarity"`
}

// Compose walks fragments in retrieval-ranked order, trims each one, and
// accumulates <document> blocks until the context budget is exhausted. The
// sources list covers exactly the fragments that made it in.
func Compose(ranked []*entity.ScoredFragment) (string, []Source) {
	var b strings.Builder
	var sources []Source
	used := 0 // characters (runes) written so far

	for _, sf := range ranked {
		content := trimMiddle(sf.Fragment.Content)
		block := fmt.Sprintf("<document source=%q page=%q type=%q>\n%s\n</document>\n",
			sf.Fragment.Metadata.Filepath,
			pageLabel(sf.Fragment.Metadata.Page),
			sf.Fragment.Metadata.Type,
			content,
		)
		blockChars := utf8.RuneCountInString(block)
		if used+blockChars > maxContextChars && used > 0 {
			break
		}
		b.WriteString(block)
		used += blockChars
		sources = append(sources, Source{
			Filename:   sf.Fragment.Metadata.Filepath,
			Page:       sf.Fragment.Metadata.Page,
			Type:       sf.Fragment.Metadata.Type,
			Similarity: sf.Similarity,
		})
		if used >= maxContextChars {
			break
		}
	}
	return b.String(), sources
}

// trimMiddle keeps the first and last 800 characters of over-long content,
// collapsing the middle.
func trimMiddle(content string) string {
	runes := []rune(content)
	if len(runes) <= maxFragmentChars {
		return content
	}
	return string(runes[:headTailChars]) + "...\n" + string(runes[len(runes)-headTailChars:])
}

func pageLabel(page *int) string {
	if page == nil {
		return ""
	}
	return fmt.Sprintf("%d", *page)
}
