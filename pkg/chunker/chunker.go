package chunker

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// Chunk is one token-bounded window of the source text.
type Chunk struct {
	Text     string
	StartTok int
	EndTok   int
}

// Chunker splits text into overlapping token windows using a stable BPE
// tokenizer.
type Chunker struct {
	MaxTokens int
	Overlap   int
	enc       *tiktoken.Tiktoken
}

// New validates the window parameters up front; overlap must be strictly
// smaller than the window.
func New(maxTokens, overlap int) (*Chunker, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("chunker: max tokens must be positive, got %d", maxTokens)
	}
	if overlap < 0 || overlap >= maxTokens {
		return nil, fmt.Errorf("chunker: overlap %d must be in [0, %d)", overlap, maxTokens)
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("chunker: load encoding: %w", err)
	}
	return &Chunker{
		MaxTokens: maxTokens,
		Overlap:   overlap,
		enc:       enc,
	}, nil
}

// Split tokenizes text and emits windows [start, start+maxTokens), advancing
// start by maxTokens-overlap. Windows whose decoded text trims to empty are
// dropped.
func (c *Chunker) Split(text string) []Chunk {
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil
	}

	step := c.MaxTokens - c.Overlap
	var chunks []Chunk
	for start := 0; start < len(tokens); start += step {
		end := start + c.MaxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		decoded := c.enc.Decode(tokens[start:end])
		if strings.TrimSpace(decoded) != "" {
			chunks = append(chunks, Chunk{
				Text:     decoded,
				StartTok: start,
				EndTok:   end,
			})
		}
		if end == len(tokens) {
			break
		}
	}
	return chunks
}
