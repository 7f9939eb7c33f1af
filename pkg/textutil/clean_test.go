package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"ligatures folded", "eﬃcient ﬁle", "efficient file"},
		{"zero width stripped", "a\u200bb\u200cc", "abc"},
		{"bom stripped", "\ufeffhello", "hello"},
		{"nbsp to space", "a\u00a0b", "a b"},
		{"crlf folded", "a\r\nb\rc", "a\nb\nc"},
		{"blank lines squeezed", "a\n\n\n\n\nb", "a\n\nb"},
		{"trailing whitespace trimmed", "line  \nnext", "line\nnext"},
		{"korean preserved", "검색 증강 생성", "검색 증강 생성"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1,234.5", "1234.5"},
		{"1,234,567", "1234567"},
		{"-1,000", "-1000"},
		{"+2,500.75", "+2500.75"},
		{"1234", "1234"},
		{"12,34", "12,34"}, // not a thousands grouping
		{"abc", "abc"},
		{" 1,000 ", "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNumber(tt.in))
		})
	}
}
