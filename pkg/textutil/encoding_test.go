package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	t.Run("plain utf8", func(t *testing.T) {
		out, err := DecodeText([]byte("RAG는 검색 증강 생성 기법이다."))
		require.NoError(t, err)
		assert.Equal(t, "RAG는 검색 증강 생성 기법이다.", out)
	})

	t.Run("utf8 with bom", func(t *testing.T) {
		out, err := DecodeText(append([]byte{0xef, 0xbb, 0xbf}, []byte("hello")...))
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("utf16 little endian", func(t *testing.T) {
		// "hi" with LE BOM
		out, err := DecodeText([]byte{0xff, 0xfe, 'h', 0x00, 'i', 0x00})
		require.NoError(t, err)
		assert.Equal(t, "hi", out)
	})

	t.Run("euc-kr fallback", func(t *testing.T) {
		// "안녕" in EUC-KR
		out, err := DecodeText([]byte{0xbe, 0xc8, 0xb3, 0xe7})
		require.NoError(t, err)
		assert.Equal(t, "안녕", out)
	})
}
