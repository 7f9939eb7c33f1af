package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"분기 보고서.pdf", "분기_보고서.pdf"},
		{"a/b\\c:d.txt", "a_b_c_d.txt"},
		{"", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.in))
		})
	}
}

func TestSafeNameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 300)
	assert.Len(t, SafeName(long), 100)
}

func TestSaveOriginal(t *testing.T) {
	root := t.TempDir()
	s := NewStorage(root)

	data := []byte("RAG는 검색 증강 생성 기법이다.")
	stored, err := s.SaveOriginal(data, "a.txt")
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), stored.SHA256)

	// Date-partitioned layout with sha prefix in the name.
	assert.True(t, strings.HasPrefix(filepath.Base(stored.RelPath), stored.SHA256[:8]+"_"))
	assert.True(t, strings.HasSuffix(stored.RelPath, ".txt"))

	onDisk, err := os.ReadFile(stored.AbsPath)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	// Derived dir sits next to the original, keyed by the full sha.
	assert.Equal(t, stored.SHA256, filepath.Base(stored.DerivedDir))
}

func TestMoveDerived(t *testing.T) {
	root := t.TempDir()
	s := NewStorage(root)

	stored, err := s.SaveOriginal([]byte("x"), "doc.pdf")
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "crop table 1.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpeg"), 0o644))

	url, err := s.MoveDerived(src, stored.DerivedDir, "tables")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.Contains(t, url, "/tables/")

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}
