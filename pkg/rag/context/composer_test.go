package context

import (
	"strings"
	"testing"

	"docqa-be/internal/constant"
	"docqa-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(content, filename string, sim float64) *entity.ScoredFragment {
	return &entity.ScoredFragment{
		Fragment: &entity.Fragment{
			Content: content,
			Metadata: entity.FragmentMetadata{
				Type:     constant.FragmentTypeText,
				Filepath: filename,
			},
		},
		Similarity: sim,
	}
}

func TestComposeFormatsDocuments(t *testing.T) {
	ctxBlock, sources := Compose([]*entity.ScoredFragment{
		scored("첫 번째 내용", "a.txt", 0.9),
		scored("두 번째 내용", "b.pdf", 0.8),
	})

	assert.Contains(t, ctxBlock, `<document source="a.txt" page="" type="text">`)
	assert.Contains(t, ctxBlock, "첫 번째 내용")
	assert.Contains(t, ctxBlock, "두 번째 내용")

	require.Len(t, sources, 2)
	assert.Equal(t, "a.txt", sources[0].Filename)
	assert.Equal(t, 0.9, sources[0].Similarity)
}

func TestComposeTrimsLongFragments(t *testing.T) {
	long := strings.Repeat("a", 900) + strings.Repeat("b", 900)
	ctxBlock, sources := Compose([]*entity.ScoredFragment{scored(long, "a.txt", 0.9)})

	assert.Contains(t, ctxBlock, "...\n")
	assert.NotContains(t, ctxBlock, strings.Repeat("a", 801))
	require.Len(t, sources, 1)
}

func TestComposeRespectsContextBudget(t *testing.T) {
	var ranked []*entity.ScoredFragment
	for i := 0; i < 10; i++ {
		ranked = append(ranked, scored(strings.Repeat("x", 1500), "doc.txt", 0.9))
	}

	ctxBlock, sources := Compose(ranked)
	assert.LessOrEqual(t, len(ctxBlock), 4200) // 4000-char budget plus a little slack
	assert.Less(t, len(sources), 10)
}

func TestComposeShortContentKeptVerbatim(t *testing.T) {
	ctxBlock, _ := Compose([]*entity.ScoredFragment{scored("짧은 내용", "a.txt", 0.9)})
	assert.Contains(t, ctxBlock, "짧은 내용")
	assert.NotContains(t, ctxBlock, "...")
}
