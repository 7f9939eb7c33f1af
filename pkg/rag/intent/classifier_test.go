package intent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

type scriptedLLM struct {
	reply string
	err   error
	calls int32
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.reply, s.err
}

func (s *scriptedLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, history, opts...)
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, nil, opts...)
}

func TestClassifyKeywordShortCircuit(t *testing.T) {
	provider := &scriptedLLM{reply: "plain"}
	c := NewClassifier(provider, time.Second, logger.NewNopLogger())

	tests := []string{
		"표에서 합계 보여줘",
		"show me the table of revenues",
		"3번째 row 값이 뭐야",
		"엑셀 시트 내용 요약해줘",
	}
	for _, q := range tests {
		t.Run(q, func(t *testing.T) {
			assert.Equal(t, Table, c.Classify(context.Background(), q))
		})
	}
	assert.Equal(t, int32(0), provider.calls)
}

func TestClassifyUsesLLMForAmbiguousQuestions(t *testing.T) {
	provider := &scriptedLLM{reply: "table"}
	c := NewClassifier(provider, time.Second, logger.NewNopLogger())

	got := c.Classify(context.Background(), "분기별 매출 추이가 어떻게 되지?")
	assert.Equal(t, Table, got)
	assert.Equal(t, int32(1), provider.calls)
}

func TestClassifyDefaultsToPlain(t *testing.T) {
	provider := &scriptedLLM{reply: "plain"}
	c := NewClassifier(provider, time.Second, logger.NewNopLogger())

	got := c.Classify(context.Background(), "계약 해지 조건 알려줘")
	assert.Equal(t, Plain, got)
}

func TestClassifyFallsBackToPlainOnError(t *testing.T) {
	provider := &scriptedLLM{err: errors.New("timeout")}
	c := NewClassifier(provider, time.Second, logger.NewNopLogger())

	got := c.Classify(context.Background(), "계약 해지 조건 알려줘")
	assert.Equal(t, Plain, got)
}

func TestClassifyCachesResults(t *testing.T) {
	provider := &scriptedLLM{reply: "table"}
	c := NewClassifier(provider, time.Second, logger.NewNopLogger())

	q := "분기별 매출 추이가 어떻게 되지?"
	first := c.Classify(context.Background(), q)
	second := c.Classify(context.Background(), q)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), provider.calls)
}
