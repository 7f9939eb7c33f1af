package rag

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"docqa-be/internal/constant"
	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/memory"
	"docqa-be/pkg/llm"
	"docqa-be/pkg/rag/intent"
	"docqa-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDim = 4

// fakeEmbedder returns a fixed query vector and counts calls.
type fakeEmbedder struct {
	queryVec []float32
	calls    int32
}

func (f *fakeEmbedder) EmbedOne(ctx context.Context, text, mode string) ([]float32, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.queryVec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string, mode string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		atomic.AddInt32(&f.calls, 1)
		out[i] = f.queryVec
	}
	return out, nil
}

// fakeLLM answers Chat with classifyReply (the intent classifier path) and
// ChatStream with streamReply (the generation path).
type fakeLLM struct {
	classifyReply string
	streamReply   string
	chatCalls     int32
	streamCalls   int32
	lastMessages  []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	atomic.AddInt32(&f.chatCalls, 1)
	return f.classifyReply, nil
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	atomic.AddInt32(&f.streamCalls, 1)
	f.lastMessages = history
	return f.streamReply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func newTestAnswerer(t *testing.T, embedder *fakeEmbedder, provider *fakeLLM) (*Answerer, *vectorstore.Store) {
	t.Helper()
	factory := memory.NewFactory()
	store := vectorstore.New(factory, testDim, logger.NewNopLogger())
	classifier := intent.NewClassifier(provider, time.Second, logger.NewNopLogger())
	answerer := NewAnswerer(DefaultConfig(), embedder, store, provider, classifier, logger.NewNopLogger())
	return answerer, store
}

func seedFragment(t *testing.T, store *vectorstore.Store, content, fragType string, vec []float32) {
	t.Helper()
	_, err := store.InsertFragment(context.Background(), content, entity.FragmentMetadata{
		Type:     fragType,
		SHA256:   "sha",
		Filepath: "a.txt",
	}, vec)
	require.NoError(t, err)
}

func TestAnswerSmalltalkBypassesRetrieval(t *testing.T) {
	embedder := &fakeEmbedder{queryVec: []float32{1, 0, 0, 0}}
	provider := &fakeLLM{streamReply: "안녕하세요!"}
	answerer, store := newTestAnswerer(t, embedder, provider)

	// Even with a perfectly matching fragment indexed, smalltalk wins.
	seedFragment(t, store, "greeting doc", constant.FragmentTypeText, []float32{1, 0, 0, 0})

	answer, err := answerer.Answer(context.Background(), "안녕", nil, Params{})
	require.NoError(t, err)
	assert.Equal(t, constant.RagModeSmalltalk, answer.RagMode)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, int32(0), embedder.calls)
}

func TestAnswerGeneralModeWhenConfidenceLow(t *testing.T) {
	embedder := &fakeEmbedder{queryVec: []float32{1, 0, 0, 0}}
	provider := &fakeLLM{streamReply: "일반 상식 답변"}
	answerer, store := newTestAnswerer(t, embedder, provider)

	// cos ≈ 0.42: above RetrieveMin but below both gate thresholds.
	seedFragment(t, store, "weak match", constant.FragmentTypeText, []float32{0.42, 0.9075, 0, 0})

	answer, err := answerer.Answer(context.Background(), "계약 갱신 조건이 뭐야?", nil, Params{})
	require.NoError(t, err)
	assert.Equal(t, constant.RagModeGeneral, answer.RagMode)
	assert.Empty(t, answer.Sources)
}

func TestAnswerDocumentModePlain(t *testing.T) {
	embedder := &fakeEmbedder{queryVec: []float32{1, 0, 0, 0}}
	provider := &fakeLLM{classifyReply: "plain", streamReply: "RAG는 검색 증강 생성 기법이다."}
	answerer, store := newTestAnswerer(t, embedder, provider)

	seedFragment(t, store, "RAG는 검색 증강 생성 기법이다.", constant.FragmentTypeText, []float32{0.95, 0.3122, 0, 0})

	answer, err := answerer.Answer(context.Background(), "RAG가 뭐야?", nil, Params{})
	require.NoError(t, err)
	assert.Equal(t, constant.RagModePlain, answer.RagMode)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "a.txt", answer.Sources[0].Filename)

	// The generation request carries the composed context.
	require.NotEmpty(t, provider.lastMessages)
	user := provider.lastMessages[len(provider.lastMessages)-1]
	assert.Contains(t, user.Content, "<document source=\"a.txt\"")
	assert.Contains(t, user.Content, "RAG가 뭐야?")
}

func TestAnswerDocumentModeTableByKeyword(t *testing.T) {
	embedder := &fakeEmbedder{queryVec: []float32{1, 0, 0, 0}}
	provider := &fakeLLM{streamReply: "합계는 2,700이다."}
	answerer, store := newTestAnswerer(t, embedder, provider)

	seedFragment(t, store, "Table: 매출 | 분기=1Q; 매출=1,200", constant.FragmentTypeTableRow, []float32{0.95, 0.3122, 0, 0})

	answer, err := answerer.Answer(context.Background(), "표에서 매출 합계 알려줘", nil, Params{})
	require.NoError(t, err)
	assert.Equal(t, constant.RagModeTable, answer.RagMode)
	// keyword short-circuit: no classifier round trip
	assert.Equal(t, int32(0), provider.chatCalls)
}

func TestAnswerRefusalClearsSources(t *testing.T) {
	embedder := &fakeEmbedder{queryVec: []float32{1, 0, 0, 0}}
	provider := &fakeLLM{classifyReply: "plain", streamReply: "모릅니다."}
	answerer, store := newTestAnswerer(t, embedder, provider)

	seedFragment(t, store, "unrelated content", constant.FragmentTypeText, []float32{0.95, 0.3122, 0, 0})

	answer, err := answerer.Answer(context.Background(), "이 문서에 없는 내용은?", nil, Params{})
	require.NoError(t, err)
	assert.Equal(t, constant.RagModePlain, answer.RagMode)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, "모릅니다.", answer.Answer)
}

func TestAnswerHistoryIsCapped(t *testing.T) {
	embedder := &fakeEmbedder{queryVec: []float32{1, 0, 0, 0}}
	provider := &fakeLLM{streamReply: "ok"}
	answerer, _ := newTestAnswerer(t, embedder, provider)

	history := make([]llm.Message, 120)
	for i := range history {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history[i] = llm.Message{Role: role, Content: "turn"}
	}

	_, err := answerer.Answer(context.Background(), "조항 13조 내용 알려줘", history, Params{})
	require.NoError(t, err)
	// system + 50 history turns + user
	assert.Len(t, provider.lastMessages, 52)
}
