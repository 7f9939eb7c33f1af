package rag

import (
	gocontext "context"
	"sort"
	"strings"

	"docqa-be/internal/constant"
	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/llm"
	ragcontext "docqa-be/pkg/rag/context"
	"docqa-be/pkg/rag/intent"
	"docqa-be/pkg/rag/prompt"
	"docqa-be/pkg/vectorstore"
)

// Config carries the retrieval thresholds and per-slice K values.
type Config struct {
	RetrieveMin float64
	UseAsCtxMin float64
	MinTop3Avg  float64
	TextK       int
	TableK      int
	ImageK      int
}

// DefaultConfig returns the stock routing thresholds.
func DefaultConfig() Config {
	return Config{
		RetrieveMin: 0.35,
		UseAsCtxMin: 0.60,
		MinTop3Avg:  0.55,
		TextK:       5,
		TableK:      10,
		ImageK:      4,
	}
}

// Params are the generation knobs a caller may override per query.
type Params struct {
	MaxNewTokens int
	Temperature  float64
	TopP         float64
	// MatchCount overrides the prose slice K for this query when positive.
	MatchCount int
}

func (p *Params) applyDefaults() {
	if p.MaxNewTokens <= 0 {
		p.MaxNewTokens = 600
	}
	if p.Temperature <= 0 {
		p.Temperature = 0.2
	}
	if p.TopP <= 0 {
		p.TopP = 0.9
	}
}

// Answer is the routed result for one question.
type Answer struct {
	Answer  string
	Sources []ragcontext.Source
	RagMode string
}

// Only this many most-recent history turns reach the generator.
const maxHistoryTurns = 50

// Answerer embeds the query, performs multi-slice retrieval, gates on
// calibrated confidence, and dispatches to one of four prompt regimes.
type Answerer struct {
	cfg        Config
	embedder   embedding.Provider
	store      *vectorstore.Store
	provider   llm.Provider
	classifier *intent.Classifier
	log        logger.ILogger
}

func NewAnswerer(
	cfg Config,
	embedder embedding.Provider,
	store *vectorstore.Store,
	provider llm.Provider,
	classifier *intent.Classifier,
	log logger.ILogger,
) *Answerer {
	return &Answerer{
		cfg:        cfg,
		embedder:   embedder,
		store:      store,
		provider:   provider,
		classifier: classifier,
		log:        log,
	}
}

// Answer routes one question end to end.
func (a *Answerer) Answer(ctx gocontext.Context, question string, history []llm.Message, params Params) (*Answer, error) {
	params.applyDefaults()

	// Step A: smalltalk shortcut.
	if IsSmalltalk(question) {
		text, err := a.generate(ctx, prompt.Smalltalk, "", question, history, params)
		if err != nil {
			return nil, err
		}
		return &Answer{Answer: text, Sources: []ragcontext.Source{}, RagMode: constant.RagModeSmalltalk}, nil
	}

	// Step B: embed the query once.
	qVec, err := a.embedder.EmbedOne(ctx, question, embedding.ModeQuery)
	if err != nil {
		return nil, err
	}

	// Step C: multi-slice retrieval against the same vector.
	union, err := a.retrieve(ctx, qVec, params.MatchCount)
	if err != nil {
		return nil, err
	}
	maxSim, top3Avg := confidence(union)

	// Step D: confidence gate.
	documentMode := maxSim >= a.cfg.UseAsCtxMin || top3Avg >= a.cfg.MinTop3Avg
	a.log.Debug("rag", "confidence gate", map[string]interface{}{
		"candidates": len(union),
		"max_sim":    maxSim,
		"top3_avg":   top3Avg,
		"document":   documentMode,
	})

	if !documentMode {
		text, err := a.generate(ctx, prompt.General, "", question, history, params)
		if err != nil {
			return nil, err
		}
		return &Answer{Answer: text, Sources: []ragcontext.Source{}, RagMode: constant.RagModeGeneral}, nil
	}

	// Step E: sub-intent and context composition.
	regime := prompt.Plain
	mode := constant.RagModePlain
	if a.classifier.Classify(ctx, question) == intent.Table {
		regime = prompt.Table
		mode = constant.RagModeTable
	}

	ranked := make([]*entity.ScoredFragment, len(union))
	copy(ranked, union)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	contextBlock, sources := ragcontext.Compose(ranked)

	// Step F: generate.
	text, err := a.generate(ctx, regime, contextBlock, question, history, params)
	if err != nil {
		return nil, err
	}

	// Never attribute sources to an empty or refusal answer.
	if isRefusal(text) {
		sources = nil
	}
	if sources == nil {
		sources = []ragcontext.Source{}
	}

	return &Answer{Answer: text, Sources: sources, RagMode: mode}, nil
}

// retrieve runs the three typed slices and unions them preserving per-slice
// order.
func (a *Answerer) retrieve(ctx gocontext.Context, qVec []float32, matchCount int) ([]*entity.ScoredFragment, error) {
	textK := a.cfg.TextK
	if matchCount > 0 {
		textK = matchCount
	}
	slices := []vectorstore.SearchOptions{
		{K: textK, Threshold: a.cfg.RetrieveMin, Types: constant.ProseFragmentTypes()},
		{K: a.cfg.TableK, Threshold: a.cfg.RetrieveMin, Types: []string{constant.FragmentTypeTableRow}},
		{K: a.cfg.ImageK, Threshold: a.cfg.RetrieveMin, Types: []string{constant.FragmentTypeImageCaption}},
	}

	var union []*entity.ScoredFragment
	for _, opts := range slices {
		results, err := a.store.TopK(ctx, qVec, opts)
		if err != nil {
			return nil, err
		}
		union = append(union, results...)
	}
	return union, nil
}

// confidence computes maxSim and the mean of the three largest similarities
// (0 when fewer than three candidates).
func confidence(union []*entity.ScoredFragment) (maxSim, top3Avg float64) {
	if len(union) == 0 {
		return 0, 0
	}
	sims := make([]float64, len(union))
	for i, sf := range union {
		sims[i] = sf.Similarity
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sims)))
	maxSim = sims[0]
	if len(sims) >= 3 {
		top3Avg = (sims[0] + sims[1] + sims[2]) / 3
	}
	return maxSim, top3Avg
}

func (a *Answerer) generate(ctx gocontext.Context, regime prompt.Regime, contextBlock, question string, history []llm.Message, params Params) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: prompt.System(regime)})

	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	messages = append(messages, history...)

	userContent := question
	if contextBlock != "" {
		userContent = contextBlock + "\n" + question
	}
	messages = append(messages, llm.Message{Role: "user", Content: userContent})

	return a.provider.ChatStream(ctx, messages,
		llm.WithMaxTokens(params.MaxNewTokens),
		llm.WithTemperature(params.Temperature),
		llm.WithTopP(params.TopP),
	)
}

// isRefusal detects empty or "I don't know" answers so no sources get
// attributed to them.
func isRefusal(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return true
	}
	return strings.Contains(trimmed, "모릅니다")
}
