package intent

import (
	"context"
	"regexp"
	"strings"
	"time"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/llm"

	gocache "github.com/patrickmn/go-cache"
)

// Sub-intents for document mode.
const (
	Plain = "plain"
	Table = "table"
)

// tableKeywordRe short-circuits the LLM call for obviously tabular
// questions, Korean or English.
var tableKeywordRe = regexp.MustCompile(`(?i)(` +
	`표|테이블|행|열|컬럼|셀|엑셀|시트|스프레드시트|합계|평균값|` +
	`table|column|row|cell|tsv|csv|excel|sheet|spreadsheet` +
	`)`)

const classifySystem = `You route document questions. Respond with exactly one token: plain or table.
Answer "table" only if the question asks about tabular data (rows, columns, cells, totals across a table).
Otherwise answer "plain".`

// Classifier decides plain vs. table for document mode. Results are cached so
// a repeated question skips the round trip.
type Classifier struct {
	provider llm.Provider
	timeout  time.Duration
	cache    *gocache.Cache
	log      logger.ILogger
}

func NewClassifier(provider llm.Provider, timeout time.Duration, log logger.ILogger) *Classifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Classifier{
		provider: provider,
		timeout:  timeout,
		cache:    gocache.New(5*time.Minute, 10*time.Minute),
		log:      log,
	}
}

// Classify returns Plain or Table. A classifier failure defaults to Plain.
func (c *Classifier) Classify(ctx context.Context, question string) string {
	if tableKeywordRe.MatchString(question) {
		return Table
	}

	key := strings.TrimSpace(strings.ToLower(question))
	if cached, ok := c.cache.Get(key); ok {
		return cached.(string)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: classifySystem},
		{Role: "user", Content: question},
	}, llm.WithTemperature(0), llm.WithMaxTokens(10))
	if err != nil {
		c.log.Warn("intent", "classifier fallback to plain", map[string]interface{}{"error": err.Error()})
		return Plain
	}

	result := Plain
	if strings.Contains(strings.ToLower(out), "table") {
		result = Table
	}
	c.cache.Set(key, result, gocache.DefaultExpiration)
	return result
}
