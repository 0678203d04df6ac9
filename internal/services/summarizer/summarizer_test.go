package summarizer

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/domain"
)

type stubLLM struct {
	response string
	err      error
	gotUser  string
}

func (s *stubLLM) Chat(_ context.Context, _, userPrompt string) (string, error) {
	s.gotUser = userPrompt
	return s.response, s.err
}

func TestSummarizeReturnsLLMText(t *testing.T) {
	llm := &stubLLM{response: "Solid long entry on BTCUSD."}
	s := New(llm, zap.NewNop())

	record := domain.TradeRecord{TradeID: "abc12345", Ticker: "BTCUSD", Direction: "long"}
	text := s.Summarize(context.Background(), record)

	assert.Equal(t, "Solid long entry on BTCUSD.", text)
	assert.Contains(t, llm.gotUser, "BTCUSD")
}

func TestSummarizeDegradesToErrorText(t *testing.T) {
	llm := &stubLLM{err: errors.New("connection refused")}
	s := New(llm, zap.NewNop())

	text := s.Summarize(context.Background(), domain.TradeRecord{TradeID: "abc12345"})

	assert.Contains(t, text, "Error generating trade summary")
	assert.Contains(t, text, "connection refused")
}
