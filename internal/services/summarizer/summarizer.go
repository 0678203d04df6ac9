// Package summarizer turns a normalized trade record into a short
// human-readable analysis via the configured LLM.
package summarizer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/clients"
	"github.com/vadiminshakov/tradeshot/internal/domain"
	"github.com/vadiminshakov/tradeshot/internal/services/promptbuilder"
)

type Summarizer struct {
	llm    clients.LLMClient
	logger *zap.Logger
}

func New(llm clients.LLMClient, logger *zap.Logger) *Summarizer {
	return &Summarizer{llm: llm, logger: logger}
}

// Summarize never fails: if the LLM call errors, the returned text carries
// the error message so the notification body still has something to say.
func (s *Summarizer) Summarize(ctx context.Context, record domain.TradeRecord) string {
	prompt := promptbuilder.BuildSummaryPrompt(record)

	text, err := s.llm.Chat(ctx, promptbuilder.SummarySystemPrompt, prompt)
	if err != nil {
		s.logger.Warn("trade summary generation failed",
			zap.String("trade_id", record.TradeID),
			zap.Error(err))
		return fmt.Sprintf("Error generating trade summary: %v", err)
	}

	s.logger.Debug("trade summary generated",
		zap.String("trade_id", record.TradeID),
		zap.Int("length", len(text)))

	return text
}
