// Package extractor turns a screenshot into raw text plus confidence
// metadata by driving an injected OCR engine.
package extractor

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/domain"
	"github.com/vadiminshakov/tradeshot/internal/ocr"
)

// Extractor wraps an OCR engine and aggregates its per-token confidences
// into a single score.
type Extractor struct {
	engine ocr.Engine
	logger *zap.Logger
}

// New creates an extractor around the given engine.
func New(engine ocr.Engine, logger *zap.Logger) *Extractor {
	return &Extractor{engine: engine, logger: logger}
}

// Extract performs one OCR pass. Confidence is the arithmetic mean of all
// token confidences strictly greater than zero; when no token qualifies the
// confidence is 0.0, never NaN. TotalWords counts tokens whose trimmed text
// is non-empty.
func (e *Extractor) Extract(ctx context.Context, imagePath string) (domain.ExtractionResult, error) {
	res, err := e.engine.Recognize(ctx, imagePath)
	if err != nil {
		return domain.ExtractionResult{}, errors.Wrap(err, "ocr pass")
	}

	var (
		confSum   float64
		confCount int
		words     int
	)
	for _, token := range res.Tokens {
		if token.Confidence > 0 {
			confSum += token.Confidence
			confCount++
		}
		if strings.TrimSpace(token.Text) != "" {
			words++
		}
	}

	confidence := 0.0
	if confCount > 0 {
		confidence = confSum / float64(confCount)
	}

	e.logger.Info("extraction complete",
		zap.String("image", imagePath),
		zap.Float64("confidence", confidence),
		zap.Int("total_words", words))

	return domain.ExtractionResult{
		Text:       res.Text,
		Confidence: confidence,
		TotalWords: words,
		Width:      res.Width,
		Height:     res.Height,
	}, nil
}
