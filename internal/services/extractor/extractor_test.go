package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/ocr"
)

type stubEngine struct {
	result ocr.Result
	err    error
}

func (s *stubEngine) Recognize(_ context.Context, _ string) (ocr.Result, error) {
	return s.result, s.err
}

func TestExtract_ConfidenceMean(t *testing.T) {
	engine := &stubEngine{result: ocr.Result{
		Text: "BTCUSD 5m long",
		Tokens: []ocr.Token{
			{Text: "BTCUSD", Confidence: 90},
			{Text: "5m", Confidence: 80},
			{Text: "long", Confidence: 70},
			{Text: "", Confidence: -1},
		},
		Width:  1920,
		Height: 1080,
	}}

	e := New(engine, zap.NewNop())
	res, err := e.Extract(context.Background(), "chart.png")
	require.NoError(t, err)

	assert.InDelta(t, 80.0, res.Confidence, 1e-9)
	assert.Equal(t, 3, res.TotalWords)
	assert.Equal(t, 1920, res.Width)
	assert.Equal(t, 1080, res.Height)
}

func TestExtract_AllBlankImage(t *testing.T) {
	tests := []struct {
		name   string
		tokens []ocr.Token
	}{
		{
			name:   "no tokens at all",
			tokens: nil,
		},
		{
			name: "only zero and negative confidences",
			tokens: []ocr.Token{
				{Text: "ghost", Confidence: 0},
				{Text: "noise", Confidence: -1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(&stubEngine{result: ocr.Result{Tokens: tt.tokens}}, zap.NewNop())
			res, err := e.Extract(context.Background(), "blank.png")
			require.NoError(t, err)
			assert.Zero(t, res.Confidence, "confidence must be 0.0, never NaN")
		})
	}
}

func TestExtract_ZeroConfidenceTokensStillCountAsWords(t *testing.T) {
	e := New(&stubEngine{result: ocr.Result{
		Tokens: []ocr.Token{
			{Text: "faint", Confidence: 0},
			{Text: "words", Confidence: 0},
		},
	}}, zap.NewNop())

	res, err := e.Extract(context.Background(), "chart.png")
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalWords)
	assert.Zero(t, res.Confidence)
}

func TestExtract_EngineErrorPropagates(t *testing.T) {
	e := New(&stubEngine{err: ocr.ErrImageNotFound}, zap.NewNop())
	_, err := e.Extract(context.Background(), "missing.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ocr.ErrImageNotFound)
}
