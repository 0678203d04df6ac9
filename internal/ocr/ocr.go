// Package ocr defines the optical character recognition boundary of the
// pipeline. The engine is a capability injected into the extractor so tests
// can substitute a stub without touching global state.
package ocr

import (
	"context"

	"github.com/pkg/errors"
)

// ErrImageNotFound is returned when the input path does not resolve to a
// readable image. It is the only fatal error of a pipeline run.
var ErrImageNotFound = errors.New("image not found")

// Token is one recognized word with its engine-reported confidence.
// Confidence below or equal to zero means the engine could not score the
// token.
type Token struct {
	Text       string
	Confidence float64
}

// Result is the raw output of one recognition pass.
type Result struct {
	Text   string
	Tokens []Token
	Width  int
	Height int
}

// Engine performs a single recognition pass over an image file. It must not
// mutate the source image.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (Result, error)
}
