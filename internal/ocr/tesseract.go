package ocr

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultBinary = "tesseract"

// TesseractEngine shells out to the tesseract CLI in TSV mode. The TSV output
// carries one row per detected token with a confidence column, which is
// exactly the per-token shape the extractor needs.
type TesseractEngine struct {
	binary    string
	languages string
	logger    *zap.Logger
}

// NewTesseractEngine creates a CLI-backed engine. Empty binary or languages
// fall back to "tesseract" and its default language pack.
func NewTesseractEngine(binary, languages string, logger *zap.Logger) *TesseractEngine {
	if binary == "" {
		binary = defaultBinary
	}
	return &TesseractEngine{binary: binary, languages: languages, logger: logger}
}

// Recognize runs one OCR pass. The image file itself is only ever read.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return Result{}, errors.Wrapf(ErrImageNotFound, "%s", imagePath)
	}
	cfg, _, cfgErr := image.DecodeConfig(f)
	_ = f.Close()
	if cfgErr != nil {
		return Result{}, errors.Wrapf(ErrImageNotFound, "%s is not a readable image: %v", imagePath, cfgErr)
	}

	args := []string{imagePath, "stdout"}
	if e.languages != "" {
		args = append(args, "-l", e.languages)
	}
	args = append(args, "tsv")

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Result{}, errors.Wrapf(err, "tesseract failed: %s", strings.TrimSpace(stderr.String()))
	}

	tokens, text := parseTSV(out.String())
	e.logger.Debug("ocr pass complete",
		zap.String("image", imagePath),
		zap.Int("tokens", len(tokens)))

	return Result{
		Text:   text,
		Tokens: tokens,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// parseTSV reads tesseract TSV output. Columns: level page block par line
// word left top width height conf text. Rows that do not carry a token
// (headers, layout rows) are skipped; the plain text is reconstructed by
// joining tokens line by line.
func parseTSV(tsv string) ([]Token, string) {
	var (
		tokens   []Token
		textSB   strings.Builder
		lastLine = ""
	)

	for _, row := range strings.Split(tsv, "\n") {
		cols := strings.Split(row, "\t")
		if len(cols) < 12 || cols[0] == "level" {
			continue
		}

		word := cols[11]
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil {
			conf = -1
		}
		tokens = append(tokens, Token{Text: word, Confidence: conf})

		if strings.TrimSpace(word) == "" {
			continue
		}
		lineKey := strings.Join(cols[1:5], "/")
		if lastLine != "" && lineKey != lastLine {
			textSB.WriteString("\n")
		} else if textSB.Len() > 0 {
			textSB.WriteString(" ")
		}
		textSB.WriteString(word)
		lastLine = lineKey
	}

	return tokens, textSB.String()
}
