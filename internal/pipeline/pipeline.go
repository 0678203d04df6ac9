// Package pipeline orchestrates one screenshot's journey from pixels to a
// persisted trade record: OCR extraction, LLM interpretation, tolerant
// decode, normalization, storage and optional email notification. Every
// stage after extraction degrades instead of failing, so a reachable image
// always produces a stored record.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/clients"
	"github.com/vadiminshakov/tradeshot/internal/domain"
	"github.com/vadiminshakov/tradeshot/internal/services/decoder"
	"github.com/vadiminshakov/tradeshot/internal/services/extractor"
	"github.com/vadiminshakov/tradeshot/internal/services/normalizer"
	"github.com/vadiminshakov/tradeshot/internal/services/notifier"
	"github.com/vadiminshakov/tradeshot/internal/services/promptbuilder"
	"github.com/vadiminshakov/tradeshot/internal/services/summarizer"
	"github.com/vadiminshakov/tradeshot/internal/storage/tradelog"
)

// notificationNotRequested is the status reported when email was disabled
// or not asked for.
const notificationNotRequested = "Email disabled or not requested"

// EventSink receives the audit event of every completed run. The WAL store
// implements it; a nil sink disables auditing.
type EventSink interface {
	Save(event domain.ProcessingEvent) error
}

// Options tune a single Process call.
type Options struct {
	SendEmail bool
	SaveMode  tradelog.SaveMode
}

// Result aggregates everything one run produced.
type Result struct {
	TradeID            string   `json:"trade_id"`
	Image              string   `json:"image"`
	Ticker             string   `json:"ticker"`
	Direction          string   `json:"direction"`
	PnLAmount          float64  `json:"pnl_amount"`
	Confidence         float64  `json:"confidence"`
	SavedFiles         []string `json:"saved_files"`
	Notified           bool     `json:"notified"`
	NotificationStatus string   `json:"notification_status"`
	LLMStatus          string   `json:"llm_status"`
	DecodeStatus       string   `json:"decode_status"`
}

type Pipeline struct {
	extractor  *extractor.Extractor
	llm        clients.LLMClient
	normalizer *normalizer.Normalizer
	summarizer *summarizer.Summarizer
	notifier   notifier.Notifier
	store      *tradelog.Store
	outputs    *tradelog.OutputWriter
	events     EventSink
	logger     *zap.Logger
}

func New(
	ext *extractor.Extractor,
	llm clients.LLMClient,
	norm *normalizer.Normalizer,
	summ *summarizer.Summarizer,
	notif notifier.Notifier,
	store *tradelog.Store,
	outputs *tradelog.OutputWriter,
	events EventSink,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		extractor:  ext,
		llm:        llm,
		normalizer: norm,
		summarizer: summ,
		notifier:   notif,
		store:      store,
		outputs:    outputs,
		events:     events,
		logger:     logger,
	}
}

// Process runs the full chain for one image. It fails only when the image
// itself cannot be read or nothing can be persisted; LLM and notification
// trouble is absorbed into the record and the result.
func (p *Pipeline) Process(ctx context.Context, imagePath string, opts Options) (Result, error) {
	extraction, err := p.extractor.Extract(ctx, imagePath)
	if err != nil {
		return Result{}, errors.Wrapf(err, "failed to extract text from %s", imagePath)
	}

	raw, llmStatus := p.interpret(ctx, extraction.Text, filepath.Base(imagePath))

	fields, err := decoder.Decode(raw)
	decodeStatus := "ok"
	if err != nil {
		decodeStatus = err.Error()
		p.logger.Warn("LLM response was not valid JSON, using fallback fields",
			zap.String("image", imagePath),
			zap.Error(err))
	}

	record := p.normalizer.Normalize(fields, extraction, filepath.Base(imagePath))

	saved, err := p.persist(record, opts.SaveMode)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		TradeID:            record.TradeID,
		Image:              imagePath,
		Ticker:             record.Ticker,
		Direction:          record.Direction,
		PnLAmount:          record.PnLAmount,
		Confidence:         extraction.Confidence,
		SavedFiles:         saved,
		NotificationStatus: notificationNotRequested,
		LLMStatus:          llmStatus,
		DecodeStatus:       decodeStatus,
	}

	if opts.SendEmail {
		summary := p.summarizer.Summarize(ctx, record)
		outcome := p.notifier.Notify(ctx, record, summary)
		result.Notified = outcome.Success
		result.NotificationStatus = outcome.Detail
	}

	p.audit(record, extraction.Confidence, result)

	p.logger.Info("trade processed",
		zap.String("trade_id", record.TradeID),
		zap.String("ticker", record.Ticker),
		zap.Float64("pnl_amount", record.PnLAmount),
		zap.Bool("notified", result.Notified))

	return result, nil
}

// interpret asks the LLM to structure the OCR text. On failure the raw
// response becomes a sentinel JSON object so the decoder and normalizer see
// uniform input.
func (p *Pipeline) interpret(ctx context.Context, ocrText, imageName string) (raw, status string) {
	prompt := promptbuilder.BuildExtractionPrompt(ocrText, imageName)

	response, err := p.llm.Chat(ctx, promptbuilder.ExtractionSystemPrompt, prompt)
	if err != nil {
		p.logger.Warn("LLM interpretation failed",
			zap.String("image", imageName),
			zap.Error(err))
		sentinel := fmt.Sprintf(
			`{"error":%q,"ticker":"UNKNOWN","direction":"unknown","pnl_amount":0}`,
			err.Error())
		return sentinel, fmt.Sprintf("LLM error: %v", err)
	}
	return response, "ok"
}

// persist always appends to the JSONL log; the mode only gates the
// auxiliary artifacts on top of it.
func (p *Pipeline) persist(record domain.TradeRecord, mode tradelog.SaveMode) ([]string, error) {
	if mode == "" {
		mode = tradelog.SaveModeBoth
	}

	if err := p.store.Append(record); err != nil {
		return nil, errors.Wrap(err, "failed to persist trade record")
	}
	saved := []string{p.store.Path()}

	if mode == tradelog.SaveModeBoth || mode == tradelog.SaveModeJSON {
		path, err := p.outputs.SaveTradeJSON(record)
		if err != nil {
			p.logger.Error("failed to write per-trade JSON", zap.Error(err))
		} else {
			saved = append(saved, path)
		}
	}

	if mode == tradelog.SaveModeBoth || mode == tradelog.SaveModeJSONL {
		path, err := p.outputs.UpdateDailySummary(record)
		if err != nil {
			p.logger.Error("failed to update daily summary", zap.Error(err))
		} else {
			saved = append(saved, path)
		}
	}

	return saved, nil
}

func (p *Pipeline) audit(record domain.TradeRecord, confidence float64, result Result) {
	if p.events == nil {
		return
	}

	event := domain.ProcessingEvent{
		TradeID:            record.TradeID,
		Ticker:             record.Ticker,
		Direction:          record.Direction,
		PnLAmount:          record.PnLAmount,
		OCRConfidence:      confidence,
		ImageSource:        record.ImageSource,
		Notified:           result.Notified,
		NotificationStatus: result.NotificationStatus,
		Timestamp:          time.Now().UTC(),
	}
	if err := p.events.Save(event); err != nil {
		p.logger.Warn("failed to record processing event",
			zap.String("trade_id", record.TradeID),
			zap.Error(err))
	}
}

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".bmp": {}, ".gif": {}, ".tiff": {},
}

// BatchResult aggregates a directory run.
type BatchResult struct {
	Processed   int               `json:"processed"`
	Failed      int               `json:"failed"`
	EmailsSent  int               `json:"emails_sent"`
	EmailsEmpty int               `json:"emails_skipped"`
	Results     []Result          `json:"results"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// ProcessDir runs Process over every image file directly inside dir,
// alphabetically. One bad image does not stop the batch.
func (p *Pipeline) ProcessDir(ctx context.Context, dir string, opts Options) (BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BatchResult{}, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := imageExtensions[ext]; ok {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)

	batch := BatchResult{Errors: map[string]string{}}
	for _, image := range images {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		result, err := p.Process(ctx, image, opts)
		if err != nil {
			batch.Failed++
			batch.Errors[image] = err.Error()
			p.logger.Error("batch item failed",
				zap.String("image", image),
				zap.Error(err))
			continue
		}

		batch.Processed++
		batch.Results = append(batch.Results, result)
		if opts.SendEmail {
			if result.Notified {
				batch.EmailsSent++
			} else {
				batch.EmailsEmpty++
			}
		}
	}

	p.logger.Info("batch complete",
		zap.String("dir", dir),
		zap.Int("processed", batch.Processed),
		zap.Int("failed", batch.Failed),
		zap.Int("emails_sent", batch.EmailsSent))

	return batch, nil
}
