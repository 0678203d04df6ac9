package tradelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/domain"
)

// SaveMode selects which artifacts a pipeline run writes on top of the
// JSONL log line, which is always appended.
type SaveMode string

const (
	// SaveModeBoth writes the per-trade JSON file and the daily summary.
	SaveModeBoth SaveMode = "both"
	// SaveModeJSON writes only the per-trade JSON file.
	SaveModeJSON SaveMode = "json"
	// SaveModeJSONL writes only the daily summary.
	SaveModeJSONL SaveMode = "jsonl"
)

// ParseSaveMode validates a mode string, defaulting to both.
func ParseSaveMode(s string) (SaveMode, error) {
	switch SaveMode(s) {
	case SaveModeBoth, "":
		return SaveModeBoth, nil
	case SaveModeJSON:
		return SaveModeJSON, nil
	case SaveModeJSONL:
		return SaveModeJSONL, nil
	default:
		return "", errors.Errorf("unknown save mode %q", s)
	}
}

// OutputWriter produces the pretty per-trade JSON files and the per-day
// summary aggregates alongside the JSONL log.
type OutputWriter struct {
	outputDir    string
	summariesDir string
	logger       *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewOutputWriter(outputDir, summariesDir string, logger *zap.Logger) *OutputWriter {
	return &OutputWriter{
		outputDir:    outputDir,
		summariesDir: summariesDir,
		logger:       logger,
		now:          time.Now,
	}
}

// SaveTradeJSON writes one record as an indented standalone file and returns
// its path.
func (w *OutputWriter) SaveTradeJSON(record domain.TradeRecord) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create output directory")
	}

	name := fmt.Sprintf("trade_%s_%s.json", record.TradeID, w.now().Format("20060102_150405"))
	path := filepath.Join(w.outputDir, name)

	b, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal trade record")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write trade file")
	}

	w.logger.Debug("trade JSON written", zap.String("path", path))
	return path, nil
}

// dailySummary is the shape of one summaries/daily_summary_<date>.json file.
type dailySummary struct {
	Date        string               `json:"date"`
	Trades      []domain.TradeRecord `json:"trades"`
	TotalTrades int                  `json:"total_trades"`
	TotalPnL    float64              `json:"total_pnl"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
}

// UpdateDailySummary folds the record into its day's summary file, creating
// the file on first trade of the day, and returns the file path.
func (w *OutputWriter) UpdateDailySummary(record domain.TradeRecord) (string, error) {
	if err := os.MkdirAll(w.summariesDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create summaries directory")
	}

	date := summaryDate(record, w.now())
	path := filepath.Join(w.summariesDir, fmt.Sprintf("daily_summary_%s.json", date))
	nowISO := w.now().Format("2006-01-02T15:04:05")

	summary := dailySummary{
		Date:      date,
		CreatedAt: nowISO,
	}
	if existing, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(existing, &summary); err != nil {
			w.logger.Warn("daily summary unreadable, rebuilding",
				zap.String("path", path),
				zap.Error(err))
			summary = dailySummary{Date: date, CreatedAt: nowISO}
		}
	}

	summary.Trades = append(summary.Trades, record)
	summary.TotalTrades = len(summary.Trades)
	summary.UpdatedAt = nowISO

	total := decimal.Zero
	for _, tr := range summary.Trades {
		total = total.Add(decimal.NewFromFloat(tr.PnLAmount))
	}
	summary.TotalPnL, _ = total.Float64()

	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal daily summary")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write daily summary")
	}

	w.logger.Debug("daily summary updated",
		zap.String("path", path),
		zap.Int("trades", summary.TotalTrades))
	return path, nil
}

// summaryDate picks the day bucket for a record: the date part of its
// trade timestamp when present, otherwise today.
func summaryDate(record domain.TradeRecord, now time.Time) string {
	if len(record.DateTime) >= 10 {
		if _, err := time.Parse("2006-01-02", record.DateTime[:10]); err == nil {
			return record.DateTime[:10]
		}
	}
	return now.Format("2006-01-02")
}
