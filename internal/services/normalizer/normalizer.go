// Package normalizer maps loosely-typed extracted fields into the canonical
// trade record. It never fails: malformed input degrades to safe defaults.
package normalizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/domain"
)

// pnlSourceKeys is the single ordered list of candidate keys consulted for
// the PnL value. Historical records were keyed inconsistently; the priority
// order is fixed here and nowhere else.
var pnlSourceKeys = []string{"pnl_amount", "pnl", "PnL"}

// Normalizer builds canonical trade records from decoded model output.
type Normalizer struct {
	logger *zap.Logger
}

// New creates a normalizer.
func New(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize produces exactly one canonical record from a decoded mapping
// (possibly the decoder's error sentinel), OCR metadata and the source image
// name. Every field of the output is set: absent or unparsable input becomes
// an explicit default, never a missing key.
func (n *Normalizer) Normalize(fields map[string]any, extraction domain.ExtractionResult, imageName string) domain.TradeRecord {
	if errMsg := stringField(fields, "error"); errMsg != "" {
		n.logger.Warn("normalizing error-carrying extraction", zap.String("error", errMsg))
	}

	record := domain.TradeRecord{
		TradeID:             stringField(fields, "trade_id"),
		Ticker:              domain.StandardizeTicker(stringField(fields, "ticker")),
		Timeframe:           stringField(fields, "timeframe"),
		EntryPrice:          floatField(fields, "entry_price"),
		ExitPrice:           floatField(fields, "exit_price"),
		Direction:           stringField(fields, "direction"),
		PnL:                 stringField(fields, "pnl"),
		PnLAmount:           pnlAmount(fields),
		DateTime:            domain.CanonicalizeDateTime(stringField(fields, "date_time")),
		LoggedAt:            domain.NowISO(),
		ImageSource:         imageName,
		ReasonOrAnnotations: stringField(fields, "reason_or_annotations"),
		OCRConfidence:       fmt.Sprintf("%.1f%%", extraction.Confidence),
	}

	if record.TradeID == "" {
		record.TradeID = NewTradeID()
	}
	if record.Direction == "" {
		record.Direction = "unknown"
	}

	return record
}

// Renormalize re-applies the standardization rules to an already-persisted
// record. Used by the offline bulk clean pass. The trade id is preserved;
// a fresh one is generated only when the record never had one.
func (n *Normalizer) Renormalize(record domain.TradeRecord) domain.TradeRecord {
	if record.TradeID == "" {
		record.TradeID = NewTradeID()
	}
	record.Ticker = domain.StandardizeTicker(record.Ticker)

	// pnl_amount is the source of truth when set; otherwise re-derive it
	// from the display string.
	if record.PnLAmount == 0 && record.PnL != "" {
		record.PnLAmount = domain.CoercePnL(record.PnL)
	}

	record.DateTime = domain.CanonicalizeDateTime(record.DateTime)
	if record.LoggedAt == "" {
		record.LoggedAt = domain.NowISO()
	} else {
		record.LoggedAt = domain.CanonicalizeDateTime(record.LoggedAt)
	}
	if record.Direction == "" {
		record.Direction = "unknown"
	}

	return record
}

// NewTradeID generates a short opaque identifier.
func NewTradeID() string {
	return uuid.NewString()[:8]
}

func pnlAmount(fields map[string]any) float64 {
	for _, key := range pnlSourceKeys {
		if value, ok := fields[key]; ok {
			if amount, determined := domain.ParsePnL(value); determined {
				return amount
			}
		}
	}
	return 0
}

func stringField(fields map[string]any, key string) string {
	value, ok := fields[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func floatField(fields map[string]any, key string) float64 {
	value, ok := fields[key]
	if !ok || value == nil {
		return 0
	}
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
