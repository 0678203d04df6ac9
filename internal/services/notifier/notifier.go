// Package notifier delivers trade alert emails. Three implementations are
// provided: plain SMTP, Mailgun, and a mock that only logs. The concrete
// backend is picked from config, and incomplete provider config degrades to
// the mock instead of failing the pipeline.
package notifier

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/domain"
)

// Outcome reports what a delivery attempt did. Notification failures never
// abort trade processing, so the result is data rather than an error.
type Outcome struct {
	Success bool
	Detail  string
}

type Notifier interface {
	Notify(ctx context.Context, record domain.TradeRecord, summary string) Outcome
}

// Config holds delivery settings for every supported provider. Only the
// fields of the selected provider need to be set.
type Config struct {
	Provider     string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	From         string
	To           string
	SenderName   string

	MailgunDomain string
	MailgunAPIKey string
}

// New selects the notifier implementation from config.
func New(cfg Config, logger *zap.Logger) Notifier {
	switch strings.ToLower(cfg.Provider) {
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.From == "" || cfg.To == "" {
			logger.Warn("mailgun configuration incomplete, falling back to mock notifier")
			return &MockNotifier{logger: logger}
		}
		return newMailgunNotifier(cfg, logger)
	case "smtp":
		if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPassword == "" || cfg.From == "" || cfg.To == "" {
			logger.Warn("smtp configuration incomplete, falling back to mock notifier")
			return &MockNotifier{logger: logger}
		}
		return &SMTPNotifier{cfg: cfg, logger: logger}
	default:
		return &MockNotifier{logger: logger}
	}
}

// buildSubject classifies the trade for the subject line. Positive PnL is a
// profit alert, everything else is informational.
func buildSubject(record domain.TradeRecord) string {
	kind := "INFO"
	if record.PnLAmount > 0 {
		kind = "PROFIT"
	}
	return fmt.Sprintf("Trade Alert: %s - %s", record.Ticker, kind)
}

func buildBody(record domain.TradeRecord, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trade Details\r\n")
	fmt.Fprintf(&b, "=============\r\n\r\n")
	fmt.Fprintf(&b, "Trade ID:   %s\r\n", record.TradeID)
	fmt.Fprintf(&b, "Ticker:     %s\r\n", record.Ticker)
	fmt.Fprintf(&b, "Direction:  %s\r\n", record.Direction)
	fmt.Fprintf(&b, "Timeframe:  %s\r\n", record.Timeframe)
	fmt.Fprintf(&b, "Entry:      %.5f\r\n", record.EntryPrice)
	fmt.Fprintf(&b, "Exit:       %.5f\r\n", record.ExitPrice)
	fmt.Fprintf(&b, "PnL:        %.2f\r\n", record.PnLAmount)
	fmt.Fprintf(&b, "Date:       %s\r\n", record.DateTime)
	fmt.Fprintf(&b, "Source:     %s\r\n", record.ImageSource)
	fmt.Fprintf(&b, "OCR conf:   %s\r\n", record.OCRConfidence)
	if summary != "" {
		fmt.Fprintf(&b, "\r\nAnalysis\r\n--------\r\n%s\r\n", cleanText(summary))
	}
	return b.String()
}

// cleanText strips characters that upset strict SMTP servers: everything
// outside printable ASCII is dropped, backslashes included. Newlines and
// tabs survive.
func cleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(r)
		case r == '\\':
		case r >= 32 && r <= 126:
			b.WriteRune(r)
		}
	}
	return b.String()
}
