package notifier

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/domain"
)

func TestBuildSubject(t *testing.T) {
	tests := []struct {
		name   string
		record domain.TradeRecord
		want   string
	}{
		{
			name:   "profit trade",
			record: domain.TradeRecord{Ticker: "BTCUSD", PnLAmount: 150.5},
			want:   "Trade Alert: BTCUSD - PROFIT",
		},
		{
			name:   "losing trade is info",
			record: domain.TradeRecord{Ticker: "ETHUSD", PnLAmount: -42},
			want:   "Trade Alert: ETHUSD - INFO",
		},
		{
			name:   "flat trade is info",
			record: domain.TradeRecord{Ticker: "SOLUSD", PnLAmount: 0},
			want:   "Trade Alert: SOLUSD - INFO",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildSubject(tt.record))
		})
	}
}

func TestCleanTextStripsNonASCII(t *testing.T) {
	in := "Profit ↑ on BTC\\USD\ttrade\nnice \U0001F680"
	out := cleanText(in)
	assert.Equal(t, "Profit  on BTCUSD\ttrade\nnice ", out)
}

func TestBuildBodyIncludesSummary(t *testing.T) {
	record := domain.TradeRecord{
		TradeID:   "abc12345",
		Ticker:    "BTCUSD",
		Direction: "long",
		PnLAmount: 150.5,
	}
	body := buildBody(record, "Strong breakout entry.")
	assert.Contains(t, body, "abc12345")
	assert.Contains(t, body, "BTCUSD")
	assert.Contains(t, body, "Strong breakout entry.")
}

func TestSMTPNotifierReportsOutcome(t *testing.T) {
	var gotAddr string
	var gotMsg []byte
	n := &SMTPNotifier{
		cfg: Config{
			SMTPHost: "mail.example.com",
			SMTPPort: 587,
			SMTPUser: "user",
			From:     "alerts@example.com",
			To:       "trader@example.com",
		},
		logger: zap.NewNop(),
		sendMail: func(addr string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
			gotAddr = addr
			gotMsg = msg
			return nil
		},
	}

	out := n.Notify(context.Background(), domain.TradeRecord{TradeID: "abc12345", Ticker: "BTCUSD", PnLAmount: 10}, "")
	assert.True(t, out.Success)
	assert.Equal(t, "Email sent to trader@example.com", out.Detail)
	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Contains(t, string(gotMsg), "Trade Alert: BTCUSD - PROFIT")
}

func TestSMTPNotifierFailureDoesNotPanic(t *testing.T) {
	n := &SMTPNotifier{
		cfg:    Config{SMTPHost: "mail.example.com", SMTPPort: 587, From: "a@b.c", To: "d@e.f"},
		logger: zap.NewNop(),
		sendMail: func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		},
	}

	out := n.Notify(context.Background(), domain.TradeRecord{TradeID: "abc12345"}, "")
	assert.False(t, out.Success)
	assert.Contains(t, out.Detail, "connection refused")
}

func TestNewFallsBackToMock(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown provider", Config{Provider: "carrier-pigeon"}},
		{"empty provider", Config{}},
		{"incomplete smtp", Config{Provider: "smtp", SMTPHost: "mail.example.com"}},
		{"incomplete mailgun", Config{Provider: "mailgun", MailgunDomain: "mg.example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(tt.cfg, zap.NewNop())
			assert.IsType(t, &MockNotifier{}, n)
		})
	}
}

func TestNewSelectsConfiguredProvider(t *testing.T) {
	smtpCfg := Config{
		Provider: "smtp", SMTPHost: "mail.example.com", SMTPPort: 587,
		SMTPUser: "u", SMTPPassword: "p", From: "a@b.c", To: "d@e.f",
	}
	assert.IsType(t, &SMTPNotifier{}, New(smtpCfg, zap.NewNop()))

	mgCfg := Config{
		Provider: "mailgun", MailgunDomain: "mg.example.com", MailgunAPIKey: "key",
		From: "a@b.c", To: "d@e.f",
	}
	assert.IsType(t, &MailgunNotifier{}, New(mgCfg, zap.NewNop()))
}

func TestMockNotifierAlwaysSucceeds(t *testing.T) {
	n := &MockNotifier{logger: zap.NewNop()}
	out := n.Notify(context.Background(), domain.TradeRecord{TradeID: "abc12345"}, "summary")
	assert.True(t, out.Success)
}
