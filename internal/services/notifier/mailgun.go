package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/domain"
)

const mailgunSendTimeout = 20 * time.Second

// MailgunNotifier sends alerts through the Mailgun HTTP API.
type MailgunNotifier struct {
	mg     mailgun.Mailgun
	cfg    Config
	logger *zap.Logger
}

func newMailgunNotifier(cfg Config, logger *zap.Logger) *MailgunNotifier {
	return &MailgunNotifier{
		mg:     mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey),
		cfg:    cfg,
		logger: logger,
	}
}

func (n *MailgunNotifier) Notify(ctx context.Context, record domain.TradeRecord, summary string) Outcome {
	from := n.cfg.From
	if n.cfg.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", n.cfg.SenderName, n.cfg.From)
	}

	message := n.mg.NewMessage(from, buildSubject(record), buildBody(record, summary), n.cfg.To)
	message.AddTag("trade-alert")

	sendCtx, cancel := context.WithTimeout(ctx, mailgunSendTimeout)
	defer cancel()

	resp, id, err := n.mg.Send(sendCtx, message)
	if err != nil {
		n.logger.Error("failed to send trade alert via Mailgun",
			zap.String("trade_id", record.TradeID),
			zap.String("mailgun_resp", resp),
			zap.Error(err))
		return Outcome{Success: false, Detail: fmt.Sprintf("mailgun send failed: %v", err)}
	}

	n.logger.Info("trade alert sent via Mailgun",
		zap.String("trade_id", record.TradeID),
		zap.String("to", n.cfg.To),
		zap.String("mailgun_id", id))
	return Outcome{Success: true, Detail: fmt.Sprintf("Email sent to %s", n.cfg.To)}
}
