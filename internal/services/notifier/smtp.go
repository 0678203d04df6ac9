package notifier

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/domain"
)

// SMTPNotifier sends alerts through a plain SMTP relay with PLAIN auth.
type SMTPNotifier struct {
	cfg    Config
	logger *zap.Logger

	// sendMail is swappable for tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (n *SMTPNotifier) Notify(ctx context.Context, record domain.TradeRecord, summary string) Outcome {
	subject := buildSubject(record)
	body := buildBody(record, summary)

	header := make(map[string]string)
	header["From"] = n.cfg.From
	header["To"] = n.cfg.To
	header["Subject"] = subject
	header["MIME-version"] = "1.0"
	header["Content-Type"] = "text/plain; charset=\"UTF-8\""

	message := ""
	for k, v := range header {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + body

	send := n.sendMail
	if send == nil {
		send = smtp.SendMail
	}

	auth := smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	if err := send(addr, auth, n.cfg.From, []string{n.cfg.To}, []byte(message)); err != nil {
		n.logger.Error("failed to send trade alert via SMTP",
			zap.String("trade_id", record.TradeID),
			zap.Error(err))
		return Outcome{Success: false, Detail: fmt.Sprintf("smtp send failed: %v", err)}
	}

	n.logger.Info("trade alert sent via SMTP",
		zap.String("trade_id", record.TradeID),
		zap.String("to", n.cfg.To))
	return Outcome{Success: true, Detail: fmt.Sprintf("Email sent to %s", n.cfg.To)}
}
