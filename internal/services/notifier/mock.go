package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/domain"
)

// MockNotifier logs the alert instead of sending it.
type MockNotifier struct {
	logger *zap.Logger
}

func (n *MockNotifier) Notify(_ context.Context, record domain.TradeRecord, _ string) Outcome {
	n.logger.Info("mock notifier: would send trade alert",
		zap.String("trade_id", record.TradeID),
		zap.String("subject", buildSubject(record)))
	return Outcome{Success: true, Detail: "Mock notification logged"}
}
