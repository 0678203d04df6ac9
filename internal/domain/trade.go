package domain

import (
	"time"
)

// TradeRecord is the canonical, fixed-schema representation of one trade.
// It is the unit of persistence: one record per line of the append-only log.
// The key set is total: a field that could not be extracted is stored as its
// explicit zero value, never omitted.
type TradeRecord struct {
	TradeID             string  `json:"trade_id"`
	Ticker              string  `json:"ticker"`
	Timeframe           string  `json:"timeframe"`
	EntryPrice          float64 `json:"entry_price"`
	ExitPrice           float64 `json:"exit_price"`
	Direction           string  `json:"direction"`
	PnL                 string  `json:"pnl"`
	PnLAmount           float64 `json:"pnl_amount"`
	DateTime            string  `json:"date_time"`
	LoggedAt            string  `json:"logged_at"`
	ImageSource         string  `json:"image_source"`
	ReasonOrAnnotations string  `json:"reason_or_annotations"`
	OCRConfidence       string  `json:"ocr_confidence"`
}

// ExtractionResult carries raw OCR output plus confidence metadata.
// It lives only for the duration of a single pipeline run.
type ExtractionResult struct {
	Text       string
	Confidence float64
	TotalWords int
	Width      int
	Height     int
}

// PnLPoint is one entry of the chronological PnL history used for charting.
// Date is day-granular (YYYY-MM-DD).
type PnLPoint struct {
	Date   string  `json:"date"`
	PnL    float64 `json:"pnl"`
	Ticker string  `json:"ticker"`
}

// TradeStats aggregates the whole store. Trades whose PnL could not be
// determined are excluded from every PnL aggregate but still counted in
// TotalTrades. WinRate is a fraction in [0,1].
type TradeStats struct {
	TotalTrades   int            `json:"total_trades"`
	TradesWithPnL int            `json:"trades_with_pnl"`
	WinningTrades int            `json:"winning_trades"`
	LosingTrades  int            `json:"losing_trades"`
	WinRate       float64        `json:"win_rate"`
	TotalPnL      float64        `json:"total_pnl"`
	AveragePnL    float64        `json:"average_pnl"`
	BestTrade     float64        `json:"best_trade"`
	WorstTrade    float64        `json:"worst_trade"`
	Tickers       []string       `json:"tickers"`
	Directions    map[string]int `json:"directions"`
	PnLHistory    []PnLPoint     `json:"pnl_history"`
}

// ProcessingEvent is the audit-trail entry written after every pipeline run.
type ProcessingEvent struct {
	TradeID            string    `json:"trade_id"`
	Ticker             string    `json:"ticker"`
	Direction          string    `json:"direction"`
	PnLAmount          float64   `json:"pnl_amount"`
	OCRConfidence      float64   `json:"ocr_confidence"`
	ImageSource        string    `json:"image_source"`
	Notified           bool      `json:"notified"`
	NotificationStatus string    `json:"notification_status"`
	Timestamp          time.Time `json:"ts"`
}

// ProcessingEventRecord bundles a processing event with its store index.
type ProcessingEventRecord struct {
	Index uint64
	Event ProcessingEvent
}
