// Package tradelog persists trade records to an append-only JSONL file and
// answers search and aggregate queries over it. One JSON object per line;
// a corrupt line never poisons the rest of the file, readers skip it.
package tradelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeshot/internal/domain"
)

// maxLineSize bounds a single stored record. OCR annotations can get long
// but never near this.
const maxLineSize = 1 << 20

type Store struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

func New(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the log file location.
func (s *Store) Path() string {
	return s.path
}

// Append writes one record as a single JSON line.
func (s *Store) Append(record domain.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create trade log directory")
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, "failed to open trade log")
	}
	defer f.Close()

	b, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "failed to marshal trade record")
	}

	if _, err := fmt.Fprintln(f, string(b)); err != nil {
		return errors.Wrap(err, "failed to append trade record")
	}
	return nil
}

// scan walks every line of the log, invoking fn with the raw line and the
// decoded record. Undecodable lines are logged and skipped. A missing file
// means an empty log, not an error.
func (s *Store) scan(fn func(line string, record domain.TradeRecord)) error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "failed to open trade log")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record domain.TradeRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			s.logger.Warn("skipping corrupt trade log line",
				zap.Int("line", lineNo),
				zap.Error(err))
			continue
		}
		fn(line, record)
	}
	return errors.Wrap(scanner.Err(), "failed to read trade log")
}

// All returns every decodable record in file order.
func (s *Store) All() ([]domain.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []domain.TradeRecord
	err := s.scan(func(_ string, record domain.TradeRecord) {
		records = append(records, record)
	})
	return records, err
}

// SearchResult is the answer to one search query.
type SearchResult struct {
	Results     []domain.TradeRecord `json:"results"`
	TotalFound  int                  `json:"total_found"`
	TotalTrades int                  `json:"total_trades"`
}

// Search matches query case-insensitively against each record's serialized
// form. Results hold the most recent limit matches in log order; TotalFound
// counts every match, TotalTrades every stored record.
func (s *Store) Search(query string, limit int) (SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}
	needle := strings.ToLower(query)

	var result SearchResult
	var matches []domain.TradeRecord
	err := s.scan(func(line string, record domain.TradeRecord) {
		result.TotalTrades++
		if strings.Contains(strings.ToLower(line), needle) {
			matches = append(matches, record)
		}
	})
	if err != nil {
		return SearchResult{}, err
	}

	result.TotalFound = len(matches)
	if len(matches) > limit {
		matches = matches[len(matches)-limit:]
	}
	result.Results = matches
	if result.Results == nil {
		result.Results = []domain.TradeRecord{}
	}
	return result, nil
}

// Stats aggregates the whole log. Records whose PnL cannot be determined
// still count toward TotalTrades, ticker and direction tallies, but are
// excluded from every PnL figure including the win rate denominator.
// A zero PnL is neither a win nor a loss.
func (s *Store) Stats() (domain.TradeStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.TradeStats{
		Directions: make(map[string]int),
		Tickers:    []string{},
		PnLHistory: []domain.PnLPoint{},
	}

	tickerSet := make(map[string]struct{})
	totalPnL := decimal.Zero
	first := true

	err := s.scan(func(line string, record domain.TradeRecord) {
		stats.TotalTrades++

		if record.Ticker != "" {
			tickerSet[record.Ticker] = struct{}{}
		}
		if record.Direction != "" {
			stats.Directions[strings.ToLower(record.Direction)]++
		}

		pnl, ok := determinePnL(line, record)
		if !ok {
			return
		}

		stats.TradesWithPnL++
		totalPnL = totalPnL.Add(decimal.NewFromFloat(pnl))
		switch {
		case pnl > 0:
			stats.WinningTrades++
		case pnl < 0:
			stats.LosingTrades++
		}
		if first || pnl > stats.BestTrade {
			stats.BestTrade = pnl
		}
		if first || pnl < stats.WorstTrade {
			stats.WorstTrade = pnl
		}
		first = false

		stats.PnLHistory = append(stats.PnLHistory, domain.PnLPoint{
			Date:   historyDate(record),
			PnL:    pnl,
			Ticker: record.Ticker,
		})
	})
	if err != nil {
		return domain.TradeStats{}, err
	}

	stats.TotalPnL, _ = totalPnL.Float64()
	if stats.TradesWithPnL > 0 {
		// fraction in [0,1]; presentation layers multiply up to a percentage
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.TradesWithPnL)
		avg, _ := totalPnL.Div(decimal.NewFromInt(int64(stats.TradesWithPnL))).Float64()
		stats.AveragePnL = avg
	}

	for ticker := range tickerSet {
		stats.Tickers = append(stats.Tickers, ticker)
	}
	sort.Strings(stats.Tickers)

	// ISO dates sort chronologically as strings.
	sort.SliceStable(stats.PnLHistory, func(i, j int) bool {
		return stats.PnLHistory[i].Date < stats.PnLHistory[j].Date
	})

	return stats, nil
}

// historyDate reduces a record's timestamp to its day for charting,
// falling back to the logging time when the trade time is absent.
func historyDate(record domain.TradeRecord) string {
	date := record.DateTime
	if date == "" {
		date = record.LoggedAt
	}
	if idx := strings.IndexAny(date, "T "); idx > 0 {
		return date[:idx]
	}
	return date
}

// determinePnL decides whether a record carries a usable PnL figure. An
// explicit pnl_amount key wins even when zero; otherwise the free-form pnl
// string is coerced. Records predating the fixed schema may have neither.
func determinePnL(line string, record domain.TradeRecord) (float64, bool) {
	var probe struct {
		PnLAmount *float64 `json:"pnl_amount"`
	}
	if err := json.Unmarshal([]byte(line), &probe); err == nil && probe.PnLAmount != nil {
		return *probe.PnLAmount, true
	}
	return domain.ParsePnL(record.PnL)
}

// Renormalizer re-derives a record's normalized fields in place.
type Renormalizer interface {
	Renormalize(record domain.TradeRecord) domain.TradeRecord
}

// CleanResult reports what a clean pass touched.
type CleanResult struct {
	Total   int
	Cleaned int
	Skipped int
}

// Clean re-normalizes every record and atomically rewrites the file, so a
// crash mid-pass leaves the original log intact. Corrupt lines are dropped
// and counted as skipped. Trade IDs are preserved by the renormalizer.
func (s *Store) Clean(renorm Renormalizer) (CleanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result CleanResult
	var records []domain.TradeRecord

	countBefore := 0
	err := s.scan(func(_ string, record domain.TradeRecord) {
		countBefore++
		records = append(records, renorm.Renormalize(record))
	})
	if err != nil {
		return CleanResult{}, err
	}

	// scan already dropped corrupt lines; recount raw lines to report them
	result.Skipped = s.rawLineCount() - countBefore
	if result.Skipped < 0 {
		result.Skipped = 0
	}
	result.Total = countBefore + result.Skipped
	result.Cleaned = len(records)

	if result.Total == 0 {
		return result, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tradelog-clean-*")
	if err != nil {
		return CleanResult{}, errors.Wrap(err, "failed to create temp file")
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, record := range records {
		b, err := json.Marshal(record)
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return CleanResult{}, errors.Wrap(err, "failed to marshal cleaned record")
		}
		fmt.Fprintln(w, string(b))
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return CleanResult{}, errors.Wrap(err, "failed to flush cleaned log")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return CleanResult{}, errors.Wrap(err, "failed to close temp file")
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return CleanResult{}, errors.Wrap(err, "failed to replace trade log")
	}

	s.logger.Info("trade log cleaned",
		zap.Int("records", result.Cleaned),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *Store) rawLineCount() int {
	f, err := os.Open(s.path)
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			n++
		}
	}
	return n
}
