// Package events keeps the processing audit trail: one entry per pipeline
// run, persisted in a WAL so the dashboard stream survives restarts.
package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/tradeshot/internal/domain"
)

const (
	DefaultDir   = "./wal/processing"
	segmentLimit = 100
	maxSegments  = 10

	processingKeyPrefix = "processing_"
)

// WALStore persists processing events in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed processing event store.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "event_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init processing event WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save writes one processing event to the WAL.
func (s *WALStore) Save(event domain.ProcessingEvent) error {
	if s == nil || s.wal == nil {
		return errors.New("event store is not initialized")
	}
	if event.TradeID == "" {
		return fmt.Errorf("processing event trade id is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal processing event")
	}

	key := fmt.Sprintf("%s%s", processingKeyPrefix, event.TradeID)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// EventsAfter returns all processing events written after the provided WAL index.
func (s *WALStore) EventsAfter(index uint64) ([]domain.ProcessingEventRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("event store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.ProcessingEventRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(key, processingKeyPrefix) {
			continue
		}

		var event domain.ProcessingEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrap(err, "decode processing event")
		}
		records = append(records, domain.ProcessingEventRecord{
			Index: idx,
			Event: event,
		})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("event store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
