package tradelog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/quantfold/odte/internal/core"
)

// Store appends decision records to the day's log and reads them back.
// Safe for concurrent use within one process; the blob backend is free
// to add its own durability guarantees.
type Store struct {
	mu   sync.Mutex
	blob Blob
}

// NewStore creates a store over a blob backend.
func NewStore(blob Blob) *Store {
	return &Store{blob: blob}
}

func dayPath(date string) string {
	return fmt.Sprintf("decisions/%s.json", date)
}

// Append adds one record to its day's log.
func (s *Store) Append(ctx context.Context, rec core.DailyTradeLog) error {
	if rec.Date == "" {
		return fmt.Errorf("tradelog: record has no date")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readDay(ctx, rec.Date)
	if err != nil {
		return err
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("tradelog: marshaling records: %w", err)
	}
	return s.blob.Write(ctx, dayPath(rec.Date), data)
}

// Day returns the records logged for one date (YYYY-MM-DD).
func (s *Store) Day(ctx context.Context, date string) ([]core.DailyTradeLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readDay(ctx, date)
}

func (s *Store) readDay(ctx context.Context, date string) ([]core.DailyTradeLog, error) {
	exists, err := s.blob.Exists(ctx, dayPath(date))
	if err != nil {
		return nil, fmt.Errorf("tradelog: checking day log: %w", err)
	}
	if !exists {
		return nil, nil
	}

	data, err := s.blob.Read(ctx, dayPath(date))
	if err != nil {
		return nil, fmt.Errorf("tradelog: reading day log: %w", err)
	}
	var records []core.DailyTradeLog
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("tradelog: decoding day log: %w", err)
	}
	return records, nil
}

// Dates lists the days with at least one record, ascending.
func (s *Store) Dates(ctx context.Context) ([]string, error) {
	paths, err := s.blob.List(ctx, "decisions")
	if err != nil {
		return nil, fmt.Errorf("tradelog: listing day logs: %w", err)
	}

	var dates []string
	for _, p := range paths {
		name := strings.TrimSuffix(strings.TrimPrefix(p, "decisions/"), ".json")
		if name != "" {
			dates = append(dates, name)
		}
	}
	sort.Strings(dates)
	return dates, nil
}
