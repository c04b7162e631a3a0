// Package account persists the account view between runs. The engine
// treats core.AccountState as immutable; this package owns loading it
// before a run and saving the updated state after, with the daily
// counters reset on the first run of each trading day.
package account

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quantfold/odte/internal/core"
)

// Provider loads the account view before a run and persists the
// updated view after. Implementations must serialize concurrent
// load/save cycles.
type Provider interface {
	Load(now time.Time) (core.AccountState, error)
	Save(state core.AccountState, now time.Time) error
}

// stateFile is the on-disk shape. Date is the trading day the counters
// belong to; when it differs from today the counters start fresh.
type stateFile struct {
	Date          string          `json:"date"`
	Equity        float64         `json:"equity"`
	RealizedPnL   float64         `json:"realized_pnl"`
	TradesToday   int             `json:"trades_today"`
	OpenPositions []core.Position `json:"open_positions,omitempty"`
}

// Store loads and saves account state from a single JSON file. The
// mutex serializes Load/Save pairs so that two concurrent runs cannot
// interleave their read-modify-write cycles.
type Store struct {
	mu         sync.Mutex
	path       string
	seedEquity float64
}

// NewStore returns a store backed by path. seedEquity is used when no
// state file exists yet.
func NewStore(path string, seedEquity float64) *Store {
	return &Store{path: path, seedEquity: seedEquity}
}

// Load returns the account state for the trading day containing now.
// A missing file yields a fresh account with the seed equity. State
// carried over from a previous day keeps equity and open positions but
// resets the daily trade count and realized P&L.
func (s *Store) Load(now time.Time) (core.AccountState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return core.AccountState{Equity: s.seedEquity}, nil
	}
	if err != nil {
		return core.AccountState{}, fmt.Errorf("reading account state: %w", err)
	}

	var sf stateFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return core.AccountState{}, fmt.Errorf("parsing account state %s: %w", s.path, err)
	}

	state := core.AccountState{
		Equity:        sf.Equity,
		RealizedPnL:   sf.RealizedPnL,
		TradesToday:   sf.TradesToday,
		OpenPositions: sf.OpenPositions,
	}
	if sf.Date != tradingDay(now) {
		state.RealizedPnL = 0
		state.TradesToday = 0
		// 0DTE positions expire with the day they were opened.
		state.OpenPositions = nil
	}
	return state, nil
}

// Save writes the state back for the trading day containing now.
func (s *Store) Save(state core.AccountState, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf := stateFile{
		Date:          tradingDay(now),
		Equity:        state.Equity,
		RealizedPnL:   state.RealizedPnL,
		TradesToday:   state.TradesToday,
		OpenPositions: state.OpenPositions,
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding account state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating state directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing account state: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func tradingDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
