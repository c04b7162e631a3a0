package account

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quantfold/odte/internal/core"
)

var now = time.Date(2026, 8, 28, 13, 0, 0, 0, time.UTC)

func TestStore_ImplementsProvider(t *testing.T) {
	var _ Provider = (*Store)(nil)
}

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "state", "account.json"), 100_000)
}

func TestLoad_FreshAccount(t *testing.T) {
	s := newStore(t)

	state, err := s.Load(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Equity != 100_000 {
		t.Errorf("expected seed equity 100000, got %f", state.Equity)
	}
	if state.TradesToday != 0 || state.RealizedPnL != 0 || len(state.OpenPositions) != 0 {
		t.Errorf("fresh account should be empty: %+v", state)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newStore(t)
	in := core.AccountState{
		Equity:      104_250,
		RealizedPnL: -350,
		TradesToday: 2,
		OpenPositions: []core.Position{
			{Underlying: "SPX", Kind: core.PutCreditSpread, Contracts: 3},
		},
	}

	if err := s.Save(in, now); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.Load(now)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if out.Equity != in.Equity || out.RealizedPnL != in.RealizedPnL || out.TradesToday != in.TradesToday {
		t.Errorf("state changed across round trip: %+v vs %+v", out, in)
	}
	if out.ContractsFor("SPX") != 3 {
		t.Errorf("expected 3 open contracts, got %d", out.ContractsFor("SPX"))
	}
}

func TestLoad_NewDayResetsCounters(t *testing.T) {
	s := newStore(t)
	in := core.AccountState{
		Equity:      104_250,
		RealizedPnL: -350,
		TradesToday: 4,
		OpenPositions: []core.Position{
			{Underlying: "SPX", Kind: core.PutCreditSpread, Contracts: 3},
		},
	}
	if err := s.Save(in, now); err != nil {
		t.Fatalf("save: %v", err)
	}

	state, err := s.Load(now.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if state.Equity != 104_250 {
		t.Errorf("equity should carry over, got %f", state.Equity)
	}
	if state.TradesToday != 0 || state.RealizedPnL != 0 {
		t.Errorf("daily counters should reset, got %+v", state)
	}
	if len(state.OpenPositions) != 0 {
		t.Error("same-day positions should expire with the day")
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "account.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path, 100_000)

	if _, err := s.Load(now); err == nil {
		t.Error("expected error for corrupt state file")
	}
}
