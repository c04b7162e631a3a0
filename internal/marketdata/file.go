package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/quantfold/odte/internal/core"
)

// FileProvider reads the run inputs from JSON files, typically exported
// by a separate market data fetcher before the scheduled run.
type FileProvider struct {
	snapshotPath string
	chainPath    string
}

// NewFileProvider creates a provider over the two input files.
func NewFileProvider(snapshotPath, chainPath string) *FileProvider {
	return &FileProvider{snapshotPath: snapshotPath, chainPath: chainPath}
}

type snapshotFile struct {
	Underlying string     `json:"underlying"`
	Price      float64    `json:"price"`
	VIX        float64    `json:"vix"`
	Timestamp  time.Time  `json:"timestamp"`
	History    []barEntry `json:"history"`
}

type barEntry struct {
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
	Time   time.Time `json:"time"`
}

type chainFile struct {
	Underlying string       `json:"underlying"`
	Quotes     []quoteEntry `json:"quotes"`
}

type quoteEntry struct {
	Strike       float64 `json:"strike"`
	Expiry       string  `json:"expiry"` // YYYY-MM-DD
	Type         string  `json:"type"`
	Bid          float64 `json:"bid"`
	Ask          float64 `json:"ask"`
	ImpliedVol   float64 `json:"implied_vol,omitempty"`
	OpenInterest int64   `json:"open_interest,omitempty"`
	Volume       int64   `json:"volume,omitempty"`
}

// Snapshot reads the snapshot file and computes the indicators.
func (p *FileProvider) Snapshot(ctx context.Context) (core.MarketSnapshot, error) {
	data, err := os.ReadFile(p.snapshotPath)
	if err != nil {
		return core.MarketSnapshot{}, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("reading snapshot file: %w", err))
	}

	var f snapshotFile
	if err := json.Unmarshal(data, &f); err != nil {
		return core.MarketSnapshot{}, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("decoding snapshot file: %w", err))
	}
	if f.Underlying == "" || f.Price <= 0 || f.Timestamp.IsZero() {
		return core.MarketSnapshot{}, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("snapshot file missing underlying, price or timestamp"))
	}

	history := make([]core.OHLCV, len(f.History))
	for i, b := range f.History {
		history[i] = core.OHLCV{
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
			Time:   b.Time,
		}
	}

	return BuildSnapshot(f.Underlying, f.Price, f.VIX, history, f.Timestamp), nil
}

// Chain reads the option chain file.
func (p *FileProvider) Chain(ctx context.Context) (core.OptionChain, error) {
	data, err := os.ReadFile(p.chainPath)
	if err != nil {
		return core.OptionChain{}, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("reading chain file: %w", err))
	}

	var f chainFile
	if err := json.Unmarshal(data, &f); err != nil {
		return core.OptionChain{}, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("decoding chain file: %w", err))
	}

	chain := core.OptionChain{Underlying: f.Underlying}
	for _, q := range f.Quotes {
		expiry, err := time.ParseInLocation("2006-01-02", q.Expiry, time.UTC)
		if err != nil {
			return core.OptionChain{}, core.WrapError(core.ErrDataUnavailable,
				fmt.Errorf("quote strike %.0f has bad expiry %q: %w", q.Strike, q.Expiry, err))
		}
		typ := core.OptionType(q.Type)
		if typ != core.Call && typ != core.Put {
			return core.OptionChain{}, core.WrapError(core.ErrDataUnavailable,
				fmt.Errorf("quote strike %.0f has unknown type %q", q.Strike, q.Type))
		}
		chain.Quotes = append(chain.Quotes, core.OptionQuote{
			Strike:       q.Strike,
			Expiry:       expiry,
			Type:         typ,
			Bid:          q.Bid,
			Ask:          q.Ask,
			ImpliedVol:   q.ImpliedVol,
			OpenInterest: q.OpenInterest,
			Volume:       q.Volume,
		})
	}
	return chain, nil
}
