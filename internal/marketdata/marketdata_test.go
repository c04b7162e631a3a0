package marketdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quantfold/odte/internal/core"
)

var ts = time.Date(2026, 8, 28, 13, 0, 0, 0, time.UTC)

// steadyHistory produces n bars drifting gently upward with a volume
// spike on the final bar.
func steadyHistory(n int) []core.OHLCV {
	bars := make([]core.OHLCV, n)
	for i := range bars {
		price := 4400 + float64(i)
		vol := int64(1_000_000)
		if i == n-1 {
			vol = 1_500_000
		}
		bars[i] = core.OHLCV{
			Open:   price - 1,
			High:   price + 3,
			Low:    price - 3,
			Close:  price,
			Volume: vol,
			Time:   ts.Add(-time.Duration(n-i) * 24 * time.Hour),
		}
	}
	return bars
}

func TestBuildSnapshot_ComputesIndicators(t *testing.T) {
	history := steadyHistory(60)
	snap := BuildSnapshot("SPX", 4460, 15, history, ts)

	if snap.Indicators == nil {
		t.Fatal("expected indicators with 60 bars of history")
	}
	ind := snap.Indicators

	if ind.RSI <= 50 || ind.RSI > 100 {
		t.Errorf("steady uptrend should have RSI above 50, got %f", ind.RSI)
	}
	if ind.MACDLine <= 0 {
		t.Errorf("uptrend should have positive MACD line, got %f", ind.MACDLine)
	}
	if ind.SMA20 <= ind.SMA50 {
		t.Errorf("uptrend should have SMA20 %f above SMA50 %f", ind.SMA20, ind.SMA50)
	}
	if !(ind.BollLower < ind.BollMiddle && ind.BollMiddle < ind.BollUpper) {
		t.Errorf("bollinger bands out of order: %f %f %f", ind.BollLower, ind.BollMiddle, ind.BollUpper)
	}
	if ind.StochK < 0 || ind.StochK > 100 {
		t.Errorf("stochastic %%K out of range: %f", ind.StochK)
	}

	if math.Abs(snap.VolumeRatio-1.5) > 0.01 {
		t.Errorf("expected volume ratio near 1.5, got %f", snap.VolumeRatio)
	}
}

func TestBuildSnapshot_ShortHistoryLeavesIndicatorsNil(t *testing.T) {
	snap := BuildSnapshot("SPX", 4460, 15, steadyHistory(30), ts)

	if snap.Indicators != nil {
		t.Error("expected nil indicators with 30 bars")
	}
	if snap.Price != 4460 || snap.VIX != 15 {
		t.Error("snapshot basics should survive short history")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func historyJSON(n int) string {
	out := "["
	for i, b := range steadyHistory(n) {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"open":%f,"high":%f,"low":%f,"close":%f,"volume":%d,"time":%q}`,
			b.Open, b.High, b.Low, b.Close, b.Volume, b.Time.Format(time.RFC3339))
	}
	return out + "]"
}

func TestFileProvider_Snapshot(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeFile(t, dir, "snapshot.json", fmt.Sprintf(`{
		"underlying": "SPX",
		"price": 4460,
		"vix": 15.2,
		"timestamp": "2026-08-28T13:00:00Z",
		"history": %s
	}`, historyJSON(60)))

	p := NewFileProvider(snapPath, "")
	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Underlying != "SPX" || snap.Price != 4460 || snap.VIX != 15.2 {
		t.Errorf("snapshot fields wrong: %+v", snap)
	}
	if snap.Indicators == nil {
		t.Error("expected computed indicators")
	}
	if !snap.Timestamp.Equal(ts) {
		t.Errorf("expected timestamp %s, got %s", ts, snap.Timestamp)
	}
}

func TestFileProvider_SnapshotMissingFile(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "nope.json"), "")

	_, err := p.Snapshot(context.Background())
	if !errors.Is(err, core.ErrDataUnavailable) {
		t.Errorf("expected data unavailable, got %v", err)
	}
}

func TestFileProvider_SnapshotRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeFile(t, dir, "snapshot.json", `{"underlying": "SPX"}`)

	p := NewFileProvider(snapPath, "")
	if _, err := p.Snapshot(context.Background()); !errors.Is(err, core.ErrDataUnavailable) {
		t.Errorf("expected data unavailable for missing price, got %v", err)
	}
}

func TestFileProvider_Chain(t *testing.T) {
	dir := t.TempDir()
	chainPath := writeFile(t, dir, "chain.json", `{
		"underlying": "SPX",
		"quotes": [
			{"strike": 4450, "expiry": "2026-08-28", "type": "put", "bid": 4.9, "ask": 5.1, "implied_vol": 0.21},
			{"strike": 4535, "expiry": "2026-09-04", "type": "call", "bid": 2.9, "ask": 3.1}
		]
	}`)

	p := NewFileProvider("", chainPath)
	chain, err := p.Chain(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chain.Quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(chain.Quotes))
	}
	q := chain.Quotes[0]
	if q.Type != core.Put || q.Strike != 4450 || q.ImpliedVol != 0.21 {
		t.Errorf("quote fields wrong: %+v", q)
	}
	want := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	if !q.Expiry.Equal(want) {
		t.Errorf("expected expiry %s, got %s", want, q.Expiry)
	}
}

func TestFileProvider_ChainRejectsBadType(t *testing.T) {
	dir := t.TempDir()
	chainPath := writeFile(t, dir, "chain.json", `{
		"underlying": "SPX",
		"quotes": [{"strike": 4450, "expiry": "2026-08-28", "type": "straddle", "bid": 1, "ask": 2}]
	}`)

	p := NewFileProvider("", chainPath)
	if _, err := p.Chain(context.Background()); !errors.Is(err, core.ErrDataUnavailable) {
		t.Errorf("expected data unavailable for bad type, got %v", err)
	}
}

func TestFileProvider_ChainRejectsBadExpiry(t *testing.T) {
	dir := t.TempDir()
	chainPath := writeFile(t, dir, "chain.json", `{
		"underlying": "SPX",
		"quotes": [{"strike": 4450, "expiry": "today", "type": "put", "bid": 1, "ask": 2}]
	}`)

	p := NewFileProvider("", chainPath)
	if _, err := p.Chain(context.Background()); !errors.Is(err, core.ErrDataUnavailable) {
		t.Errorf("expected data unavailable for bad expiry, got %v", err)
	}
}
