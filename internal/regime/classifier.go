// Package regime converts an indicator snapshot into a market regime
// label. Rules are evaluated in strict priority order, Bearish first, so
// high-volatility signals always dominate and ambiguous input fails
// toward no-trade.
package regime

import (
	"time"

	"github.com/quantfold/odte/internal/core"
)

// Thresholds are the classifier bands. Immutable per run.
type Thresholds struct {
	BearishVIX         float64 // VIX above this is bearish outright
	RSIOversold        float64
	RSIOverbought      float64
	SidewaysVIXMin     float64
	SidewaysVIXMax     float64
	BullishRSIMin      float64
	BullishRSIMax      float64
	BullishVIXMax      float64
	VolumeConfirmation float64 // volume-vs-average multiple required for bullish
	MaxSnapshotAge     time.Duration
}

// DefaultThresholds returns the standard classifier bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BearishVIX:         30,
		RSIOversold:        30,
		RSIOverbought:      70,
		SidewaysVIXMin:     20,
		SidewaysVIXMax:     30,
		BullishRSIMin:      40,
		BullishRSIMax:      70,
		BullishVIXMax:      20,
		VolumeConfirmation: 1.2,
		MaxSnapshotAge:     30 * time.Minute,
	}
}

// Classifier labels market snapshots.
type Classifier struct {
	t Thresholds
}

// New creates a classifier with the given bands.
func New(t Thresholds) *Classifier {
	return &Classifier{t: t}
}

// Classify maps a snapshot to a regime. Identical snapshots always yield
// the identical regime; the four regimes are mutually exclusive and
// exhaustive. A missing indicator set or a stale snapshot forces
// Indeterminate rather than guessing from partial data.
func (c *Classifier) Classify(snap core.MarketSnapshot, now time.Time) core.Regime {
	if snap.Indicators == nil || snap.Price <= 0 || snap.VIX <= 0 {
		return core.RegimeIndeterminate
	}
	if snap.IsStale(now, c.t.MaxSnapshotAge) {
		return core.RegimeIndeterminate
	}

	ind := snap.Indicators

	// 1. Bearish triggers dominate everything else.
	if snap.VIX > c.t.BearishVIX ||
		ind.RSI < c.t.RSIOversold ||
		ind.RSI > c.t.RSIOverbought ||
		(ind.MACDLine < ind.MACDSignal && snap.Price < ind.SMA20 && snap.Price < ind.SMA50) {
		return core.RegimeBearish
	}

	// 2. Sideways: neutral momentum inside the bands, elevated but not
	// extreme volatility. Boundary values land here, not in Bullish.
	if ind.RSI >= c.t.RSIOversold && ind.RSI <= c.t.RSIOverbought &&
		snap.Price >= ind.BollLower && snap.Price <= ind.BollUpper &&
		snap.VIX >= c.t.SidewaysVIXMin && snap.VIX <= c.t.SidewaysVIXMax {
		return core.RegimeSideways
	}

	// 3. Bullish requires every confirmation at once.
	if ind.RSI >= c.t.BullishRSIMin && ind.RSI <= c.t.BullishRSIMax &&
		ind.MACDLine > ind.MACDSignal &&
		snap.Price > ind.SMA20 && snap.Price > ind.SMA50 &&
		snap.VIX < c.t.BullishVIXMax &&
		snap.VolumeRatio >= c.t.VolumeConfirmation {
		return core.RegimeBullish
	}

	// 4. Anything else maps downstream to NoTrade.
	return core.RegimeIndeterminate
}
