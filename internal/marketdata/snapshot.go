package marketdata

import (
	"time"

	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/indicator"
)

const (
	rsiPeriod        = 14
	macdFast         = 12
	macdSlow         = 26
	macdSignal       = 9
	smaShort         = 20
	smaLong          = 50
	bollingerPeriod  = 20
	bollingerStdDev  = 2.0
	stochasticPeriod = 14
	volumeAvgPeriod  = 20
)

// minHistoryBars is the shortest history that yields every indicator.
// MACD needs slow+signal-1 bars; the 50-bar SMA dominates.
const minHistoryBars = smaLong

// BuildSnapshot assembles a MarketSnapshot from raw bars. With fewer
// than minHistoryBars of history the Indicators stay nil and the
// classifier will refuse to infer a regime.
func BuildSnapshot(underlying string, price, vix float64, history []core.OHLCV, ts time.Time) core.MarketSnapshot {
	snap := core.MarketSnapshot{
		Timestamp:  ts,
		Underlying: underlying,
		Price:      price,
		History:    history,
		VIX:        vix,
	}

	if len(history) < minHistoryBars {
		return snap
	}

	closes := make([]float64, len(history))
	highs := make([]float64, len(history))
	lows := make([]float64, len(history))
	volumes := make([]float64, len(history))
	for i, bar := range history {
		closes[i] = bar.Close
		highs[i] = bar.High
		lows[i] = bar.Low
		volumes[i] = float64(bar.Volume)
	}

	set := &core.IndicatorSet{}

	if v, ok := indicator.Last(indicator.RSI(closes, rsiPeriod)); ok {
		set.RSI = v
	}
	line, signal := indicator.MACD(closes, macdFast, macdSlow, macdSignal)
	if v, ok := indicator.Last(line); ok {
		set.MACDLine = v
	}
	if v, ok := indicator.Last(signal); ok {
		set.MACDSignal = v
	}
	if v, ok := indicator.Last(indicator.SMA(closes, smaShort)); ok {
		set.SMA20 = v
	}
	if v, ok := indicator.Last(indicator.SMA(closes, smaLong)); ok {
		set.SMA50 = v
	}
	upper, middle, lower := indicator.Bollinger(closes, bollingerPeriod, bollingerStdDev)
	if v, ok := indicator.Last(upper); ok {
		set.BollUpper = v
	}
	if v, ok := indicator.Last(middle); ok {
		set.BollMiddle = v
	}
	if v, ok := indicator.Last(lower); ok {
		set.BollLower = v
	}
	k, d := indicator.Stochastic(highs, lows, closes, stochasticPeriod)
	if v, ok := indicator.Last(k); ok {
		set.StochK = v
	}
	if v, ok := indicator.Last(d); ok {
		set.StochD = v
	}

	snap.Indicators = set
	snap.VolumeRatio = volumeRatio(volumes)
	return snap
}

// volumeRatio compares the latest bar's volume to its trailing average.
func volumeRatio(volumes []float64) float64 {
	if len(volumes) < volumeAvgPeriod+1 {
		return 0
	}
	avg, ok := indicator.Last(indicator.SMA(volumes[:len(volumes)-1], volumeAvgPeriod))
	if !ok || avg <= 0 {
		return 0
	}
	return volumes[len(volumes)-1] / avg
}
