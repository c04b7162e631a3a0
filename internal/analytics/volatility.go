package analytics

import (
	"math"

	"github.com/quantfold/odte/internal/core"
)

const (
	volFloor        = 0.10
	histVolMinBars  = 21
	tradingDaysYear = 252
)

// EstimateVolatility blends the VIX-implied level with annualized
// historical volatility from the OHLCV window (70/30) when at least 21
// bars exist, falling back to VIX alone otherwise. Floored at 10%.
func EstimateVolatility(history []core.OHLCV, vix float64) float64 {
	implied := vix / 100

	vol := implied
	if hist, ok := historicalVol(history); ok {
		vol = 0.7*implied + 0.3*hist
	}

	if vol < volFloor {
		return volFloor
	}
	return vol
}

func historicalVol(history []core.OHLCV) (float64, bool) {
	if len(history) < histVolMinBars {
		return 0, false
	}

	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1].Close, history[i].Close
		if prev <= 0 || cur <= 0 {
			return 0, false
		}
		returns = append(returns, math.Log(cur/prev))
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(returns)-1))

	return std * math.Sqrt(tradingDaysYear), true
}
