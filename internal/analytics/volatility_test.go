package analytics

import (
	"math"
	"testing"

	"github.com/quantfold/odte/internal/core"
	"github.com/stretchr/testify/assert"
)

func bars(closes ...float64) []core.OHLCV {
	out := make([]core.OHLCV, len(closes))
	for i, c := range closes {
		out[i] = core.OHLCV{Close: c}
	}
	return out
}

func TestEstimateVolatility_VIXOnlyWhenHistoryShort(t *testing.T) {
	vol := EstimateVolatility(bars(4500, 4510), 25)
	assert.InDelta(t, 0.25, vol, 1e-9)
}

func TestEstimateVolatility_BlendsHistorical(t *testing.T) {
	// 30 bars of constant price: historical vol is zero, so the blend
	// is 70% of the VIX level.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 4500
	}
	vol := EstimateVolatility(bars(closes...), 30)
	assert.InDelta(t, 0.7*0.30, vol, 1e-9)
}

func TestEstimateVolatility_Floor(t *testing.T) {
	vol := EstimateVolatility(nil, 5)
	assert.Equal(t, 0.10, vol)
}

func TestEstimateVolatility_HistoricalReactsToSwings(t *testing.T) {
	calm := make([]float64, 30)
	wild := make([]float64, 30)
	for i := range calm {
		calm[i] = 4500 + 1*math.Sin(float64(i))
		wild[i] = 4500 + 100*math.Sin(float64(i))
	}

	calmVol := EstimateVolatility(bars(calm...), 20)
	wildVol := EstimateVolatility(bars(wild...), 20)
	assert.Greater(t, wildVol, calmVol)
}

func TestEstimateVolatility_BadHistoryFallsBack(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 4500
	}
	closes[10] = 0 // a broken bar invalidates the return series

	vol := EstimateVolatility(bars(closes...), 25)
	assert.InDelta(t, 0.25, vol, 1e-9)
}
