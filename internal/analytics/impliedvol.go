package analytics

import (
	"fmt"
	"math"

	"github.com/quantfold/odte/internal/core"
)

const (
	volLower = 0.01
	volUpper = 5.0

	ivMaxIterations = 100
	ivTolerance     = 1e-6
)

// ImpliedVolatility inverts Price for the volatility that reproduces
// marketPrice. The solve bisects the [0.01, 5.0] domain to bracket the
// root, then refines with Newton steps where vega allows. It returns
// core.ErrConvergence when the market price is outside the attainable
// range or the tolerance is not met within the iteration budget; callers
// treat that as "quote unusable", never as fatal.
func ImpliedVolatility(marketPrice, spot, strike, timeToExpiry, riskFree float64, typ core.OptionType) (float64, error) {
	if marketPrice <= 0 || spot <= 0 || strike <= 0 || timeToExpiry <= epsTime {
		return 0, core.WrapError(core.ErrConvergence,
			fmt.Errorf("degenerate inputs: price=%.4f spot=%.2f strike=%.2f t=%.6f", marketPrice, spot, strike, timeToExpiry))
	}

	f := func(vol float64) float64 {
		return Price(spot, strike, timeToExpiry, riskFree, vol, typ) - marketPrice
	}

	lo, hi := volLower, volUpper
	fLo, fHi := f(lo), f(hi)
	if fLo*fHi > 0 {
		return 0, core.WrapError(core.ErrConvergence,
			fmt.Errorf("no sign change over [%.2f, %.2f] for price %.4f", volLower, volUpper, marketPrice))
	}

	vol := (lo + hi) / 2
	for i := 0; i < ivMaxIterations; i++ {
		diff := f(vol)
		if math.Abs(diff) < ivTolerance {
			return vol, nil
		}

		// Keep the bracket valid.
		if diff*fLo < 0 {
			hi = vol
		} else {
			lo = vol
			fLo = diff
		}

		// Newton step when vega is workable and the step stays inside
		// the bracket; bisection otherwise.
		next := vol
		if v := rawVega(spot, strike, timeToExpiry, riskFree, vol); v > 1e-10 {
			next = vol - diff/v
		}
		if next <= lo || next >= hi {
			next = (lo + hi) / 2
		}
		vol = next

		if hi-lo < 1e-9 {
			return vol, nil
		}
	}

	return 0, core.WrapError(core.ErrConvergence,
		fmt.Errorf("tolerance %.1e not met in %d iterations", ivTolerance, ivMaxIterations))
}
