// Package analytics prices options and derives Greeks and probabilities
// from market inputs. Every function is pure and deterministic for
// identical numeric inputs, which the orchestrator relies on for
// reproducible decisions.
package analytics

import (
	"math"
	"time"

	"github.com/quantfold/odte/internal/core"
)

const (
	// MinTimeToExpiry floors the year fraction used when pricing 0DTE
	// contracts intraday, matching a one-day horizon.
	MinTimeToExpiry = 1.0 / 365.25

	// degenerate cutoff below which the volatility term is numerically
	// meaningless and pricing falls back to intrinsic value
	epsTime = 1e-8
)

// YearFraction converts a calendar interval to years, floored at
// MinTimeToExpiry so same-day expiries still carry a volatility term.
func YearFraction(now, expiry time.Time) float64 {
	t := expiry.Sub(now).Seconds() / (365.25 * 24 * 3600)
	if t < MinTimeToExpiry {
		return MinTimeToExpiry
	}
	return t
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// Intrinsic returns the exercise value of a contract.
func Intrinsic(spot, strike float64, typ core.OptionType) float64 {
	if typ == core.Call {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

// Price returns the theoretical value of a European option under the
// lognormal model. At (or numerically near) zero time to expiry or zero
// volatility it returns intrinsic value instead of letting the d1/d2
// terms blow up.
func Price(spot, strike, timeToExpiry, riskFree, vol float64, typ core.OptionType) float64 {
	if timeToExpiry <= epsTime || vol <= 0 || spot <= 0 || strike <= 0 {
		return Intrinsic(spot, strike, typ)
	}

	d1, d2 := dTerms(spot, strike, timeToExpiry, riskFree, vol)
	discount := math.Exp(-riskFree * timeToExpiry)

	if typ == core.Call {
		return spot*normCDF(d1) - strike*discount*normCDF(d2)
	}
	return strike*discount*normCDF(-d2) - spot*normCDF(-d1)
}

// ComputeGreeks returns the analytic first and second derivatives of
// Price. Theta is per calendar day, vega per 1% volatility move.
// Degenerate inputs return the boundary delta (0 or +/-1) and zero for
// the rest.
func ComputeGreeks(spot, strike, timeToExpiry, riskFree, vol float64, typ core.OptionType) core.Greeks {
	if timeToExpiry <= epsTime || vol <= 0 || spot <= 0 || strike <= 0 {
		return boundaryGreeks(spot, strike, typ)
	}

	d1, d2 := dTerms(spot, strike, timeToExpiry, riskFree, vol)
	discount := math.Exp(-riskFree * timeToExpiry)
	sqrtT := math.Sqrt(timeToExpiry)

	var delta float64
	if typ == core.Call {
		delta = normCDF(d1)
	} else {
		delta = normCDF(d1) - 1
	}

	gamma := normPDF(d1) / (spot * vol * sqrtT)

	// Annual theta, then converted to per-day decay.
	thetaYear := -(spot * normPDF(d1) * vol) / (2 * sqrtT)
	if typ == core.Call {
		thetaYear -= riskFree * strike * discount * normCDF(d2)
	} else {
		thetaYear += riskFree * strike * discount * normCDF(-d2)
	}

	vega := spot * normPDF(d1) * sqrtT / 100

	return core.Greeks{
		Delta: delta,
		Gamma: gamma,
		Theta: thetaYear / 365,
		Vega:  vega,
	}
}

// rawVega is dPrice/dVol per unit volatility, used by the Newton step in
// the implied-vol solve.
func rawVega(spot, strike, timeToExpiry, riskFree, vol float64) float64 {
	if timeToExpiry <= epsTime || vol <= 0 || spot <= 0 || strike <= 0 {
		return 0
	}
	d1, _ := dTerms(spot, strike, timeToExpiry, riskFree, vol)
	return spot * normPDF(d1) * math.Sqrt(timeToExpiry)
}

func dTerms(spot, strike, timeToExpiry, riskFree, vol float64) (d1, d2 float64) {
	volSqrtT := vol * math.Sqrt(timeToExpiry)
	d1 = (math.Log(spot/strike) + (riskFree+vol*vol/2)*timeToExpiry) / volSqrtT
	d2 = d1 - volSqrtT
	return d1, d2
}

func boundaryGreeks(spot, strike float64, typ core.OptionType) core.Greeks {
	var delta float64
	if typ == core.Call {
		if spot > strike {
			delta = 1
		}
	} else {
		if spot < strike {
			delta = -1
		}
	}
	return core.Greeks{Delta: delta}
}
