package analytics

import "math"

// terminal price distribution under the drifted lognormal approximation
func terminalDist(spot, timeToExpiry, riskFree, vol float64) (mean, std float64) {
	drift := riskFree - vol*vol/2
	mean = spot * math.Exp(drift*timeToExpiry)
	std = spot * vol * math.Sqrt(timeToExpiry)
	return mean, std
}

// ProbBelow estimates the probability the underlying finishes below
// level at expiry.
func ProbBelow(spot, level, timeToExpiry, riskFree, vol float64) float64 {
	if timeToExpiry <= epsTime || vol <= 0 || spot <= 0 {
		if spot < level {
			return 1
		}
		return 0
	}
	mean, std := terminalDist(spot, timeToExpiry, riskFree, vol)
	return normCDF((level - mean) / std)
}

// ProbBetween estimates the probability the underlying finishes inside
// (lower, upper) at expiry. Used for two-sided structures whose profit
// zone is a band around spot.
func ProbBetween(spot, lower, upper, timeToExpiry, riskFree, vol float64) float64 {
	if upper <= lower {
		return 0
	}
	return ProbBelow(spot, upper, timeToExpiry, riskFree, vol) -
		ProbBelow(spot, lower, timeToExpiry, riskFree, vol)
}

// CreditSpreadPOP approximates probability of profit for a credit spread
// from the short strike's delta: the short option's |delta| approximates
// its probability of expiring in the money.
func CreditSpreadPOP(shortDelta float64) float64 {
	pop := 1 - math.Abs(shortDelta)
	if pop < 0 {
		return 0
	}
	if pop > 1 {
		return 1
	}
	return pop
}

// DiagonalPOP is the modeled probability a short call expires out of the
// money at the short leg's expiry, which is the profit condition for a
// call diagonal carried to that date.
func DiagonalPOP(spot, shortStrike, timeToExpiry, riskFree, vol float64) float64 {
	return ProbBelow(spot, shortStrike, timeToExpiry, riskFree, vol)
}
