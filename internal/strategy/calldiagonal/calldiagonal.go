// Package calldiagonal builds call diagonal spreads for sideways
// sessions: sell a same-day call just above spot, buy a later-dated call
// at a higher strike, and harvest the faster decay of the short leg.
package calldiagonal

import (
	"time"

	"github.com/quantfold/odte/internal/analytics"
	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/strategy"
)

// Config holds the construction parameters.
type Config struct {
	ShortDelta     float64 // delta target of the 0DTE short call
	DeltaTolerance float64
	StrikeOffset   float64 // long strike distance above the short strike
	BackMonthDays  int     // preferred distance to the long leg's expiry
}

// DefaultConfig returns the standard diagonal parameters.
func DefaultConfig() Config {
	return Config{
		ShortDelta:     0.25,
		DeltaTolerance: 0.10,
		StrikeOffset:   20,
		BackMonthDays:  7,
	}
}

// CallDiagonal implements strategy.Builder.
type CallDiagonal struct {
	cfg Config
}

// New creates a call diagonal builder.
func New(cfg Config) *CallDiagonal {
	return &CallDiagonal{cfg: cfg}
}

func (c *CallDiagonal) Name() string            { return "call_diagonal" }
func (c *CallDiagonal) Kind() core.StrategyKind { return core.CallDiagonalSpread }
func (c *CallDiagonal) Regime() core.Regime     { return core.RegimeSideways }

// Build pairs each eligible 0DTE short call with the closest available
// long call at or above shortStrike+offset on the back-month expiry.
func (c *CallDiagonal) Build(ctx strategy.BuildContext) ([]core.SpreadCandidate, error) {
	shortsAvail := ctx.Chain.Strikes(core.Call, ctx.Now)
	if len(shortsAvail) == 0 {
		return nil, nil
	}

	backExpiry, ok := c.backMonthExpiry(ctx)
	if !ok {
		return nil, nil
	}
	longsAvail := ctx.Chain.Strikes(core.Call, backExpiry)
	if len(longsAvail) == 0 {
		return nil, nil
	}

	shortTTE := analytics.YearFraction(ctx.Now, ctx.Now)
	longTTE := analytics.YearFraction(ctx.Now, backExpiry)

	shorts := strategy.WithinDelta(ctx, shortsAvail, shortTTE, c.cfg.ShortDelta, c.cfg.DeltaTolerance)

	var out []core.SpreadCandidate
	for _, short := range shorts {
		longQuote, ok := c.pickLong(longsAvail, short.Quote.Strike)
		if !ok {
			continue
		}
		longGreeks, ok := strategy.GreeksFor(ctx, longQuote, longTTE)
		if !ok {
			continue
		}

		debit := longQuote.Mid() - short.Quote.Mid()
		if debit <= 0 {
			continue
		}

		legs := []strategy.Leg{
			{Action: core.LegSell, Quote: short.Quote, Quantity: 1, Greeks: short.Greeks},
			{Action: core.LegBuy, Quote: longQuote, Quantity: 1, Greeks: longGreeks},
		}
		net := strategy.NetPositionGreeks(legs)
		if net.Theta <= 0 {
			continue // no decay edge, the trade has no reason to exist
		}

		// Max profit approximated by the short premium retained if the
		// underlying pins below the short strike into the close.
		out = append(out, core.SpreadCandidate{
			Kind:       core.CallDiagonalSpread,
			Underlying: ctx.Chain.Underlying,
			Legs:       strategy.CoreLegs(legs),
			NetCredit:  -debit,
			MaxProfit:  short.Quote.Mid() * 0.8,
			MaxLoss:    debit,
			Breakeven:  short.Quote.Strike,
			ProbProfit: analytics.DiagonalPOP(ctx.Snapshot.Price, short.Quote.Strike, shortTTE, ctx.RiskFree, ctx.Vol),
			NetGreeks:  net,
		})
	}

	return out, nil
}

// backMonthExpiry picks the chain expiry closest to the configured
// horizon, strictly after today.
func (c *CallDiagonal) backMonthExpiry(ctx strategy.BuildContext) (time.Time, bool) {
	target := ctx.Now.AddDate(0, 0, c.cfg.BackMonthDays)

	var best time.Time
	var bestDist time.Duration
	found := false
	for _, exp := range ctx.Chain.Expiries() {
		if !exp.After(ctx.Now) || core.SameDay(exp, ctx.Now) {
			continue
		}
		dist := exp.Sub(target)
		if dist < 0 {
			dist = -dist
		}
		if !found || dist < bestDist {
			best, bestDist, found = exp, dist, true
		}
	}
	return best, found
}

// pickLong returns the lowest strike at or above shortStrike+offset,
// falling back to the lowest strike >= shortStrike when the offset
// overshoots the chain.
func (c *CallDiagonal) pickLong(longs []core.OptionQuote, shortStrike float64) (core.OptionQuote, bool) {
	want := shortStrike + c.cfg.StrikeOffset
	for _, q := range longs { // sorted ascending
		if q.Strike >= want {
			return q, true
		}
	}
	for _, q := range longs {
		if q.Strike >= shortStrike {
			return q, true
		}
	}
	return core.OptionQuote{}, false
}
