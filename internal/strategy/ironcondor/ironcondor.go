// Package ironcondor builds 0DTE iron condors for range-bound sessions:
// a short put and short call near the target delta on each side of spot,
// with protective wings one wing-width further out.
package ironcondor

import (
	"math"

	"github.com/quantfold/odte/internal/analytics"
	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/strategy"
)

// Config holds the construction parameters.
type Config struct {
	TargetDelta    float64 // |delta| of both short strikes
	DeltaTolerance float64
	WingWidth      float64
	MinCredit      float64
	MaxNetDelta    float64 // structure must stay close to delta neutral
}

// DefaultConfig returns the standard condor parameters.
func DefaultConfig() Config {
	return Config{
		TargetDelta:    0.10,
		DeltaTolerance: 0.05,
		WingWidth:      30,
		MinCredit:      5.0,
		MaxNetDelta:    0.10,
	}
}

// IronCondor implements strategy.Builder.
type IronCondor struct {
	cfg Config
}

// New creates an iron condor builder.
func New(cfg Config) *IronCondor {
	return &IronCondor{cfg: cfg}
}

func (ic *IronCondor) Name() string            { return "iron_condor" }
func (ic *IronCondor) Kind() core.StrategyKind { return core.IronCondor }
func (ic *IronCondor) Regime() core.Regime     { return core.RegimeSideways }

// Build assembles at most one condor: the short put and short call
// closest to the target delta, each winged, kept only when the credit,
// delta neutrality, and decay conditions all hold.
func (ic *IronCondor) Build(ctx strategy.BuildContext) ([]core.SpreadCandidate, error) {
	tte := analytics.YearFraction(ctx.Now, ctx.Now)

	shortPut, ok := ic.closest(ctx, ctx.Chain.Strikes(core.Put, ctx.Now), tte)
	if !ok {
		return nil, nil
	}
	shortCall, ok := ic.closest(ctx, ctx.Chain.Strikes(core.Call, ctx.Now), tte)
	if !ok {
		return nil, nil
	}

	longPutQuote, ok := ctx.Chain.Find(shortPut.Quote.Strike-ic.cfg.WingWidth, ctx.Now, core.Put)
	if !ok {
		return nil, nil
	}
	longCallQuote, ok := ctx.Chain.Find(shortCall.Quote.Strike+ic.cfg.WingWidth, ctx.Now, core.Call)
	if !ok {
		return nil, nil
	}
	longPutGreeks, ok := strategy.GreeksFor(ctx, longPutQuote, tte)
	if !ok {
		return nil, nil
	}
	longCallGreeks, ok := strategy.GreeksFor(ctx, longCallQuote, tte)
	if !ok {
		return nil, nil
	}

	credit := (shortPut.Quote.Mid() - longPutQuote.Mid()) +
		(shortCall.Quote.Mid() - longCallQuote.Mid())
	if credit < ic.cfg.MinCredit {
		return nil, nil
	}

	legs := []strategy.Leg{
		{Action: core.LegSell, Quote: shortPut.Quote, Quantity: 1, Greeks: shortPut.Greeks},
		{Action: core.LegBuy, Quote: longPutQuote, Quantity: 1, Greeks: longPutGreeks},
		{Action: core.LegSell, Quote: shortCall.Quote, Quantity: 1, Greeks: shortCall.Greeks},
		{Action: core.LegBuy, Quote: longCallQuote, Quantity: 1, Greeks: longCallGreeks},
	}
	net := strategy.NetPositionGreeks(legs)
	if math.Abs(net.Delta) > ic.cfg.MaxNetDelta || net.Theta <= 0 {
		return nil, nil
	}

	lowerBE := shortPut.Quote.Strike - credit
	upperBE := shortCall.Quote.Strike + credit

	return []core.SpreadCandidate{{
		Kind:           core.IronCondor,
		Underlying:     ctx.Chain.Underlying,
		Legs:           strategy.CoreLegs(legs),
		NetCredit:      credit,
		MaxProfit:      credit,
		MaxLoss:        ic.cfg.WingWidth - credit,
		Breakeven:      lowerBE,
		BreakevenUpper: upperBE,
		ProbProfit:     analytics.ProbBetween(ctx.Snapshot.Price, lowerBE, upperBE, tte, ctx.RiskFree, ctx.Vol),
		NetGreeks:      net,
	}}, nil
}

// closest picks the in-band quote whose |delta| is nearest the target.
func (ic *IronCondor) closest(ctx strategy.BuildContext, quotes []core.OptionQuote, tte float64) (strategy.QuoteGreeks, bool) {
	inBand := strategy.WithinDelta(ctx, quotes, tte, ic.cfg.TargetDelta, ic.cfg.DeltaTolerance)
	if len(inBand) == 0 {
		return strategy.QuoteGreeks{}, false
	}

	best := inBand[0]
	bestDist := math.Abs(math.Abs(best.Greeks.Delta) - ic.cfg.TargetDelta)
	for _, qg := range inBand[1:] {
		dist := math.Abs(math.Abs(qg.Greeks.Delta) - ic.cfg.TargetDelta)
		if dist < bestDist {
			best, bestDist = qg, dist
		}
	}
	return best, true
}
