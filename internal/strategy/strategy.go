// Package strategy builds and ranks candidate option spreads for a
// classified market regime.
package strategy

import (
	"time"

	"github.com/quantfold/odte/internal/analytics"
	"github.com/quantfold/odte/internal/core"
)

// BuildContext provides market data and pricing inputs to builders.
// Everything needed to reproduce a build is in here; builders hold no
// state of their own beyond configuration.
type BuildContext struct {
	Snapshot core.MarketSnapshot
	Chain    core.OptionChain
	Now      time.Time
	RiskFree float64
	Vol      float64 // blended volatility estimate for quotes without their own IV

	// OnSolveFailure, when set, is invoked once per quote excluded for a
	// failed implied vol solve.
	OnSolveFailure func()
}

// Builder constructs spread candidates for one strategy kind.
type Builder interface {
	Name() string
	Kind() core.StrategyKind
	Regime() core.Regime
	Build(ctx BuildContext) ([]core.SpreadCandidate, error)
}

// QuoteVol resolves the volatility to price a quote with: the quote's own
// implied vol when present, otherwise a solve from its midpoint. A failed
// solve marks the quote unusable and it is excluded from construction.
func QuoteVol(ctx BuildContext, q core.OptionQuote, timeToExpiry float64) (float64, bool) {
	if q.ImpliedVol > 0 {
		return q.ImpliedVol, true
	}
	if !q.IsValid() {
		return 0, false
	}
	vol, err := analytics.ImpliedVolatility(q.Mid(), ctx.Snapshot.Price, q.Strike, timeToExpiry, ctx.RiskFree, q.Type)
	if err != nil {
		if ctx.OnSolveFailure != nil {
			ctx.OnSolveFailure()
		}
		return 0, false
	}
	return vol, true
}

// GreeksFor prices a quote's Greeks with its resolved volatility.
func GreeksFor(ctx BuildContext, q core.OptionQuote, timeToExpiry float64) (core.Greeks, bool) {
	vol, ok := QuoteVol(ctx, q, timeToExpiry)
	if !ok {
		return core.Greeks{}, false
	}
	return analytics.ComputeGreeks(ctx.Snapshot.Price, q.Strike, timeToExpiry, ctx.RiskFree, vol, q.Type), true
}

// WithinDelta filters quotes whose |delta| lands inside
// [target-tolerance, target+tolerance], returning each with its Greeks.
// Unusable quotes are silently dropped.
func WithinDelta(ctx BuildContext, quotes []core.OptionQuote, timeToExpiry, target, tolerance float64) []QuoteGreeks {
	var out []QuoteGreeks
	for _, q := range quotes {
		g, ok := GreeksFor(ctx, q, timeToExpiry)
		if !ok {
			continue
		}
		d := g.Delta
		if d < 0 {
			d = -d
		}
		if d >= target-tolerance && d <= target+tolerance {
			out = append(out, QuoteGreeks{Quote: q, Greeks: g})
		}
	}
	return out
}

// QuoteGreeks pairs a quote with the Greeks derived from it.
type QuoteGreeks struct {
	Quote  core.OptionQuote
	Greeks core.Greeks
}

// NetPositionGreeks aggregates leg Greeks with position signs: bought
// legs add, sold legs subtract. A healthy credit structure therefore
// carries positive theta.
func NetPositionGreeks(legs []Leg) core.Greeks {
	var net core.Greeks
	for _, l := range legs {
		g := l.Greeks.Scale(float64(l.Quantity))
		if l.Action == core.LegSell {
			g = g.Scale(-1)
		}
		net = net.Add(g)
	}
	return net
}

// Leg pairs a core leg with its pricing Greeks during construction.
type Leg struct {
	Action   core.LegAction
	Quote    core.OptionQuote
	Quantity int
	Greeks   core.Greeks
}

// CoreLegs strips construction Greeks down to the persisted leg shape.
func CoreLegs(legs []Leg) []core.Leg {
	out := make([]core.Leg, len(legs))
	for i, l := range legs {
		out[i] = core.Leg{Action: l.Action, Quote: l.Quote, Quantity: l.Quantity}
	}
	return out
}
