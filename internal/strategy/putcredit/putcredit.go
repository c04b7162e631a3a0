// Package putcredit builds 0DTE put credit spreads for bullish sessions:
// sell a put near the target delta, buy a put one spread-width further
// out of the money, collect the difference.
package putcredit

import (
	"github.com/quantfold/odte/internal/analytics"
	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/strategy"
)

// Config holds the construction parameters.
type Config struct {
	TargetDelta    float64 // |delta| of the short put
	DeltaTolerance float64
	SpreadWidth    float64 // distance to the long strike
	MinCredit      float64
}

// DefaultConfig returns the standard put credit spread parameters.
func DefaultConfig() Config {
	return Config{
		TargetDelta:    0.15,
		DeltaTolerance: 0.05,
		SpreadWidth:    10,
		MinCredit:      2.0,
	}
}

// PutCredit implements strategy.Builder.
type PutCredit struct {
	cfg Config
}

// New creates a put credit spread builder.
func New(cfg Config) *PutCredit {
	return &PutCredit{cfg: cfg}
}

func (p *PutCredit) Name() string            { return "put_credit" }
func (p *PutCredit) Kind() core.StrategyKind { return core.PutCreditSpread }
func (p *PutCredit) Regime() core.Regime     { return core.RegimeBullish }

// Build constructs one candidate per short put whose |delta| falls in
// the target band and whose paired long put exists with enough credit.
func (p *PutCredit) Build(ctx strategy.BuildContext) ([]core.SpreadCandidate, error) {
	puts := ctx.Chain.Strikes(core.Put, ctx.Now)
	if len(puts) == 0 {
		return nil, nil
	}

	tte := analytics.YearFraction(ctx.Now, ctx.Now)

	shorts := strategy.WithinDelta(ctx, puts, tte, p.cfg.TargetDelta, p.cfg.DeltaTolerance)

	var out []core.SpreadCandidate
	for _, short := range shorts {
		longQuote, ok := ctx.Chain.Find(short.Quote.Strike-p.cfg.SpreadWidth, ctx.Now, core.Put)
		if !ok {
			continue
		}
		longGreeks, ok := strategy.GreeksFor(ctx, longQuote, tte)
		if !ok {
			continue
		}

		credit := short.Quote.Mid() - longQuote.Mid()
		if credit < p.cfg.MinCredit {
			continue
		}

		legs := []strategy.Leg{
			{Action: core.LegSell, Quote: short.Quote, Quantity: 1, Greeks: short.Greeks},
			{Action: core.LegBuy, Quote: longQuote, Quantity: 1, Greeks: longGreeks},
		}

		width := short.Quote.Strike - longQuote.Strike
		out = append(out, core.SpreadCandidate{
			Kind:       core.PutCreditSpread,
			Underlying: ctx.Chain.Underlying,
			Legs:       strategy.CoreLegs(legs),
			NetCredit:  credit,
			MaxProfit:  credit,
			MaxLoss:    width - credit,
			Breakeven:  short.Quote.Strike - credit,
			ProbProfit: analytics.CreditSpreadPOP(short.Greeks.Delta),
			NetGreeks:  strategy.NetPositionGreeks(legs),
		})
	}

	return out, nil
}
