// Package risk gates spread candidates against account limits and sizes
// the approved ones. Each evaluation is a fresh pass through a small
// state machine; nothing is carried between runs, the caller supplies
// the account view and limits every time.
package risk

import (
	"fmt"
	"math"

	"github.com/quantfold/odte/internal/core"
	"go.uber.org/zap"
)

// State is one stage of a single evaluation pass.
type State string

const (
	StateIdle       State = "idle"
	StateEvaluating State = "evaluating"
	StateApproved   State = "approved"
	StateRejected   State = "rejected"
	StateSized      State = "sized"
	StateFinal      State = "final"
)

// Evaluation is the terminal result of one candidate pass. Approved
// evaluations carry a contract count and its dollar risk; rejected ones
// carry exactly one enumerated reason.
type Evaluation struct {
	Approved   bool
	Contracts  int
	DollarRisk float64
	Reason     core.RejectionReason
	Message    string
}

// Validator runs the per-candidate check sequence.
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a validator. The logger is optional.
func NewValidator(logger ...*zap.Logger) *Validator {
	l := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Validator{logger: l}
}

// run tracks the state of one evaluation pass.
type run struct {
	state  State
	logger *zap.Logger
}

func (r *run) to(s State) {
	r.logger.Debug("risk state transition",
		zap.String("from", string(r.state)),
		zap.String("to", string(s)),
	)
	r.state = s
}

// ProposedSize computes the contract count risked per trade: the
// smaller of floor(equity x riskFraction / dollar max loss per
// contract) and floor(maxRiskPerTrade / dollar max loss per contract),
// capped at maxPositionSize. Zero means neither the account nor the
// per-trade risk budget can carry one contract.
func ProposedSize(equity, riskFraction, dollarLossPerContract, maxRiskPerTrade float64, maxPositionSize int) int {
	if dollarLossPerContract <= 0 || riskFraction <= 0 || equity <= 0 {
		return 0
	}
	size := int(math.Floor(equity * riskFraction / dollarLossPerContract))
	if maxRiskPerTrade > 0 {
		riskBased := int(math.Floor(maxRiskPerTrade / dollarLossPerContract))
		if riskBased < size {
			size = riskBased
		}
	}
	if maxPositionSize > 0 && size > maxPositionSize {
		size = maxPositionSize
	}
	if size < 0 {
		return 0
	}
	return size
}

// Evaluate runs the full check sequence for one candidate. Checks run in
// a fixed order and the first failure decides the rejection reason:
// daily trade count, daily loss, probability of profit, net Greeks at
// the proposed size, concentration. A candidate that clears every check
// is sized; a proposed size below one contract, including when the
// per-trade risk budget cannot fund a single contract, rejects with
// SizeBelowMinimum.
func (v *Validator) Evaluate(c core.SpreadCandidate, account core.AccountState, limits core.RiskLimits) Evaluation {
	r := &run{state: StateIdle, logger: v.logger}
	r.to(StateEvaluating)

	lossPC := c.MaxLoss * core.ContractMultiplier
	size := ProposedSize(account.Equity, limits.RiskFractionPerTrade, lossPC, limits.MaxRiskPerTrade, limits.MaxPositionSize)
	dollarRisk := lossPC * float64(size)

	reject := func(reason core.RejectionReason, msg string) Evaluation {
		r.to(StateRejected)
		r.to(StateFinal)
		v.logger.Info("candidate rejected",
			zap.String("strategy", string(c.Kind)),
			zap.String("reason", string(reason)),
		)
		return Evaluation{Reason: reason, Message: msg}
	}

	if limits.MaxTradesPerDay > 0 && account.TradesToday >= limits.MaxTradesPerDay {
		return reject(core.ReasonDailyTradeLimitReached,
			fmt.Sprintf("daily trade limit reached: %d of %d trades used", account.TradesToday, limits.MaxTradesPerDay))
	}

	if limits.MaxDailyLoss > 0 && account.RealizedPnL <= -limits.MaxDailyLoss {
		return reject(core.ReasonDailyLossLimitReached,
			fmt.Sprintf("daily loss limit reached: realized %.2f against limit %.2f", account.RealizedPnL, limits.MaxDailyLoss))
	}

	// Sizing already caps dollar risk at the per-trade limit, so this
	// only fires if that invariant is ever broken.
	if limits.MaxRiskPerTrade > 0 && size >= 1 && dollarRisk > limits.MaxRiskPerTrade {
		return reject(core.ReasonMaxRiskExceeded,
			fmt.Sprintf("risk %.2f at %d contracts exceeds max risk per trade %.2f", dollarRisk, size, limits.MaxRiskPerTrade))
	}

	if c.ProbProfit < limits.MinProbProfit {
		return reject(core.ReasonProbabilityTooLow,
			fmt.Sprintf("probability of profit %.1f%% below minimum %.1f%%", c.ProbProfit*100, limits.MinProbProfit*100))
	}

	scaled := c.NetGreeks.Scale(float64(size))
	if limits.MaxNetDelta > 0 && math.Abs(scaled.Delta) > limits.MaxNetDelta {
		return reject(core.ReasonGreeksExceeded,
			fmt.Sprintf("net delta %.3f at %d contracts exceeds limit %.3f", scaled.Delta, size, limits.MaxNetDelta))
	}
	if limits.MaxNetVega > 0 && math.Abs(scaled.Vega) > limits.MaxNetVega {
		return reject(core.ReasonGreeksExceeded,
			fmt.Sprintf("net vega %.3f at %d contracts exceeds limit %.3f", scaled.Vega, size, limits.MaxNetVega))
	}

	if limits.MaxPositionSize > 0 {
		open := account.ContractsFor(c.Underlying)
		if open+size > limits.MaxPositionSize {
			return reject(core.ReasonConcentrationExceeded,
				fmt.Sprintf("%d open plus %d new contracts in %s exceeds cap %d", open, size, c.Underlying, limits.MaxPositionSize))
		}
	}

	r.to(StateApproved)

	if size < 1 {
		return reject(core.ReasonSizeBelowMinimum,
			fmt.Sprintf("sizing budget on equity %.2f cannot fund one contract risking %.2f", account.Equity, lossPC))
	}

	r.to(StateSized)
	r.to(StateFinal)
	v.logger.Info("candidate approved",
		zap.String("strategy", string(c.Kind)),
		zap.Int("contracts", size),
		zap.Float64("dollar_risk", dollarRisk),
	)
	return Evaluation{
		Approved:   true,
		Contracts:  size,
		DollarRisk: dollarRisk,
		Message:    fmt.Sprintf("approved %d contracts risking %.2f", size, dollarRisk),
	}
}

// AccountLevel reports whether a rejection reason is a property of the
// account rather than the candidate. Account-level rejections apply to
// every candidate of the run, so trying the next one is pointless.
func AccountLevel(reason core.RejectionReason) bool {
	switch reason {
	case core.ReasonDailyTradeLimitReached, core.ReasonDailyLossLimitReached:
		return true
	}
	return false
}
