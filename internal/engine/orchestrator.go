// Package engine sequences one decision cycle: classify the regime,
// select spread candidates, gate the top candidate through risk, and
// emit exactly one TradeDecision. The cycle is a pure function of its
// inputs; identical inputs produce an identical decision, so a run can
// be safely repeated after a transient collaborator failure.
//
// The orchestrator holds no account state. The caller passes the
// AccountState in and persists the returned one; it must hold a
// run-level exclusion guard so two cycles never race on the same
// account.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quantfold/odte/internal/analytics"
	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/metrics"
	"github.com/quantfold/odte/internal/regime"
	"github.com/quantfold/odte/internal/risk"
	"github.com/quantfold/odte/internal/strategy"
	"go.uber.org/zap"
)

// DefaultMaxCandidateAttempts bounds how many ranked candidates one run
// evaluates before settling on a rejection.
const DefaultMaxCandidateAttempts = 3

// Options tunes one orchestrator instance.
type Options struct {
	RiskFreeRate         float64
	MaxCandidateAttempts int
}

// Orchestrator wires the classifier, the strategy engine and the risk
// validator into one synchronous pipeline.
type Orchestrator struct {
	classifier *regime.Classifier
	strategies *strategy.Engine
	validator  *risk.Validator
	opts       Options
	logger     *zap.Logger
	metrics    *metrics.Registry
}

// New creates an orchestrator. Logger and metrics are optional; pass nil
// to disable either.
func New(classifier *regime.Classifier, strategies *strategy.Engine, validator *risk.Validator, opts Options, logger *zap.Logger, reg *metrics.Registry) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxCandidateAttempts <= 0 {
		opts.MaxCandidateAttempts = DefaultMaxCandidateAttempts
	}
	return &Orchestrator{
		classifier: classifier,
		strategies: strategies,
		validator:  validator,
		opts:       opts,
		logger:     logger,
		metrics:    reg,
	}
}

// RunInput is everything one decision cycle sees. Now anchors staleness
// checks and expiry math; a zero Now falls back to the snapshot
// timestamp.
type RunInput struct {
	Snapshot core.MarketSnapshot
	Chain    core.OptionChain
	Account  core.AccountState
	Limits   core.RiskLimits
}

// Decide runs one cycle and returns the decision plus the account state
// the embedder should persist. Approved decisions consume a trade slot
// and add the new position; every other outcome returns the account
// unchanged.
func (o *Orchestrator) Decide(in RunInput, now time.Time) (core.TradeDecision, core.AccountState) {
	started := time.Now()
	if now.IsZero() {
		now = in.Snapshot.Timestamp
	}

	d := o.decide(in, now)
	d.ID = runID(in, now)
	d.RunAt = now

	account := in.Account
	if d.Outcome == core.OutcomeApproved {
		account.TradesToday++
		account.OpenPositions = append(append([]core.Position(nil), account.OpenPositions...), core.Position{
			Underlying: d.Candidate.Underlying,
			Kind:       d.Candidate.Kind,
			Contracts:  d.Contracts,
		})
	}

	o.logger.Info("decision complete",
		zap.String("id", d.ID),
		zap.String("outcome", string(d.Outcome)),
		zap.String("regime", string(d.Regime)),
		zap.String("reason", string(d.Reason)),
		zap.Int("contracts", d.Contracts),
	)
	if o.metrics != nil {
		o.metrics.RecordDecision(string(d.Outcome), string(d.Regime), time.Since(started).Seconds())
		if d.Reason != core.ReasonNone {
			o.metrics.RecordRejection(string(d.Reason))
		}
		if d.Outcome == core.OutcomeApproved {
			o.metrics.RecordApprovedContracts(d.Contracts)
		}
	}
	return d, account
}

func (o *Orchestrator) decide(in RunInput, now time.Time) core.TradeDecision {
	if in.Snapshot.Timestamp.IsZero() || in.Snapshot.Price <= 0 {
		return core.TradeDecision{
			Outcome: core.OutcomeNoTrade,
			Regime:  core.RegimeIndeterminate,
			Message: "market data unavailable, sitting out",
		}
	}

	reg := o.classifier.Classify(in.Snapshot, now)
	if o.metrics != nil {
		o.metrics.RecordRegime(string(reg))
	}

	switch reg {
	case core.RegimeBearish:
		return core.TradeDecision{
			Outcome: core.OutcomeNoTrade,
			Regime:  reg,
			Message: "bearish regime, no strategies trade into weakness",
		}
	case core.RegimeIndeterminate:
		return core.TradeDecision{
			Outcome: core.OutcomeNoTrade,
			Regime:  reg,
			Message: "indeterminate regime, signals too mixed to trade",
		}
	}

	buildCtx := strategy.BuildContext{
		Snapshot: in.Snapshot,
		Chain:    in.Chain,
		Now:      now,
		RiskFree: o.opts.RiskFreeRate,
		Vol:      analytics.EstimateVolatility(in.Snapshot.History, in.Snapshot.VIX),
	}
	if o.metrics != nil {
		buildCtx.OnSolveFailure = o.metrics.RecordIVSolveFailure
	}

	candidates := o.strategies.Select(reg, buildCtx)
	candidates = filterThinCredit(candidates, in.Limits.MinCredit)
	if o.metrics != nil {
		counts := map[core.StrategyKind]int{}
		for _, c := range candidates {
			counts[c.Kind]++
		}
		for kind, n := range counts {
			o.metrics.RecordCandidates(string(kind), n)
		}
	}
	if len(candidates) == 0 {
		return core.TradeDecision{
			Outcome: core.OutcomeNoViableStrategy,
			Regime:  reg,
			Message: fmt.Sprintf("%s regime but the chain offered no acceptable spread", reg),
		}
	}

	attempts := o.opts.MaxCandidateAttempts
	if attempts > len(candidates) {
		attempts = len(candidates)
	}

	var firstRejection *core.TradeDecision
	for i := 0; i < attempts; i++ {
		c := candidates[i]
		eval := o.validator.Evaluate(c, in.Account, in.Limits)
		if eval.Approved {
			cc := c
			return core.TradeDecision{
				Outcome:   core.OutcomeApproved,
				Regime:    reg,
				Candidate: &cc,
				Contracts: eval.Contracts,
				Message:   eval.Message,
			}
		}

		o.logger.Debug("candidate rejected",
			zap.Int("rank", i),
			zap.String("strategy", string(c.Kind)),
			zap.String("reason", string(eval.Reason)),
		)
		if firstRejection == nil {
			cc := c
			firstRejection = &core.TradeDecision{
				Outcome:   core.OutcomeRejected,
				Regime:    reg,
				Candidate: &cc,
				Reason:    eval.Reason,
				Message:   eval.Message,
			}
		}
		// Account-level limits reject every candidate of the run, so
		// trying the next ranked one cannot change the outcome.
		if risk.AccountLevel(eval.Reason) {
			break
		}
	}
	return *firstRejection
}

// filterThinCredit drops credit structures paying less than the global
// floor. Debit structures (negative net credit) are priced differently
// and pass through; the builders own their own debit thresholds.
func filterThinCredit(candidates []core.SpreadCandidate, minCredit float64) []core.SpreadCandidate {
	if minCredit <= 0 {
		return candidates
	}
	out := candidates[:0]
	for _, c := range candidates {
		if c.NetCredit > 0 && c.NetCredit < minCredit {
			continue
		}
		out = append(out, c)
	}
	return out
}

// runID derives a stable identifier from the run inputs so that
// repeating a cycle with identical inputs reproduces the decision
// byte for byte.
func runID(in RunInput, now time.Time) string {
	key := fmt.Sprintf("%s|%d|%d|%.6f|%.2f|%.2f|%d|%d",
		in.Snapshot.Underlying,
		in.Snapshot.Timestamp.UnixNano(),
		now.UnixNano(),
		in.Snapshot.Price,
		in.Account.Equity,
		in.Account.RealizedPnL,
		in.Account.TradesToday,
		len(in.Chain.Quotes),
	)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
