package core

import (
	"sort"
	"time"
)

// ContractMultiplier converts option points to dollars for standard
// index option contracts.
const ContractMultiplier = 100.0

// OptionType distinguishes calls from puts.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Regime labels the market state for a session.
type Regime string

const (
	RegimeBullish       Regime = "bullish"
	RegimeSideways      Regime = "sideways"
	RegimeBearish       Regime = "bearish"
	RegimeIndeterminate Regime = "indeterminate"
)

// StrategyKind identifies a spread structure.
type StrategyKind string

const (
	PutCreditSpread    StrategyKind = "put_credit_spread"
	CallDiagonalSpread StrategyKind = "call_diagonal"
	IronCondor         StrategyKind = "iron_condor"
)

// LegAction is the side taken on a single leg.
type LegAction string

const (
	LegBuy  LegAction = "buy"
	LegSell LegAction = "sell"
)

// OHLCV represents a candlestick/bar.
type OHLCV struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
	Time   time.Time
}

// IndicatorSet holds the computed technical indicators for one snapshot.
// A nil IndicatorSet on a MarketSnapshot means the inputs were missing
// or insufficient and the classifier must not infer a regime.
type IndicatorSet struct {
	RSI        float64
	MACDLine   float64
	MACDSignal float64
	SMA20      float64
	SMA50      float64
	BollUpper  float64
	BollMiddle float64
	BollLower  float64
	StochK     float64
	StochD     float64
}

// MarketSnapshot captures everything the classifier and selectors see for
// one run. Immutable once captured.
type MarketSnapshot struct {
	Timestamp   time.Time
	Underlying  string
	Price       float64
	History     []OHLCV
	Indicators  *IndicatorSet
	VIX         float64
	VolumeRatio float64 // recent volume relative to its average
}

// IsStale reports whether the snapshot is older than maxAge at time now.
func (s MarketSnapshot) IsStale(now time.Time, maxAge time.Duration) bool {
	return s.Timestamp.IsZero() || now.Sub(s.Timestamp) > maxAge
}

// OptionQuote is one market quote for a contract.
type OptionQuote struct {
	Strike       float64
	Expiry       time.Time // date only, midnight UTC
	Type         OptionType
	Bid          float64
	Ask          float64
	ImpliedVol   float64
	OpenInterest int64
	Volume       int64
}

// Mid returns the bid/ask midpoint.
func (q OptionQuote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// IsValid checks the quote has a usable market.
func (q OptionQuote) IsValid() bool {
	return q.Strike > 0 && q.Bid >= 0 && q.Ask > 0 && q.Ask >= q.Bid
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// OptionChain is the set of quotes for one underlying, unique per
// (strike, expiry, type).
type OptionChain struct {
	Underlying string
	Quotes     []OptionQuote
}

// Strikes returns the quotes of the given type expiring on the given day,
// sorted by strike ascending.
func (c OptionChain) Strikes(typ OptionType, expiry time.Time) []OptionQuote {
	var out []OptionQuote
	for _, q := range c.Quotes {
		if q.Type == typ && SameDay(q.Expiry, expiry) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strike < out[j].Strike })
	return out
}

// Expiries returns the distinct expiry dates in the chain, ascending.
func (c OptionChain) Expiries() []time.Time {
	seen := make(map[string]time.Time)
	for _, q := range c.Quotes {
		seen[q.Expiry.Format("2006-01-02")] = q.Expiry
	}
	out := make([]time.Time, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Find locates the quote for an exact (strike, expiry, type) key.
func (c OptionChain) Find(strike float64, expiry time.Time, typ OptionType) (OptionQuote, bool) {
	for _, q := range c.Quotes {
		if q.Strike == strike && q.Type == typ && SameDay(q.Expiry, expiry) {
			return q, true
		}
	}
	return OptionQuote{}, false
}

// Greeks are the sensitivities of one contract at one point in time.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
}

// Add returns the element-wise sum of two Greeks.
func (g Greeks) Add(o Greeks) Greeks {
	return Greeks{
		Delta: g.Delta + o.Delta,
		Gamma: g.Gamma + o.Gamma,
		Theta: g.Theta + o.Theta,
		Vega:  g.Vega + o.Vega,
	}
}

// Sub returns g minus o element-wise.
func (g Greeks) Sub(o Greeks) Greeks {
	return Greeks{
		Delta: g.Delta - o.Delta,
		Gamma: g.Gamma - o.Gamma,
		Theta: g.Theta - o.Theta,
		Vega:  g.Vega - o.Vega,
	}
}

// Scale multiplies all sensitivities by n contracts.
func (g Greeks) Scale(n float64) Greeks {
	return Greeks{Delta: g.Delta * n, Gamma: g.Gamma * n, Theta: g.Theta * n, Vega: g.Vega * n}
}

// Leg is one side of a spread.
type Leg struct {
	Action   LegAction
	Quote    OptionQuote
	Quantity int
}

// SpreadCandidate is a fully priced, scored spread proposal.
// NetCredit is positive for premium received, negative for a net debit.
type SpreadCandidate struct {
	Kind           StrategyKind
	Underlying     string
	Legs           []Leg
	NetCredit      float64
	MaxProfit      float64
	MaxLoss        float64
	Breakeven      float64 // lower/primary breakeven
	BreakevenUpper float64 // set only for two-sided structures
	ProbProfit     float64
	NetGreeks      Greeks
}

// ShortLeg returns the first sell leg, which defines the spread's
// delta target and primary risk.
func (s SpreadCandidate) ShortLeg() (Leg, bool) {
	for _, l := range s.Legs {
		if l.Action == LegSell {
			return l, true
		}
	}
	return Leg{}, false
}

// Validate enforces the structural invariants of a candidate: legs exist,
// credit spreads share an expiry, diagonals pair a same-day short leg with
// a later-dated long leg.
func (s SpreadCandidate) Validate(today time.Time) error {
	if len(s.Legs) == 0 {
		return &Error{Code: "INVALID_CANDIDATE", Message: "candidate has no legs"}
	}
	switch s.Kind {
	case PutCreditSpread, IronCondor:
		first := s.Legs[0].Quote.Expiry
		for _, l := range s.Legs[1:] {
			if !SameDay(l.Quote.Expiry, first) {
				return &Error{Code: "INVALID_CANDIDATE", Message: "credit spread legs must share an expiry"}
			}
		}
	case CallDiagonalSpread:
		for _, l := range s.Legs {
			if l.Action == LegSell && !SameDay(l.Quote.Expiry, today) {
				return &Error{Code: "INVALID_CANDIDATE", Message: "diagonal short leg must expire today"}
			}
			if l.Action == LegBuy && !l.Quote.Expiry.After(today) {
				return &Error{Code: "INVALID_CANDIDATE", Message: "diagonal long leg must expire after today"}
			}
		}
	}
	return nil
}

// Position is an open position counted for concentration checks.
type Position struct {
	Underlying string
	Kind       StrategyKind
	Contracts  int
}

// AccountState is the account view at run start. The orchestrator returns
// a new value for the embedder to persist; nothing mutates it in place.
type AccountState struct {
	Equity        float64
	RealizedPnL   float64 // today, negative when losing
	TradesToday   int
	OpenPositions []Position
}

// ContractsFor sums open contracts for an underlying.
func (a AccountState) ContractsFor(underlying string) int {
	n := 0
	for _, p := range a.OpenPositions {
		if p.Underlying == underlying {
			n += p.Contracts
		}
	}
	return n
}

// RiskLimits is the immutable per-run risk configuration.
type RiskLimits struct {
	MaxRiskPerTrade      float64
	MaxDailyLoss         float64
	MaxTradesPerDay      int
	MaxPositionSize      int
	MaxNetDelta          float64
	MaxNetVega           float64
	MinProbProfit        float64
	MinCredit            float64
	RiskFractionPerTrade float64
}

// Outcome is the terminal classification of one decision run.
type Outcome string

const (
	OutcomeApproved         Outcome = "approved"
	OutcomeRejected         Outcome = "rejected"
	OutcomeNoViableStrategy Outcome = "no_viable_strategy"
	OutcomeNoTrade          Outcome = "no_trade"
)

// RejectionReason enumerates why a candidate was refused. Every rejected
// decision carries exactly one of these, never a generic failure.
type RejectionReason string

const (
	ReasonNone                   RejectionReason = ""
	ReasonDailyTradeLimitReached RejectionReason = "DailyTradeLimitReached"
	ReasonDailyLossLimitReached  RejectionReason = "DailyLossLimitReached"
	ReasonMaxRiskExceeded        RejectionReason = "MaxRiskExceeded"
	ReasonProbabilityTooLow      RejectionReason = "ProbabilityTooLow"
	ReasonGreeksExceeded         RejectionReason = "GreeksExceeded"
	ReasonConcentrationExceeded  RejectionReason = "ConcentrationExceeded"
	ReasonSizeBelowMinimum       RejectionReason = "SizeBelowMinimum"
)

// TradeDecision is the single, immutable result of one run.
type TradeDecision struct {
	ID        string
	RunAt     time.Time
	Outcome   Outcome
	Regime    Regime
	Candidate *SpreadCandidate
	Contracts int
	Reason    RejectionReason
	Message   string // human-readable explanation for every outcome
}

// DailyTradeLog is the persisted record shape for one decision.
type DailyTradeLog struct {
	Date       string          `json:"date"`
	RunID      string          `json:"run_id"`
	Regime     Regime          `json:"regime"`
	Outcome    Outcome         `json:"outcome"`
	Strategy   StrategyKind    `json:"strategy,omitempty"`
	Legs       []LogLeg        `json:"legs,omitempty"`
	NetCredit  float64         `json:"net_credit,omitempty"`
	MaxProfit  float64         `json:"max_profit,omitempty"`
	MaxLoss    float64         `json:"max_loss,omitempty"`
	ProbProfit float64         `json:"prob_profit,omitempty"`
	Contracts  int             `json:"contracts,omitempty"`
	Reason     RejectionReason `json:"rejection_reason,omitempty"`
	Message    string          `json:"message"`
}

// LogLeg is the serialized form of one leg.
type LogLeg struct {
	Action LegAction  `json:"action"`
	Type   OptionType `json:"type"`
	Strike float64    `json:"strike"`
	Expiry string     `json:"expiry"`
	Qty    int        `json:"qty"`
}

// NewDailyTradeLog flattens a TradeDecision into its log record.
func NewDailyTradeLog(d TradeDecision) DailyTradeLog {
	log := DailyTradeLog{
		Date:    d.RunAt.Format("2006-01-02"),
		RunID:   d.ID,
		Regime:  d.Regime,
		Outcome: d.Outcome,
		Reason:  d.Reason,
		Message: d.Message,
	}
	if d.Candidate != nil {
		log.Strategy = d.Candidate.Kind
		log.NetCredit = d.Candidate.NetCredit
		log.MaxProfit = d.Candidate.MaxProfit
		log.MaxLoss = d.Candidate.MaxLoss
		log.ProbProfit = d.Candidate.ProbProfit
		log.Contracts = d.Contracts
		for _, l := range d.Candidate.Legs {
			log.Legs = append(log.Legs, LogLeg{
				Action: l.Action,
				Type:   l.Quote.Type,
				Strike: l.Quote.Strike,
				Expiry: l.Quote.Expiry.Format("2006-01-02"),
				Qty:    l.Quantity,
			})
		}
	}
	return log
}
