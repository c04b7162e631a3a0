package notifier

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quantfold/odte/internal/core"
)

type fakeNotifier struct {
	name string
	err  error
	sent []core.TradeDecision
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Init(cfg Config) error { return nil }

func (f *fakeNotifier) Send(d core.TradeDecision) error {
	f.sent = append(f.sent, d)
	return f.err
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&fakeNotifier{name: "webhook"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&fakeNotifier{name: "webhook"}); err == nil {
		t.Error("expected error on duplicate registration")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	f := &fakeNotifier{name: "telegram"}
	if err := r.Register(f); err != nil {
		t.Fatal(err)
	}

	got, err := r.Get("telegram")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != f {
		t.Error("expected the registered notifier")
	}

	if _, err := r.Get("missing"); err == nil {
		t.Error("expected error for unknown notifier")
	}
}

func TestRegistry_NotifyAll(t *testing.T) {
	r := NewRegistry()
	ok := &fakeNotifier{name: "webhook"}
	failing := &fakeNotifier{name: "telegram", err: errors.New("api down")}
	if err := r.Register(ok); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(failing); err != nil {
		t.Fatal(err)
	}

	d := core.TradeDecision{ID: "run-1", Outcome: core.OutcomeNoTrade, Regime: core.RegimeBearish}
	errs := r.NotifyAll(d)

	if len(ok.sent) != 1 || len(failing.sent) != 1 {
		t.Error("every notifier should receive the decision")
	}
	if len(errs) != 1 {
		t.Fatalf("expected one delivery error, got %d", len(errs))
	}
	if _, present := errs["telegram"]; !present {
		t.Error("expected the failing notifier's error to be collected")
	}
}

func TestFormatDecision_Approved(t *testing.T) {
	expiry := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	d := core.TradeDecision{
		ID:      "run-1",
		RunAt:   time.Date(2026, 8, 28, 13, 0, 0, 0, time.UTC),
		Outcome: core.OutcomeApproved,
		Regime:  core.RegimeBullish,
		Candidate: &core.SpreadCandidate{
			Kind:       core.PutCreditSpread,
			Underlying: "SPX",
			Legs: []core.Leg{
				{Action: core.LegSell, Quote: core.OptionQuote{Strike: 4450, Expiry: expiry, Type: core.Put}, Quantity: 1},
				{Action: core.LegBuy, Quote: core.OptionQuote{Strike: 4440, Expiry: expiry, Type: core.Put}, Quantity: 1},
			},
			NetCredit:  3.50,
			MaxProfit:  3.50,
			MaxLoss:    6.50,
			Breakeven:  4446.50,
			ProbProfit: 0.85,
			NetGreeks:  core.Greeks{Delta: 0.045, Theta: 0.85, Vega: -0.20},
		},
		Contracts: 3,
		Message:   "approved 3 contracts risking 1950.00",
	}

	text := FormatDecision(d)

	for _, want := range []string{
		"PUT CREDIT SPREAD (0DTE)",
		"Sell put $4450",
		"Buy  put $4440",
		"Net Credit: $3.50",
		"Max Loss: $6.50",
		"Breakeven: $4446.50",
		"Prob of Profit: 85.0%",
		"SIZE: 3 contracts",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestFormatDecision_CondorShowsProfitRange(t *testing.T) {
	d := core.TradeDecision{
		Outcome: core.OutcomeApproved,
		Regime:  core.RegimeSideways,
		Candidate: &core.SpreadCandidate{
			Kind:           core.IronCondor,
			Underlying:     "SPX",
			NetCredit:      6.0,
			MaxProfit:      6.0,
			MaxLoss:        24.0,
			Breakeven:      4434,
			BreakevenUpper: 4571,
			ProbProfit:     0.84,
		},
		Contracts: 1,
	}

	text := FormatDecision(d)
	if !strings.Contains(text, "IRON CONDOR (0DTE)") {
		t.Errorf("expected condor header:\n%s", text)
	}
	if !strings.Contains(text, "Profit Range: $4434.00 - $4571.00") {
		t.Errorf("expected profit range:\n%s", text)
	}
}

func TestFormatDecision_DebitShownForDiagonal(t *testing.T) {
	d := core.TradeDecision{
		Outcome: core.OutcomeApproved,
		Regime:  core.RegimeSideways,
		Candidate: &core.SpreadCandidate{
			Kind:       core.CallDiagonalSpread,
			Underlying: "SPX",
			NetCredit:  -2.0,
			MaxProfit:  2.4,
			MaxLoss:    2.0,
			Breakeven:  4535,
			ProbProfit: 0.72,
		},
		Contracts: 1,
	}

	text := FormatDecision(d)
	if !strings.Contains(text, "Net Debit: $2.00") {
		t.Errorf("expected debit line:\n%s", text)
	}
}

func TestFormatDecision_Rejected(t *testing.T) {
	d := core.TradeDecision{
		Outcome: core.OutcomeRejected,
		Regime:  core.RegimeBullish,
		Reason:  core.ReasonDailyTradeLimitReached,
		Message: "daily trade limit reached: 5 of 5 trades used",
	}

	text := FormatDecision(d)
	if !strings.Contains(text, "TRADE REJECTED") {
		t.Errorf("expected rejection header:\n%s", text)
	}
	if !strings.Contains(text, "DailyTradeLimitReached") {
		t.Errorf("expected reason:\n%s", text)
	}
}

func TestFormatDecision_NoTrade(t *testing.T) {
	d := core.TradeDecision{
		Outcome: core.OutcomeNoTrade,
		Regime:  core.RegimeBearish,
		Message: "bearish regime, no strategies trade into weakness",
	}

	text := FormatDecision(d)
	if !strings.Contains(text, "NO TRADE TODAY") {
		t.Errorf("expected no-trade header:\n%s", text)
	}
	if !strings.Contains(text, "bearish") {
		t.Errorf("expected regime:\n%s", text)
	}
}
