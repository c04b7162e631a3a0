package email

import (
	"strings"
	"testing"

	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/notifier"
)

func TestEmail_ImplementsInterface(t *testing.T) {
	var _ notifier.Notifier = (*Email)(nil)
}

func TestInit_RequiresHostFromTo(t *testing.T) {
	e := New("", 0, "", "", "", nil)

	err := e.Init(notifier.Config{Type: "email", Params: map[string]any{
		"host": "smtp.example.com",
	}})
	if err == nil {
		t.Error("expected error without from/to")
	}

	err = e.Init(notifier.Config{Type: "email", Params: map[string]any{
		"host": "smtp.example.com",
		"port": 587,
		"from": "engine@example.com",
		"to":   []string{"desk@example.com"},
	}})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if e.host != "smtp.example.com" || e.port != 587 {
		t.Errorf("params not applied: %+v", e)
	}
}

func TestSubject(t *testing.T) {
	e := New("smtp.example.com", 587, "", "", "a@b.c", []string{"d@e.f"})

	approved := core.TradeDecision{
		Outcome:   core.OutcomeApproved,
		Candidate: &core.SpreadCandidate{Kind: core.PutCreditSpread},
		Contracts: 3,
	}
	if got := e.subject(approved); !strings.Contains(got, "approved") || !strings.Contains(got, "x3") {
		t.Errorf("unexpected approved subject: %q", got)
	}

	rejected := core.TradeDecision{
		Outcome: core.OutcomeRejected,
		Reason:  core.ReasonProbabilityTooLow,
	}
	if got := e.subject(rejected); !strings.Contains(got, "ProbabilityTooLow") {
		t.Errorf("unexpected rejected subject: %q", got)
	}

	noTrade := core.TradeDecision{Outcome: core.OutcomeNoTrade}
	if got := e.subject(noTrade); !strings.Contains(got, "No trade") {
		t.Errorf("unexpected no-trade subject: %q", got)
	}
}
