package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/notifier"
)

func TestWebhook_ImplementsNotifier(t *testing.T) {
	var _ notifier.Notifier = (*Webhook)(nil)
}

func TestWebhook_Name(t *testing.T) {
	w := New("http://example.com/hook", nil)
	if w.Name() != "webhook" {
		t.Errorf("expected 'webhook', got %s", w.Name())
	}
}

func TestWebhook_Init_RequiresURL(t *testing.T) {
	w := &Webhook{}
	err := w.Init(notifier.Config{Params: map[string]any{}})
	if err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestWebhook_Init_WithURL(t *testing.T) {
	w := &Webhook{}
	err := w.Init(notifier.Config{
		Params: map[string]any{
			"url": "http://example.com/hook",
		},
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if w.url != "http://example.com/hook" {
		t.Errorf("expected url, got %s", w.url)
	}
}

func sampleDecision() core.TradeDecision {
	expiry := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	return core.TradeDecision{
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
		},
		Contracts: 3,
		Message:   "approved 3 contracts risking 1950.00",
	}
}

func TestWebhook_Send(t *testing.T) {
	var receivedPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&receivedPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w := New(server.URL, map[string]string{"X-Token": "abc"})

	if err := w.Send(sampleDecision()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedPayload["type"] != "trade_decision" {
		t.Errorf("expected trade_decision payload, got %v", receivedPayload["type"])
	}
	decision, ok := receivedPayload["decision"].(map[string]any)
	if !ok {
		t.Fatalf("expected decision object, got %T", receivedPayload["decision"])
	}
	if decision["outcome"] != "approved" {
		t.Errorf("expected outcome approved, got %v", decision["outcome"])
	}
	if decision["strategy"] != "put_credit_spread" {
		t.Errorf("expected put_credit_spread, got %v", decision["strategy"])
	}
	if receivedPayload["text"] == "" {
		t.Error("expected rendered text summary")
	}
}

func TestWebhook_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	w := New(server.URL, nil)
	if err := w.Send(sampleDecision()); err == nil {
		t.Error("expected error on 500 response")
	}
}

func TestWebhook_Send_SetsHeaders(t *testing.T) {
	var gotToken, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Token")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w := New(server.URL, map[string]string{"X-Token": "abc"})
	if err := w.Send(sampleDecision()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotToken != "abc" {
		t.Errorf("expected custom header, got %q", gotToken)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected json content type, got %q", gotContentType)
	}
}
