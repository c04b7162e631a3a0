// Package advisor generates optional natural-language commentary on a
// trade decision. The commentary is advisory text for the notification
// channels only; nothing here can change what the engine decided.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantfold/odte/internal/core"
)

// Provider completes a single-shot prompt against an LLM backend.
// Commentary never needs conversation state, so the contract is one
// request, one text reply.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Request holds the prompt for one completion.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

const systemPrompt = `You are a risk-aware options trading assistant reviewing the output of an automated 0DTE decision engine. Write two or three sentences of plain-English commentary on the decision: what the market regime implies, what to watch if the trade is on, or why sitting out was reasonable. Never recommend overriding the engine.`

// Advisor wraps a provider and renders decisions into prompts.
type Advisor struct {
	provider Provider
}

// New returns an advisor backed by the given provider.
func New(p Provider) *Advisor {
	return &Advisor{provider: p}
}

// Commentary asks the provider for a short note on the decision.
func (a *Advisor) Commentary(ctx context.Context, d core.TradeDecision) (string, error) {
	text, err := a.provider.Complete(ctx, Request{
		System:      systemPrompt,
		Prompt:      decisionPrompt(d),
		MaxTokens:   512,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("advisor commentary: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// decisionPrompt flattens the decision into the user message. Kept
// deliberately terse; the model does not need the full option chain.
func decisionPrompt(d core.TradeDecision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", d.RunAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Market regime: %s\n", d.Regime)
	fmt.Fprintf(&b, "Outcome: %s\n", d.Outcome)

	if c := d.Candidate; c != nil {
		fmt.Fprintf(&b, "Strategy: %s\n", c.Kind)
		for _, leg := range c.Legs {
			fmt.Fprintf(&b, "Leg: %s %s %.0f x%d exp %s\n",
				leg.Action, leg.Quote.Type, leg.Quote.Strike, leg.Quantity,
				leg.Quote.Expiry.Format("2006-01-02"))
		}
		fmt.Fprintf(&b, "Net credit: %.2f, max loss: %.2f, prob of profit: %.1f%%\n",
			c.NetCredit, c.MaxLoss, c.ProbProfit*100)
	}
	if d.Contracts > 0 {
		fmt.Fprintf(&b, "Size: %d contracts\n", d.Contracts)
	}
	if d.Reason != "" {
		fmt.Fprintf(&b, "Rejection reason: %s\n", d.Reason)
	}
	if d.Message != "" {
		fmt.Fprintf(&b, "Detail: %s\n", d.Message)
	}
	return b.String()
}
