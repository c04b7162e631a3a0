package notifier

import (
	"fmt"
	"strings"

	"github.com/quantfold/odte/internal/core"
)

// FormatDecision renders a trade decision as the plain-text summary
// delivered by the text-based notifiers.
func FormatDecision(d core.TradeDecision) string {
	var sb strings.Builder

	switch d.Outcome {
	case core.OutcomeApproved:
		sb.WriteString(formatCandidate(d))
		fmt.Fprintf(&sb, "\nSIZE: %d contracts\n", d.Contracts)
		fmt.Fprintf(&sb, "RECOMMENDATION: %s\n", d.Message)
	case core.OutcomeRejected:
		sb.WriteString("TRADE REJECTED\n==============\n")
		fmt.Fprintf(&sb, "Regime: %s\n", d.Regime)
		fmt.Fprintf(&sb, "Reason: %s\n", d.Reason)
		fmt.Fprintf(&sb, "Detail: %s\n", d.Message)
		if d.Candidate != nil {
			sb.WriteString("\nRejected candidate:\n")
			sb.WriteString(formatCandidate(d))
		}
	default:
		sb.WriteString("NO TRADE TODAY\n==============\n")
		fmt.Fprintf(&sb, "Outcome: %s\n", d.Outcome)
		fmt.Fprintf(&sb, "Regime: %s\n", d.Regime)
		fmt.Fprintf(&sb, "Detail: %s\n", d.Message)
	}

	fmt.Fprintf(&sb, "\nRun %s at %s\n", d.ID, d.RunAt.Format("2006-01-02 15:04:05 MST"))
	return sb.String()
}

func formatCandidate(d core.TradeDecision) string {
	c := d.Candidate
	if c == nil {
		return ""
	}

	var sb strings.Builder
	switch c.Kind {
	case core.PutCreditSpread:
		sb.WriteString("PUT CREDIT SPREAD (0DTE)\n========================\n")
	case core.CallDiagonalSpread:
		sb.WriteString("CALL DIAGONAL SPREAD\n====================\n")
	case core.IronCondor:
		sb.WriteString("IRON CONDOR (0DTE)\n==================\n")
	default:
		fmt.Fprintf(&sb, "%s\n", strings.ToUpper(string(c.Kind)))
	}
	fmt.Fprintf(&sb, "Regime: %s\n", d.Regime)
	fmt.Fprintf(&sb, "Underlying: %s\n\n", c.Underlying)

	sb.WriteString("TRADE STRUCTURE:\n")
	for _, l := range c.Legs {
		action := "Buy "
		if l.Action == core.LegSell {
			action = "Sell"
		}
		fmt.Fprintf(&sb, "- %s %s $%.0f x%d (%s)\n",
			action, l.Quote.Type, l.Quote.Strike, l.Quantity, l.Quote.Expiry.Format("2006-01-02"))
	}

	sb.WriteString("\nFINANCIALS:\n")
	if c.NetCredit >= 0 {
		fmt.Fprintf(&sb, "- Net Credit: $%.2f\n", c.NetCredit)
	} else {
		fmt.Fprintf(&sb, "- Net Debit: $%.2f\n", -c.NetCredit)
	}
	fmt.Fprintf(&sb, "- Max Profit: $%.2f\n", c.MaxProfit)
	fmt.Fprintf(&sb, "- Max Loss: $%.2f\n", c.MaxLoss)
	if c.BreakevenUpper > 0 {
		fmt.Fprintf(&sb, "- Profit Range: $%.2f - $%.2f\n", c.Breakeven, c.BreakevenUpper)
	} else {
		fmt.Fprintf(&sb, "- Breakeven: $%.2f\n", c.Breakeven)
	}
	fmt.Fprintf(&sb, "- Prob of Profit: %.1f%%\n", c.ProbProfit*100)

	sb.WriteString("\nGREEKS:\n")
	fmt.Fprintf(&sb, "- Net Delta: %.3f\n", c.NetGreeks.Delta)
	fmt.Fprintf(&sb, "- Net Theta: %.3f\n", c.NetGreeks.Theta)
	fmt.Fprintf(&sb, "- Net Vega: %.3f\n", c.NetGreeks.Vega)

	return sb.String()
}
