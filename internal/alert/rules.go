// Package alert evaluates threshold rules against the account's risk
// posture after each decision cycle. Alerts warn the operator that a
// limit is being approached; they never influence the decision itself.
package alert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/risk"
)

// Rule defines one alert rule. Expr is "metric op value", for example
// "loss_headroom < 1000" or "trades_remaining <= 1".
type Rule struct {
	Name     string `mapstructure:"name"`
	Expr     string `mapstructure:"expr"`
	Severity string `mapstructure:"severity"`
	Message  string `mapstructure:"message"`
}

var exprPattern = regexp.MustCompile(`^(\w+)\s*(>|<|>=|<=|==|!=)\s*(-?[\d.]+)$`)

// Valid reports whether the rule expression parses.
func (r Rule) Valid() bool {
	return exprPattern.MatchString(strings.TrimSpace(r.Expr))
}

// Evaluate checks the rule expression against the metric map. Unknown
// metrics and malformed expressions never trigger.
func (r Rule) Evaluate(metrics map[string]float64) bool {
	matches := exprPattern.FindStringSubmatch(strings.TrimSpace(r.Expr))
	if len(matches) != 4 {
		return false
	}

	value, exists := metrics[matches[1]]
	if !exists {
		return false
	}
	threshold, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return false
	}

	switch matches[2] {
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	case "==":
		return value == threshold
	case "!=":
		return value != threshold
	default:
		return false
	}
}

// FormatMessage renders the fired alert text.
func (r Rule) FormatMessage() string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(r.Severity), r.Name, r.Message)
}

// Metrics flattens the risk posture into the metric map rules evaluate
// against.
func Metrics(account core.AccountState, limits core.RiskLimits) map[string]float64 {
	s := risk.Summarize(account, limits)
	halted := 0.0
	if s.Halted {
		halted = 1
	}
	return map[string]float64{
		"equity":           account.Equity,
		"realized_pnl":     s.RealizedPnL,
		"loss_headroom":    s.LossHeadroom,
		"trades_used":      float64(s.TradesUsed),
		"trades_remaining": float64(s.TradesRemaining),
		"open_contracts":   float64(s.OpenContracts),
		"halted":           halted,
	}
}
