package risk

import (
	"fmt"

	"github.com/quantfold/odte/internal/core"
)

// Summary is the remaining daily headroom, surfaced in logs and
// notifications so the operator can see how close the account is to a
// forced stop.
type Summary struct {
	TradesUsed      int     `json:"trades_used"`
	TradesRemaining int     `json:"trades_remaining"`
	RealizedPnL     float64 `json:"realized_pnl"`
	LossHeadroom    float64 `json:"loss_headroom"`
	OpenContracts   int     `json:"open_contracts"`
	Halted          bool    `json:"halted"`
}

// Summarize computes the day's remaining headroom under the limits.
func Summarize(account core.AccountState, limits core.RiskLimits) Summary {
	s := Summary{
		TradesUsed:  account.TradesToday,
		RealizedPnL: account.RealizedPnL,
	}
	for _, p := range account.OpenPositions {
		s.OpenContracts += p.Contracts
	}
	if limits.MaxTradesPerDay > 0 {
		s.TradesRemaining = limits.MaxTradesPerDay - account.TradesToday
		if s.TradesRemaining < 0 {
			s.TradesRemaining = 0
		}
	}
	if limits.MaxDailyLoss > 0 {
		s.LossHeadroom = limits.MaxDailyLoss + account.RealizedPnL
		if s.LossHeadroom < 0 {
			s.LossHeadroom = 0
		}
	}
	s.Halted = ShouldStopTrading(account, limits)
	return s
}

// ShouldStopTrading reports whether either daily limit has been hit.
func ShouldStopTrading(account core.AccountState, limits core.RiskLimits) bool {
	if limits.MaxTradesPerDay > 0 && account.TradesToday >= limits.MaxTradesPerDay {
		return true
	}
	if limits.MaxDailyLoss > 0 && account.RealizedPnL <= -limits.MaxDailyLoss {
		return true
	}
	return false
}

// String renders the summary for human-readable notification bodies.
func (s Summary) String() string {
	status := "active"
	if s.Halted {
		status = "halted"
	}
	return fmt.Sprintf("trades %d used / %d left, pnl %.2f (headroom %.2f), open contracts %d, %s",
		s.TradesUsed, s.TradesRemaining, s.RealizedPnL, s.LossHeadroom, s.OpenContracts, status)
}
