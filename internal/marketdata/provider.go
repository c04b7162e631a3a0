// Package marketdata supplies the run inputs: a MarketSnapshot with
// computed indicators and the option chain. Providers signal missing or
// stale data explicitly; the engine never trades on silent defaults.
package marketdata

import (
	"context"

	"github.com/quantfold/odte/internal/core"
)

// Provider supplies the market view for one decision run.
type Provider interface {
	// Snapshot returns the current market snapshot. A provider must
	// return core.ErrDataUnavailable (possibly wrapped) instead of a
	// zero-value snapshot when its source has nothing.
	Snapshot(ctx context.Context) (core.MarketSnapshot, error)

	// Chain returns the option chain for the snapshot's underlying.
	Chain(ctx context.Context) (core.OptionChain, error)
}
