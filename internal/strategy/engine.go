package strategy

import (
	"sort"
	"sync"

	"github.com/quantfold/odte/internal/core"
	"go.uber.org/zap"
)

// Engine maps regimes to their registered builders and produces the
// ranked candidate list for a run.
type Engine struct {
	mu       sync.RWMutex
	builders map[core.Regime][]Builder
	logger   *zap.Logger
}

// NewEngine creates a new strategy engine
func NewEngine(logger ...*zap.Logger) *Engine {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Engine{
		builders: make(map[core.Regime][]Builder),
		logger:   l,
	}
}

// Register adds a builder under its regime. Registration order decides
// preference between builders of the same regime: earlier builders'
// candidates rank ahead.
func (e *Engine) Register(b Builder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.builders[b.Regime()] = append(e.builders[b.Regime()], b)
}

// ForRegime returns the builders registered for a regime.
func (e *Engine) ForRegime(r core.Regime) []Builder {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Builder(nil), e.builders[r]...)
}

// Select builds and ranks candidates for the regime. Bearish and
// Indeterminate regimes have no builders, so the result is empty and the
// run resolves to no-trade downstream. An empty result for a tradable
// regime means the chain offered nothing acceptable.
func (e *Engine) Select(regime core.Regime, ctx BuildContext) []core.SpreadCandidate {
	var all []core.SpreadCandidate

	for _, b := range e.ForRegime(regime) {
		candidates, err := b.Build(ctx)
		if err != nil {
			e.logger.Warn("builder failed",
				zap.String("builder", b.Name()),
				zap.Error(err),
			)
			continue
		}

		// Structural invariants hold for everything leaving the engine.
		kept := candidates[:0]
		for _, c := range candidates {
			if err := c.Validate(ctx.Now); err != nil {
				e.logger.Warn("dropping invalid candidate",
					zap.String("builder", b.Name()),
					zap.Error(err),
				)
				continue
			}
			kept = append(kept, c)
		}

		rank(kept)
		all = append(all, kept...)

		e.logger.Debug("builder produced candidates",
			zap.String("builder", b.Name()),
			zap.Int("count", len(kept)),
		)
	}

	return all
}

// rank orders candidates of one builder: probability of profit
// descending with net credit as the tie-break for credit structures,
// harvested theta descending for diagonals.
func rank(candidates []core.SpreadCandidate) {
	if len(candidates) < 2 {
		return
	}
	if candidates[0].Kind == core.CallDiagonalSpread {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].NetGreeks.Theta > candidates[j].NetGreeks.Theta
		})
		return
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ProbProfit != candidates[j].ProbProfit {
			return candidates[i].ProbProfit > candidates[j].ProbProfit
		}
		return candidates[i].NetCredit > candidates[j].NetCredit
	})
}
