package alert

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Evaluator fires alert rules into the log with a per-rule cooldown, so
// the serve loop does not repeat the same alert every cycle.
type Evaluator struct {
	logger   *zap.Logger
	cooldown time.Duration

	mu        sync.Mutex
	lastFired map[string]time.Time

	now func() time.Time
}

// NewEvaluator creates an evaluator with a 30 minute cooldown.
func NewEvaluator(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		logger:    logger,
		cooldown:  30 * time.Minute,
		lastFired: make(map[string]time.Time),
		now:       time.Now,
	}
}

// SetCooldown sets the cooldown duration between repeats of one rule.
func (e *Evaluator) SetCooldown(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cooldown = d
}

// EvaluateAll checks every rule against the metrics and returns the
// messages that fired.
func (e *Evaluator) EvaluateAll(rules []Rule, metrics map[string]float64) []string {
	var fired []string
	for _, rule := range rules {
		if msg, ok := e.evaluate(rule, metrics); ok {
			fired = append(fired, msg)
		}
	}
	return fired
}

func (e *Evaluator) evaluate(rule Rule, metrics map[string]float64) (string, bool) {
	if !rule.Evaluate(metrics) {
		return "", false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if last, ok := e.lastFired[rule.Name]; ok && now.Sub(last) < e.cooldown {
		return "", false
	}
	e.lastFired[rule.Name] = now

	msg := rule.FormatMessage()
	switch rule.Severity {
	case "critical", "error":
		e.logger.Error(msg, zap.String("rule", rule.Name), zap.String("expr", rule.Expr))
	default:
		e.logger.Warn(msg, zap.String("rule", rule.Name), zap.String("expr", rule.Expr))
	}
	return msg, true
}
