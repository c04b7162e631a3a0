// Package app assembles the decision engine from configuration and
// drives one full cycle: load state, fetch data, decide, persist, and
// notify. It owns all side effects; the engine underneath stays pure.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfold/odte/internal/account"
	"github.com/quantfold/odte/internal/advisor"
	"github.com/quantfold/odte/internal/advisor/factory"
	"github.com/quantfold/odte/internal/alert"
	"github.com/quantfold/odte/internal/config"
	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/engine"
	"github.com/quantfold/odte/internal/logger"
	"github.com/quantfold/odte/internal/marketdata"
	"github.com/quantfold/odte/internal/metrics"
	"github.com/quantfold/odte/internal/notifier"
	"github.com/quantfold/odte/internal/notifier/email"
	"github.com/quantfold/odte/internal/notifier/telegram"
	"github.com/quantfold/odte/internal/notifier/webhook"
	"github.com/quantfold/odte/internal/regime"
	"github.com/quantfold/odte/internal/risk"
	"github.com/quantfold/odte/internal/storage/tradelog"
	"github.com/quantfold/odte/internal/strategy"
	"github.com/quantfold/odte/internal/strategy/calldiagonal"
	"github.com/quantfold/odte/internal/strategy/ironcondor"
	"github.com/quantfold/odte/internal/strategy/putcredit"
	"go.uber.org/zap"
)

// App is the main application orchestrator
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Registry
	provider marketdata.Provider
	accounts account.Provider
	orch     *engine.Orchestrator
	notifier *notifier.Registry
	trades   *tradelog.Store
	advisor  *advisor.Advisor
	alerts   *alert.Evaluator
}

// New creates a new App instance from validated configuration.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := metrics.NewRegistry()

	strategies := strategy.NewEngine(logger)
	registerBuilders(strategies, cfg.Strategies)

	orch := engine.New(
		regime.New(cfg.Classifier.ToThresholds()),
		strategies,
		risk.NewValidator(logger),
		engine.Options{
			RiskFreeRate:         cfg.Engine.RiskFreeRate,
			MaxCandidateAttempts: cfg.Engine.MaxCandidateAttempts,
		},
		logger,
		reg,
	)

	trades, err := NewTradeStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("building trade log store: %w", err)
	}

	notifiers, err := buildNotifiers(cfg.Notifiers)
	if err != nil {
		return nil, fmt.Errorf("building notifiers: %w", err)
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		metrics:  reg,
		provider: marketdata.NewFileProvider(cfg.Data.SnapshotPath, cfg.Data.ChainPath),
		accounts: account.NewStore(cfg.Account.StatePath, cfg.Account.Equity),
		orch:     orch,
		notifier: notifiers,
		trades:   trades,
		alerts:   alert.NewEvaluator(logger),
	}

	if cfg.Advisor.Enabled {
		p, err := factory.New(cfg.Advisor)
		if err != nil {
			return nil, fmt.Errorf("building advisor: %w", err)
		}
		a.advisor = advisor.New(p)
	}

	return a, nil
}

// Metrics exposes the prometheus registry for the embedder.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// SetProvider replaces the market data provider. Used by embedders that
// source data from somewhere other than the configured files.
func (a *App) SetProvider(p marketdata.Provider) {
	a.provider = p
}

// RegisterNotifier adds a notifier beyond the configured set.
func (a *App) RegisterNotifier(n notifier.Notifier) error {
	return a.notifier.Register(n)
}

// Run executes one decision cycle at the given time and returns the
// decision. Persistence and notification failures are logged and
// counted but do not fail the run; the decision itself already stands.
func (a *App) Run(ctx context.Context, now time.Time) (core.TradeDecision, error) {
	state, err := a.accounts.Load(now)
	if err != nil {
		return core.TradeDecision{}, fmt.Errorf("loading account state: %w", err)
	}

	// Provider failures surface as a zero snapshot or chain; the engine
	// turns those into a no-trade rather than an error.
	snap, err := a.provider.Snapshot(ctx)
	if err != nil {
		a.logger.Warn("snapshot unavailable", zap.Error(err))
	}
	chain, err := a.provider.Chain(ctx)
	if err != nil {
		a.logger.Warn("option chain unavailable", zap.Error(err))
	}

	limits := a.cfg.Risk.ToLimits()
	decision, after := a.orch.Decide(engine.RunInput{
		Snapshot: snap,
		Chain:    chain,
		Account:  state,
		Limits:   limits,
	}, now)
	log := logger.WithRun(a.logger, decision.ID)

	if decision.Outcome == core.OutcomeApproved {
		if err := a.accounts.Save(after, now); err != nil {
			log.Error("persisting account state", zap.Error(err))
		}
	}

	a.persistDecision(ctx, log, decision)
	a.notify(log, decision)

	if len(a.cfg.Alerts) > 0 {
		a.alerts.EvaluateAll(a.cfg.Alerts, alert.Metrics(after, limits))
	}

	if a.advisor != nil {
		commentary, err := a.advisor.Commentary(ctx, decision)
		if err != nil {
			log.Warn("advisor commentary failed", zap.Error(err))
		} else {
			log.Info("advisor commentary", zap.String("text", commentary))
		}
	}

	return decision, nil
}

func (a *App) persistDecision(ctx context.Context, log *zap.Logger, d core.TradeDecision) {
	storeType := a.cfg.Storage.Type
	if err := a.trades.Append(ctx, core.NewDailyTradeLog(d)); err != nil {
		log.Error("persisting trade log", zap.Error(err))
		a.metrics.RecordTradeLogPersisted(storeType, "error")
		return
	}
	a.metrics.RecordTradeLogPersisted(storeType, "ok")
}

func (a *App) notify(log *zap.Logger, d core.TradeDecision) {
	for name, err := range a.notifier.NotifyAll(d) {
		if err != nil {
			log.Error("notification failed", zap.String("notifier", name), zap.Error(err))
			a.metrics.RecordNotification(name, "error")
			continue
		}
		a.metrics.RecordNotification(name, "ok")
	}
}

// registerBuilders wires the enabled spread builders with their
// configured parameters. Registration order sets selection preference
// when a regime admits more than one builder.
func registerBuilders(e *strategy.Engine, cfg config.StrategiesConfig) {
	if pc := cfg.PutCredit; pc.Enabled {
		e.Register(putcredit.New(putcredit.Config{
			TargetDelta:    pc.TargetDelta,
			DeltaTolerance: pc.DeltaTolerance,
			SpreadWidth:    pc.SpreadWidth,
			MinCredit:      pc.MinCredit,
		}))
	}
	if ic := cfg.IronCondor; ic.Enabled {
		e.Register(ironcondor.New(ironcondor.Config{
			TargetDelta:    ic.TargetDelta,
			DeltaTolerance: ic.DeltaTolerance,
			WingWidth:      ic.WingWidth,
			MinCredit:      ic.MinCredit,
			MaxNetDelta:    ic.MaxNetDelta,
		}))
	}
	if cd := cfg.CallDiagonal; cd.Enabled {
		e.Register(calldiagonal.New(calldiagonal.Config{
			ShortDelta:     cd.ShortDelta,
			DeltaTolerance: cd.DeltaTolerance,
			StrikeOffset:   cd.StrikeOffset,
			BackMonthDays:  cd.BackMonthDays,
		}))
	}
}

// NewTradeStore builds the trade log store for the configured backend.
func NewTradeStore(cfg config.StorageConfig) (*tradelog.Store, error) {
	switch cfg.Type {
	case "memory":
		return tradelog.NewStore(tradelog.NewMemory()), nil
	case "s3":
		blob, err := tradelog.NewS3(tradelog.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return tradelog.NewStore(blob), nil
	default:
		blob, err := tradelog.NewLocalFS(cfg.Path)
		if err != nil {
			return nil, err
		}
		return tradelog.NewStore(blob), nil
	}
}

func buildNotifiers(cfgs map[string]config.NotifierConfig) (*notifier.Registry, error) {
	registry := notifier.NewRegistry()
	for name, nc := range cfgs {
		if !nc.Enabled {
			continue
		}

		var n notifier.Notifier
		switch name {
		case "webhook":
			n = webhook.New("", nil)
		case "telegram":
			n = telegram.New("", "")
		case "email":
			n = email.New("", 0, "", "", "", nil)
		default:
			return nil, fmt.Errorf("unknown notifier %q", name)
		}

		if err := n.Init(notifier.Config{Type: name, Params: nc.Params()}); err != nil {
			return nil, fmt.Errorf("initializing %s notifier: %w", name, err)
		}
		if err := registry.Register(n); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
