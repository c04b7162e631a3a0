package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	decisionsTotal     *prometheus.CounterVec
	rejectionsTotal    *prometheus.CounterVec
	candidatesTotal    *prometheus.CounterVec
	regimesTotal       *prometheus.CounterVec
	decisionDuration   prometheus.Histogram
	ivSolveFailures    prometheus.Counter
	notificationsTotal *prometheus.CounterVec
	tradeLogsPersisted *prometheus.CounterVec
	approvedContracts  prometheus.Histogram
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odte_decisions_total",
				Help: "Total number of trade decisions by outcome",
			},
			[]string{"outcome", "regime"},
		),
		rejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odte_rejections_total",
				Help: "Total number of candidate rejections by reason",
			},
			[]string{"reason"},
		),
		candidatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odte_candidates_total",
				Help: "Total number of spread candidates built per strategy",
			},
			[]string{"strategy"},
		),
		regimesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odte_regimes_total",
				Help: "Total number of regime classifications",
			},
			[]string{"regime"},
		),
		decisionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "odte_decision_duration_seconds",
				Help:    "Decision cycle duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
		ivSolveFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "odte_iv_solve_failures_total",
				Help: "Total number of implied volatility solves that did not converge",
			},
		),
		notificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odte_notifications_total",
				Help: "Total number of decision notifications sent",
			},
			[]string{"notifier", "status"},
		),
		tradeLogsPersisted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odte_trade_logs_persisted_total",
				Help: "Total number of trade log records persisted",
			},
			[]string{"store", "status"},
		),
		approvedContracts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "odte_approved_contracts",
				Help:    "Contract count of approved decisions",
				Buckets: []float64{1, 2, 3, 5, 8, 10, 15, 20},
			},
		),
	}

	reg.MustRegister(r.decisionsTotal)
	reg.MustRegister(r.rejectionsTotal)
	reg.MustRegister(r.candidatesTotal)
	reg.MustRegister(r.regimesTotal)
	reg.MustRegister(r.decisionDuration)
	reg.MustRegister(r.ivSolveFailures)
	reg.MustRegister(r.notificationsTotal)
	reg.MustRegister(r.tradeLogsPersisted)
	reg.MustRegister(r.approvedContracts)

	return r
}

// RecordDecision records a completed decision cycle.
func (r *Registry) RecordDecision(outcome, regime string, duration float64) {
	r.decisionsTotal.WithLabelValues(outcome, regime).Inc()
	r.decisionDuration.Observe(duration)
}

// RecordRejection records a candidate rejection.
func (r *Registry) RecordRejection(reason string) {
	r.rejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordCandidates records candidates built for a strategy.
func (r *Registry) RecordCandidates(strategy string, count int) {
	r.candidatesTotal.WithLabelValues(strategy).Add(float64(count))
}

// RecordRegime records a regime classification.
func (r *Registry) RecordRegime(regime string) {
	r.regimesTotal.WithLabelValues(regime).Inc()
}

// RecordIVSolveFailure records a quote excluded for a failed vol solve.
func (r *Registry) RecordIVSolveFailure() {
	r.ivSolveFailures.Inc()
}

// RecordNotification records a notification delivery attempt.
func (r *Registry) RecordNotification(notifier, status string) {
	r.notificationsTotal.WithLabelValues(notifier, status).Inc()
}

// RecordTradeLogPersisted records a trade log write.
func (r *Registry) RecordTradeLogPersisted(store, status string) {
	r.tradeLogsPersisted.WithLabelValues(store, status).Inc()
}

// RecordApprovedContracts records the size of an approved decision.
func (r *Registry) RecordApprovedContracts(n int) {
	r.approvedContracts.Observe(float64(n))
}
