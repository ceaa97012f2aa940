package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup result labels.
const (
	lookupHit     = "hit"
	lookupMiss    = "miss"
	lookupExpired = "expired"
)

// MetricsConfig configures the registry's Prometheus instrumentation.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "molab").
	Namespace string

	// Subsystem is the metrics subsystem (default: "state").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the registry's Prometheus instrumentation.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegisterer sets the Prometheus registry metrics are registered with.
func WithRegisterer(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "molab",
		Subsystem: "state",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics for the state registry. A nil
// *Metrics is valid and records nothing, so instrumentation stays optional.
type Metrics struct {
	registrations      prometheus.Counter
	collisionsRepaired prometheus.Counter
	prunedTotal        prometheus.Counter
	releasesTotal      prometheus.Counter
	updatesTotal       prometheus.Counter
	lookupsTotal       *prometheus.CounterVec
	liveBindings       prometheus.Gauge
}

// NewMetrics creates the registry metrics set.
//
// Metrics collected:
//   - molab_state_registrations_total: Counter of state registrations
//   - molab_state_collisions_repaired_total: Counter of recycled-identity repairs
//   - molab_state_pruned_total: Counter of bindings removed by scope pruning
//   - molab_state_releases_total: Counter of death-callback removals
//   - molab_state_updates_total: Counter of state mutations dispatched
//   - molab_state_lookups_total: Counter of lookups by result (hit/miss/expired)
//   - molab_state_live_bindings: Gauge of currently installed bindings
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		registrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "registrations_total",
			Help:        "Total number of state registrations",
			ConstLabels: config.ConstLabels,
		}),

		collisionsRepaired: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "collisions_repaired_total",
			Help:        "Total number of recycled-identity bindings repaired",
			ConstLabels: config.ConstLabels,
		}),

		prunedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pruned_total",
			Help:        "Total number of bindings removed by scope pruning",
			ConstLabels: config.ConstLabels,
		}),

		releasesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "releases_total",
			Help:        "Total number of bindings removed by death callbacks",
			ConstLabels: config.ConstLabels,
		}),

		updatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of state mutations dispatched to the context",
			ConstLabels: config.ConstLabels,
		}),

		lookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "lookups_total",
			Help:        "Total number of registry lookups by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		liveBindings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_bindings",
			Help:        "Number of bindings currently installed in the registry",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordUpdate counts one dispatched state mutation. Called by the
// execution context, which is where mutations surface.
func (m *Metrics) RecordUpdate() {
	if m == nil {
		return
	}
	m.updatesTotal.Inc()
}

func (m *Metrics) registered() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

func (m *Metrics) collisionRepaired() {
	if m == nil {
		return
	}
	m.collisionsRepaired.Inc()
}

func (m *Metrics) pruned(n int) {
	if m == nil || n == 0 {
		return
	}
	m.prunedTotal.Add(float64(n))
}

func (m *Metrics) released() {
	if m == nil {
		return
	}
	m.releasesTotal.Inc()
}

func (m *Metrics) lookup(result string) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) setLiveBindings(n int) {
	if m == nil {
		return
	}
	m.liveBindings.Set(float64(n))
}
