package company

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricLookupsTotal      = "dedupe_lookups_total"
	MetricMatchesTotal      = "dedupe_matches_total"
	MetricResolutionsTotal  = "dedupe_resolutions_total"
	MetricCrossCompanyTotal = "dedupe_cross_company_email_total"
)

// Metrics holds Prometheus collectors for duplicate detection. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	lookups      *prometheus.CounterVec
	matches      *prometheus.CounterVec
	resolutions  *prometheus.CounterVec
	crossCompany prometheus.Counter
}

// NewMetrics creates unregistered collectors; call Register to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricLookupsTotal,
			Help: "Duplicate lookups by record kind",
		}, []string{"kind"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricMatchesTotal,
			Help: "Duplicate lookups that found a match, by kind and reason",
		}, []string{"kind", "reason"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricResolutionsTotal,
			Help: "Resolved candidates by kind and outcome",
		}, []string{"kind", "outcome"}),
		crossCompany: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCrossCompanyTotal,
			Help: "Contact email matches that belong to a different company",
		}),
	}
}

// Register registers all metrics with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.lookups, m.matches, m.resolutions, m.crossCompany} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeLookup(kind string, reason MatchReason) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(kind).Inc()
	if reason != "" {
		m.matches.WithLabelValues(kind, string(reason)).Inc()
	}
}

func (m *Metrics) observeResolution(kind, outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) incCrossCompany() {
	if m == nil {
		return
	}
	m.crossCompany.Inc()
}
