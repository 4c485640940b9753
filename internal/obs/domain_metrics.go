package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CalculationsTotal counts served quotes by source (computed or memo).
	CalculationsTotal *prometheus.CounterVec
	// MemoLookupsTotal counts memo store lookups by result (hit, miss, error, skipped).
	MemoLookupsTotal *prometheus.CounterVec
	// ContributionAmount records the suggested annual total in pounds.
	ContributionAmount prometheus.Histogram
	// BreakerState is the current breaker state per target: 0=closed, 1=open, 2=half-open.
	BreakerState *prometheus.GaugeVec
	// BreakerTransitions counts breaker state changes.
	BreakerTransitions *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CalculationsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Count of contribution quotes served by source.",
		}, []string{"source"}))
		MemoLookupsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memo_lookups_total",
			Help:      "Count of memo store lookups by result.",
		}, []string{"result"}))
		ContributionAmount = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "contribution_gbp",
			Help:      "Distribution of suggested annual contributions in GBP.",
			Buckets:   prometheus.ExponentialBuckets(1_000, 10, 7),
		}))
		BreakerState = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Current breaker state: 0=closed,1=open,2=half-open.",
		}, []string{"target"}))
		BreakerTransitions = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_transitions_total",
			Help:      "Count of breaker state transitions.",
		}, []string{"target", "from", "to"}))
	})
}

// ObserveCalculation records a served quote. It is a no-op until domain metrics are registered.
func ObserveCalculation(source string, total float64) {
	if CalculationsTotal != nil {
		CalculationsTotal.WithLabelValues(source).Inc()
	}
	if ContributionAmount != nil {
		ContributionAmount.Observe(total)
	}
}

// ObserveMemoLookup records a memo lookup outcome. It is a no-op until domain metrics are registered.
func ObserveMemoLookup(result string) {
	if MemoLookupsTotal != nil {
		MemoLookupsTotal.WithLabelValues(result).Inc()
	}
}

// SetBreakerState publishes the state gauge for target.
func SetBreakerState(target string, value float64) {
	if BreakerState != nil {
		BreakerState.WithLabelValues(target).Set(value)
	}
}

// ObserveBreakerTransition counts a state change of the breaker guarding target.
func ObserveBreakerTransition(target, from, to string) {
	if BreakerTransitions != nil {
		BreakerTransitions.WithLabelValues(target, from, to).Inc()
	}
}
