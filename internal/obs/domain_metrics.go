package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// DiscountEvaluationsTotal counts evaluator runs by policy and whether any discount applied.
	DiscountEvaluationsTotal *prometheus.CounterVec
	// DiscountLineOutcomesTotal counts per-line evaluation outcomes.
	DiscountLineOutcomesTotal *prometheus.CounterVec
	// DiscountCartLines records the number of lines per evaluated cart.
	DiscountCartLines prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers discount Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		DiscountEvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_evaluations_total",
			Help:      "Count of discount evaluations by tier policy and result.",
		}, []string{"policy", "result"})
		DiscountLineOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_line_outcomes_total",
			Help:      "Count of evaluated cart lines by outcome.",
		}, []string{"outcome"})
		DiscountCartLines = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discount_cart_lines",
			Help:      "Number of lines per evaluated cart.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		})

		mustRegisterCollector(reg, DiscountEvaluationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DiscountEvaluationsTotal = v
			}
		})
		mustRegisterCollector(reg, DiscountLineOutcomesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DiscountLineOutcomesTotal = v
			}
		})
		mustRegisterCollector(reg, DiscountCartLines, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				DiscountCartLines = v
			}
		})
	})
}

// ObserveEvaluation records one evaluation. It is a no-op until domain metrics are registered.
func ObserveEvaluation(policy string, applied bool, outcomes []string) {
	if DiscountEvaluationsTotal == nil {
		return
	}
	result := "empty"
	if applied {
		result = "applied"
	}
	DiscountEvaluationsTotal.WithLabelValues(policy, result).Inc()
	DiscountCartLines.Observe(float64(len(outcomes)))
	for _, outcome := range outcomes {
		DiscountLineOutcomesTotal.WithLabelValues(outcome).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
