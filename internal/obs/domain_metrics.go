package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotationsCreatedTotal counts drafts opened by business size.
	QuotationsCreatedTotal *prometheus.CounterVec
	// QuotationEventsTotal counts reconciliation events applied to drafts.
	QuotationEventsTotal *prometheus.CounterVec
	// UnknownUsageTotal counts usage ids that fell back to a neutral multiplier.
	UnknownUsageTotal *prometheus.CounterVec
	// QuotationValidationTotal counts issue-readiness checks by outcome.
	QuotationValidationTotal *prometheus.CounterVec
	// QuotationTotalAmount records the total of priced quotations.
	QuotationTotalAmount prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotationsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotations_created_total",
			Help:      "Count of quotation drafts created by business size.",
		}, []string{"business_size"})
		QuotationEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotation_events_total",
			Help:      "Count of quotation form events applied.",
		}, []string{"event"})
		UnknownUsageTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotation_unknown_usage_total",
			Help:      "Count of usage ids missing from the license usage set.",
		}, []string{"license_type"})
		QuotationValidationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotation_validation_total",
			Help:      "Count of quotation validation outcomes.",
		}, []string{"result"})
		QuotationTotalAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quotation_total_amount",
			Help:      "Distribution of quotation totals after discount.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 25000},
		})

		mustRegisterCollector(reg, QuotationsCreatedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuotationsCreatedTotal = v
			}
		})
		mustRegisterCollector(reg, QuotationEventsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuotationEventsTotal = v
			}
		})
		mustRegisterCollector(reg, UnknownUsageTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				UnknownUsageTotal = v
			}
		})
		mustRegisterCollector(reg, QuotationValidationTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuotationValidationTotal = v
			}
		})
		mustRegisterCollector(reg, QuotationTotalAmount, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuotationTotalAmount = v
			}
		})
	})
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
