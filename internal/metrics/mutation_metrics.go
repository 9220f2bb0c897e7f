package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MutationMetrics содержит метрики мутационного пайплайна CRM.
type MutationMetrics struct {
	// Счётчики мутаций по имени и результату.
	mutations *prometheus.CounterVec

	// Гистограммы времени выполнения мутаций.
	mutationDuration *prometheus.HistogramVec

	// Метрики bulk-создания клиентов.
	bulkBatchSize prometheus.Histogram
	bulkRejected  prometheus.Counter
}

// NewMutationMetrics создаёт новый экземпляр метрик мутаций.
func NewMutationMetrics() *MutationMetrics {
	return newMutationMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newMutationMetricsWithRegisterer(registerer prometheus.Registerer) *MutationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &MutationMetrics{
		mutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "crm_mutations_total",
			Help: "Total number of CRM mutations grouped by mutation name and result",
		}, []string{"mutation", "result"}),
		mutationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "crm_mutation_duration_seconds",
			Help:    "Duration of CRM mutations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"mutation"}),
		bulkBatchSize: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "crm_bulk_customers_batch_size",
			Help:    "Size of incoming bulkCreateCustomers batches",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		bulkRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crm_bulk_customers_rejected_total",
			Help: "Total number of bulk customer entries rejected during validation",
		}),
	}
}

// RecordMutation фиксирует исход мутации и время её выполнения.
func (m *MutationMetrics) RecordMutation(mutation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mutations.WithLabelValues(mutation, result).Inc()
	m.mutationDuration.WithLabelValues(mutation).Observe(time.Since(start).Seconds())
}

// RecordBulkBatch фиксирует размер батча и число отбракованных строк.
func (m *MutationMetrics) RecordBulkBatch(total, rejected int) {
	if m == nil {
		return
	}
	m.bulkBatchSize.Observe(float64(total))
	if rejected > 0 {
		m.bulkRejected.Add(float64(rejected))
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
