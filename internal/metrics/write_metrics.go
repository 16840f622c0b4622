package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteMetrics содержит метрики write-path заказов.
type WriteMetrics struct {
	// Счётчики операций
	ordersCreated prometheus.Counter
	ordersUpdated prometheus.Counter
	writeFailures *prometheus.CounterVec

	// Гистограмма времени выполнения
	writeDuration *prometheus.HistogramVec
}

// NewWriteMetrics создаёт новый экземпляр метрик write-path.
func NewWriteMetrics() *WriteMetrics {
	return newWriteMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newWriteMetricsWithRegisterer(registerer prometheus.Registerer) *WriteMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &WriteMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersUpdated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_updated_total",
			Help: "Total number of orders updated",
		}),
		writeFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_write_failures_total",
			Help: "Total number of failed write operations by operation and reason",
		}, []string{"operation", "reason"}),
		writeDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "orders_write_duration_seconds",
			Help:    "Duration of write operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
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

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *WriteMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordOrderUpdated увеличивает счётчик обновлённых заказов.
func (m *WriteMetrics) RecordOrderUpdated() {
	if m == nil {
		return
	}
	m.ordersUpdated.Inc()
}

// RecordWriteFailure фиксирует неуспешную операцию записи.
func (m *WriteMetrics) RecordWriteFailure(operation, reason string) {
	if m == nil {
		return
	}
	m.writeFailures.WithLabelValues(operation, reason).Inc()
}

// ObserveWriteDuration записывает длительность операции записи.
func (m *WriteMetrics) ObserveWriteDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.writeDuration.WithLabelValues(operation).Observe(seconds)
}
