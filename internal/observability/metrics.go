package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	// Registry holds pbsort's collectors only, so textfile exports carry
	// no Go runtime series.
	Registry = prometheus.NewRegistry()

	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pbsort",
			Subsystem: "messages",
			Name:      "processed_total",
			Help:      "Messages processed, by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)
	bytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pbsort",
			Subsystem: "messages",
			Name:      "bytes_total",
			Help:      "Message bytes scanned, by operation.",
		},
		[]string{"op"},
	)
	fieldsPerMessage = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pbsort",
			Subsystem: "messages",
			Name:      "fields",
			Help:      "Top-level fields per scanned message.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
	messageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pbsort",
			Subsystem: "messages",
			Name:      "duration_seconds",
			Help:      "Per-message processing time in seconds.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
		[]string{"op"},
	)
)

// Outcome labels.
const (
	OutcomeSorted    = "sorted"
	OutcomeReordered = "reordered"
	OutcomeUnsorted  = "unsorted"
	OutcomeFailed    = "failed"
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		Registry.MustRegister(messagesTotal, bytesTotal, fieldsPerMessage, messageDuration)
	})
}

func RecordMessage(op, outcome string, size, fields int, duration time.Duration) {
	RegisterMetrics()
	messagesTotal.WithLabelValues(op, outcome).Inc()
	bytesTotal.WithLabelValues(op).Add(float64(size))
	fieldsPerMessage.Observe(float64(fields))
	messageDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func RecordFailure(op string, size int) {
	RegisterMetrics()
	messagesTotal.WithLabelValues(op, OutcomeFailed).Inc()
	bytesTotal.WithLabelValues(op).Add(float64(size))
}

// WriteTextfile exports the registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, Registry)
}
