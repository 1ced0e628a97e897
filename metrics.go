package openhash

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	tablePrometheusMetrics sync.Once

	tableProbeLength = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "openhash",
			Subsystem: "table",
			Name:      "probe_length",
			Help:      "Number of slots visited by a table operation",
			Buckets:   prometheus.ExponentialBuckets(1.0, 2.0, 12),
		},
		[]string{"name", "operation", "outcome"},
	)
	tableResizes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openhash",
			Subsystem: "table",
			Name:      "resizes_total",
			Help:      "Number of times the slot array was doubled",
		},
		[]string{"name"},
	)
)

type tableMetrics struct {
	insertInserted  prometheus.Observer
	insertDuplicate prometheus.Observer
	searchFound     prometheus.Observer
	searchNotFound  prometheus.Observer
	deleteDeleted   prometheus.Observer
	deleteNotFound  prometheus.Observer
	resizes         prometheus.Counter
}

func newTableMetrics(name string) *tableMetrics {
	tablePrometheusMetrics.Do(func() {
		prometheus.MustRegister(tableProbeLength)
		prometheus.MustRegister(tableResizes)
	})

	return &tableMetrics{
		insertInserted:  tableProbeLength.WithLabelValues(name, "Insert", "Inserted"),
		insertDuplicate: tableProbeLength.WithLabelValues(name, "Insert", "Duplicate"),
		searchFound:     tableProbeLength.WithLabelValues(name, "Search", "Found"),
		searchNotFound:  tableProbeLength.WithLabelValues(name, "Search", "NotFound"),
		deleteDeleted:   tableProbeLength.WithLabelValues(name, "Delete", "Deleted"),
		deleteNotFound:  tableProbeLength.WithLabelValues(name, "Delete", "NotFound"),
		resizes:         tableResizes.WithLabelValues(name),
	}
}

// The observe helpers are no-ops on tables created without WithMetrics.

func (m *tableMetrics) observeInsert(probes int, inserted bool) {
	if m == nil {
		return
	}
	if inserted {
		m.insertInserted.Observe(float64(probes))
	} else {
		m.insertDuplicate.Observe(float64(probes))
	}
}

func (m *tableMetrics) observeSearch(probes int, found bool) {
	if m == nil {
		return
	}
	if found {
		m.searchFound.Observe(float64(probes))
	} else {
		m.searchNotFound.Observe(float64(probes))
	}
}

func (m *tableMetrics) observeDelete(probes int, deleted bool) {
	if m == nil {
		return
	}
	if deleted {
		m.deleteDeleted.Observe(float64(probes))
	} else {
		m.deleteNotFound.Observe(float64(probes))
	}
}

func (m *tableMetrics) observeResize() {
	if m == nil {
		return
	}
	m.resizes.Inc()
}
