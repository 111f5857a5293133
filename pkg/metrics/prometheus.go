// Package metrics holds the prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	BordereauxScanned    prometheus.Counter
	ItemsIngested        prometheus.Counter
	ProvisioningFailures *prometheus.CounterVec
	OutboxPublished      prometheus.Counter
	ScanDuration         prometheus.Histogram
}

// NewMetrics creates new prometheus metrics under the given namespace
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BordereauxScanned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bordereaux_scanned_total",
			Help:      "The total number of bordereau scan requests processed",
		}),
		ItemsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_items_ingested_total",
			Help:      "The total number of delivery items created or relinked by scans",
		}),
		ProvisioningFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_provisioning_failures_total",
			Help:      "The total number of failed identity provider operations",
		}, []string{"operation"}),
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_entries_published_total",
			Help:      "The total number of outbox entries published to kafka",
		}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bordereau_scan_duration_seconds",
			Help:      "Time taken to process a bordereau scan",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
