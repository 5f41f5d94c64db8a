// Package metrics provides Prometheus instrumentation for mintfactory.
//
// Collectors are registered on the default registry the first time Init is
// called with metrics enabled. Every helper is a no-op until then.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mintfactory"

var (
	initOnce    sync.Once
	enabled     bool
	serviceName string

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	collectionDeployTotal    *prometheus.CounterVec
	collectionDeployStep     *prometheus.CounterVec
	collectionDeployDuration *prometheus.HistogramVec

	deploymentRecordTotal *prometheus.CounterVec
)

// Init enables metrics for svcName. Later calls are ignored.
func Init(enabledFlag bool, svcName string) {
	initOnce.Do(func() {
		enabled = enabledFlag
		serviceName = svcName
		if enabled {
			register(prometheus.Labels{"service": svcName})
		}
	})
}

func register(constLabels prometheus.Labels) {
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "HTTP requests by route and status.",
		ConstLabels: constLabels,
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        "HTTP request latency by route.",
		ConstLabels: constLabels,
		Buckets:     prometheus.DefBuckets,
	}, []string{"method", "route"})

	collectionDeployTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "collection",
		Name:        "deploys_total",
		Help:        "Collection deployments attempted, by outcome.",
		ConstLabels: constLabels,
	}, []string{"chain", "standard", "result"})

	collectionDeployStep = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "collection",
		Name:        "deploy_steps_total",
		Help:        "Deploy pipeline steps run, by outcome.",
		ConstLabels: constLabels,
	}, []string{"step", "result"})

	// Wallet approval and block times dominate, hence the long tail.
	collectionDeployDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   "collection",
		Name:        "deploy_duration_seconds",
		Help:        "Wall time from validation to receipt.",
		ConstLabels: constLabels,
		Buckets:     []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"chain", "result"})

	deploymentRecordTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "registry",
		Name:        "records_total",
		Help:        "Deployment record writes, by result.",
		ConstLabels: constLabels,
	}, []string{"chain", "status"})
}

// Handler serves the default registry, or 404 while metrics are disabled.
func Handler() http.Handler {
	if !enabled {
		return http.NotFoundHandler()
	}
	return promhttp.Handler()
}

// WriteTextfile writes the default registry to path in the text exposition
// format, for the node exporter textfile collector. It does nothing while
// metrics are disabled.
func WriteTextfile(path string) error {
	if !enabled {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Enabled reports whether Init turned metrics on.
func Enabled() bool {
	return enabled
}

// ServiceName is the value of the service label.
func ServiceName() string {
	return serviceName
}
