// Package metrics exposes the engine's prometheus counters and gauges and
// an HTTP handler to scrape them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts every HTTP request the front end handled.
	RequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jhp",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests served.",
	})

	// RendersTotal counts document renders, partitioned by outcome.
	RendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jhp",
		Name:      "renders_total",
		Help:      "Total document renders, by outcome.",
	}, []string{"outcome"})

	// MailboxDepth reports the current queued-item count per executor.
	MailboxDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "jhp",
		Name:      "executor_mailbox_depth",
		Help:      "Items currently queued in an executor's mailbox.",
	}, []string{"executor"})

	// ExtensionLoadsTotal counts extension registry load attempts, by result.
	ExtensionLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jhp",
		Name:      "extension_loads_total",
		Help:      "Extension registry load attempts, by result.",
	}, []string{"key", "result"})
)

func init() {
	prometheus.MustRegister(RequestsTotal, RendersTotal, MailboxDepth, ExtensionLoadsTotal)
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
