package presale

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	refreshes       prometheus.Counter
	refreshFailures prometheus.Counter
	txSubmitted     *prometheus.CounterVec
	txConfirmed     *prometheus.CounterVec
	txFailed        *prometheus.CounterVec
}

// newMetrics creates the engine counters and registers them on reg.
// A nil registry leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		refreshes: factory.NewCounter(prometheus.CounterOpts{
			Name: "presalectl_refreshes_total",
			Help: "Total number of presale snapshot refreshes",
		}),
		refreshFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "presalectl_refresh_failures_total",
			Help: "Total number of failed presale snapshot refreshes",
		}),
		txSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presalectl_tx_submitted_total",
			Help: "Total number of submitted presale transactions",
		}, []string{"action"}),
		txConfirmed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presalectl_tx_confirmed_total",
			Help: "Total number of confirmed presale transactions",
		}, []string{"action"}),
		txFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presalectl_tx_failed_total",
			Help: "Total number of failed presale transactions by category",
		}, []string{"action", "category"}),
	}
}
