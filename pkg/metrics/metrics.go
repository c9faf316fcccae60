package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "venture_ledger"

// Recorder holds the service's collectors. Outcome labels are short
// taxonomy codes, never raw error strings.
type Recorder struct {
	registry *prometheus.Registry

	investments    *prometheus.CounterVec
	storeFallbacks *prometheus.CounterVec
	walletSync     *prometheus.CounterVec
	chainEvents    *prometheus.CounterVec
}

// New creates a Recorder on its own registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		investments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "investments_total",
			Help:      "Investment attempts by payment rail and outcome.",
		}, []string{"rail", "outcome"}),
		storeFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_store_fallbacks_total",
			Help:      "Wallet lookups served from cache because the record store failed.",
		}, []string{"direction"}),
		walletSync: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_sync_tasks_total",
			Help:      "Wallet profile reconciliation task outcomes.",
		}, []string{"outcome"}),
		chainEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_session_events_total",
			Help:      "Account and chain change notifications published.",
		}, []string{"kind"}),
	}
}

// Registry exposes the underlying registry for scraping and tests
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the text exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) InvestmentRecorded(rail, outcome string) {
	if r == nil {
		return
	}
	r.investments.WithLabelValues(rail, outcome).Inc()
}

func (r *Recorder) StoreFallback(direction string) {
	if r == nil {
		return
	}
	r.storeFallbacks.WithLabelValues(direction).Inc()
}

func (r *Recorder) WalletSyncOutcome(outcome string) {
	if r == nil {
		return
	}
	r.walletSync.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ChainEvent(kind string) {
	if r == nil {
		return
	}
	r.chainEvents.WithLabelValues(kind).Inc()
}
