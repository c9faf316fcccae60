package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, r *Recorder, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecorder_Counters(t *testing.T) {
	r := New()
	r.InvestmentRecorded("manual", "pending")
	r.InvestmentRecorded("manual", "pending")
	r.InvestmentRecorded("onchain", "completed")
	r.StoreFallback("address")
	r.WalletSyncOutcome("done")
	r.ChainEvent("accounts")

	require.Equal(t, 2.0, counterValue(t, r, "venture_ledger_investments_total", map[string]string{"rail": "manual", "outcome": "pending"}))
	require.Equal(t, 1.0, counterValue(t, r, "venture_ledger_investments_total", map[string]string{"rail": "onchain", "outcome": "completed"}))
	require.Equal(t, 1.0, counterValue(t, r, "venture_ledger_wallet_store_fallbacks_total", map[string]string{"direction": "address"}))
	require.Equal(t, 1.0, counterValue(t, r, "venture_ledger_wallet_sync_tasks_total", map[string]string{"outcome": "done"}))
	require.Equal(t, 1.0, counterValue(t, r, "venture_ledger_chain_session_events_total", map[string]string{"kind": "accounts"}))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.InvestmentRecorded("manual", "pending")
		r.StoreFallback("identity")
		r.WalletSyncOutcome("dead")
		r.ChainEvent("chain")
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.WalletSyncOutcome("retry")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "venture_ledger_wallet_sync_tasks_total")
}
