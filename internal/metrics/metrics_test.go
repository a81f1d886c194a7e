package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	t.Run("counters", func(t *testing.T) {
		r, err := New()
		require.NoError(t, err)

		r.ObserveAnalysis("PHISHING", 0.0001)
		r.ObserveAnalysis("PHISHING", 0.0002)
		r.ObserveAnalysis("LEGITIMATE", 0.0001)
		r.PersistenceFallback("save")
		r.BatchItem(OutcomeOK)
		r.BatchItem(OutcomeFailed)
		r.BatchItem(OutcomeFailed)
		r.StatisticsDegraded()

		assert.Equal(t, 2.0, testutil.ToFloat64(r.analysesTotal.WithLabelValues("PHISHING")))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.analysesTotal.WithLabelValues("LEGITIMATE")))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.persistenceFallbacks.WithLabelValues("save")))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.batchItemsTotal.WithLabelValues(OutcomeOK)))
		assert.Equal(t, 2.0, testutil.ToFloat64(r.batchItemsTotal.WithLabelValues(OutcomeFailed)))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.statisticsDegradation))
		assert.Equal(t, 1, testutil.CollectAndCount(r.analysisDuration))
	})

	t.Run("nil recorder", func(t *testing.T) {
		var r *Recorder

		assert.NotPanics(t, func() {
			r.ObserveAnalysis("PHISHING", 1)
			r.PersistenceFallback("save")
			r.BatchItem(OutcomeOK)
			r.StatisticsDegraded()
		})
	})

	t.Run("handler", func(t *testing.T) {
		r, err := New()
		require.NoError(t, err)

		r.ObserveAnalysis("SUSPICIOUS", 0.0001)

		rec := httptest.NewRecorder()
		r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		body, _ := io.ReadAll(rec.Body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(body), `phishing_analyses_total{prediction="SUSPICIOUS"} 1`)
		assert.Contains(t, string(body), "go_goroutines")
	})
}
