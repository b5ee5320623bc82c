package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.FeedRequest(OutcomeOK)
	r.FeedRequest(OutcomeError)
	r.ItemSeen()
	r.ItemSeen()
	r.ItemDropped("filter", "filter-rejection")
	r.RecordEmitted()
	r.RunFinished(42*time.Second, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.feedRequests.WithLabelValues(OutcomeError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.itemsSeen))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.itemsDropped.WithLabelValues("filter", "filter-rejection")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.records))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lastRunRecord))
}

func TestNilRecorderIsNoop(t *testing.T) {
	t.Parallel()

	var r *Recorder
	assert.NotPanics(t, func() {
		r.FeedRequest(OutcomeOK)
		r.ItemSeen()
		r.ItemDropped("extract", "fetch-failure")
		r.RecordEmitted()
		r.RunFinished(time.Second, 0)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ItemDropped("resolve", "decode-failure")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `risknews_items_dropped_total{kind="decode-failure",stage="resolve"} 1`)
}
