package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFetch(t *testing.T) {
	m := New()
	m.ObserveFetch(OutcomeSuccess, time.Millisecond)
	m.ObserveFetch(OutcomeSuccess, time.Millisecond)
	m.ObserveFetch(OutcomeFailed, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetches.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues(OutcomeFailed)))
}

func TestObserveClassify(t *testing.T) {
	m := New()
	m.ObserveClassify("keyword", 5, time.Millisecond, nil)
	m.ObserveClassify("keyword", 3, time.Millisecond, errors.New("x"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifyRuns.WithLabelValues("keyword", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifyRuns.WithLabelValues("keyword", "error")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.bookmarks.WithLabelValues("keyword")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch(OutcomeSuccess, time.Second)
		m.ObserveClassify("tfidf", 1, time.Second, nil)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveFetch(OutcomeNoTitle, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bookmarksort_crawl_fetches_total{outcome="no_title"} 1`)
}
