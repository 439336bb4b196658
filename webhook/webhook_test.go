package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliver_Signed(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	event := &Event{
		Type:      EventClassifyCompleted,
		RunID:     "run-1",
		Timestamp: 1700000000,
		Data:      ClassifySummary{Method: "keyword", Total: 2, Categories: map[string]int{"tech": 2}},
	}
	require.NoError(t, New(time.Second).Deliver(context.Background(), srv.URL, "s3cret", event))

	assert.Equal(t, Sign("s3cret", gotBody), gotSig)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "classify.completed", decoded["type"])
	assert.Equal(t, "run-1", decoded["run_id"])
}

func TestDeliver_NoSecretNoSignature(t *testing.T) {
	var hasSig bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasSig = r.Header[SignatureHeader]
	}))
	defer srv.Close()

	require.NoError(t, New(time.Second).Deliver(context.Background(), srv.URL, "", &Event{Type: "x"}))
	assert.False(t, hasSig)
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(time.Second).Deliver(context.Background(), srv.URL, "", &Event{Type: "x"})
	assert.Error(t, err)
}

func TestDeliverAsync_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	n := New(time.Second)
	n.delays = []time.Duration{0, time.Millisecond, time.Millisecond, time.Millisecond}

	select {
	case err := <-n.DeliverAsync(srv.URL, "", &Event{Type: "x"}):
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("delivery did not finish")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliverAsync_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := New(time.Second)
	n.delays = []time.Duration{0, time.Millisecond}

	err := <-n.DeliverAsync(srv.URL, "", &Event{Type: "x"})
	assert.Error(t, err)
}
