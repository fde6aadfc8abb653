package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	if cfg.Backoff == 0 {
		cfg.Backoff = time.Millisecond
	}
	return New(cfg)
}

func TestPostJSONSuccess(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{MaxRetries: 3})
	data, err := c.PostJSON(context.Background(), "triage", srv.URL, map[string]string{"sessionId": "user_1_abc"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
	assert.Equal(t, "user_1_abc", gotBody["sessionId"])
}

func TestPostJSONRetriesExhaustedOn503(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{MaxRetries: 3})
	_, err := c.PostJSON(context.Background(), "triage", srv.URL, nil)

	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	// 1 initial attempt + 3 retries.
	assert.Equal(t, int32(4), attempts.Load())
}

func TestPostJSONRecoversAfterTransientFailure(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{MaxRetries: 3})
	data, err := c.PostJSON(context.Background(), "booking", srv.URL, nil)

	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestPostJSON404IsServiceDisabledAndNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{MaxRetries: 3})
	_, err := c.PostJSON(context.Background(), "triage", srv.URL, nil)

	require.ErrorIs(t, err, ErrServiceDisabled)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestPostJSONDoesNotRetryPlain500(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{MaxRetries: 3})
	_, err := c.PostJSON(context.Background(), "triage", srv.URL, nil)

	require.Error(t, err)
	assert.True(t, IsServerError(err))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestPostJSONZeroRetriesOption(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{MaxRetries: 3})
	_, err := c.PostJSON(context.Background(), "lab", srv.URL, nil, WithMaxRetries(0))

	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestPostJSONCancellationShortCircuitsRetry(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, Config{MaxRetries: 3, Backoff: 500 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		_, err := c.PostJSON(ctx, "triage", srv.URL, nil)
		done <- err
	}()

	// Let the first attempt land, then abort during backoff.
	require.Eventually(t, func() bool { return attempts.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation did not short-circuit the retry loop")
	}
	assert.LessOrEqual(t, attempts.Load(), int32(2))
}

func TestPostJSONTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, Config{Timeout: 50 * time.Millisecond, MaxRetries: 0})
	_, err := c.PostJSON(context.Background(), "triage", srv.URL, nil)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}
