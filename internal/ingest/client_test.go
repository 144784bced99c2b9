package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient(retries int) *Client {
	return NewClient(NewHTTPClient(2*time.Second), ClientOptions{MaxRetries: retries, RetryBase: time.Millisecond}, nil)
}

func TestClientRetries500ThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct{ OK bool }
	err := fastClient(2).getJSON(context.Background(), "test", srv.URL, nil, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientGivesUpOn500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := fastClient(1).getJSON(context.Background(), "test", srv.URL, nil, &struct{}{})
	var verr *VendorError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, http.StatusInternalServerError, verr.StatusCode)
	assert.Contains(t, verr.Error(), "internal error")
}

func TestClientDoesNotRetry404(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	err := fastClient(3).getJSON(context.Background(), "test", srv.URL, nil, &struct{}{})
	var verr *VendorError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, http.StatusNotFound, verr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(1500 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(NewHTTPClient(200*time.Millisecond), ClientOptions{}, nil)
	err := c.getJSON(context.Background(), "test", srv.URL, nil, &struct{}{})
	require.Error(t, err)
}

func TestClientErrorHidesURL(t *testing.T) {
	c := NewClient(NewHTTPClient(time.Second), ClientOptions{}, nil)
	err := c.getJSON(context.Background(), "test", "http://127.0.0.1:1/insights?access_token=secret", nil, &struct{}{})
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "secret"), err.Error())
}

func TestClientBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	err := fastClient(0).getJSON(context.Background(), "test", srv.URL, nil, &struct{}{})
	var verr *VendorError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "decode response")
}

func TestNumCoercesBadValuesToZero(t *testing.T) {
	var v struct {
		A num `json:"a"`
		B num `json:"b"`
		C num `json:"c"`
		D num `json:"d"`
	}
	require.NoError(t, jsonUnmarshal(`{"a":"12.5","b":7,"c":"n/a","d":null}`, &v))
	assert.Equal(t, "12.5", v.A.dec().String())
	assert.Equal(t, int64(7), v.B.int())
	assert.True(t, v.C.dec().IsZero())
	assert.True(t, v.D.dec().IsZero())
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2025-01-02", dayKey("2025-01-02"))
	assert.Equal(t, "2025-01-02", dayKey("2025-01-02T00:00:00Z"))
	assert.Equal(t, "", dayKey("Jan 2"))
}
