package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendAndParse_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "DGS10", r.URL.Query().Get("series_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":2}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRetries(3, time.Millisecond))
	var out struct {
		Count int `json:"count"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         "/series",
		QueryParams: map[string][]string{"series_id": {"DGS10"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_SendAndParse_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_message":"Bad Request. The series does not exist."}`))
	}))
	defer srv.Close()

	c := NewClient(WithRetries(2, time.Millisecond))
	err := c.SendAndParse(context.Background(), &RequestOptions{URL: srv.URL}, nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Contains(t, se.Body, "does not exist")
}

func TestClient_SendAndParse_RawBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain"))
	}))
	defer srv.Close()

	var raw []byte
	require.NoError(t, NewClient().SendAndParse(context.Background(), &RequestOptions{URL: srv.URL}, &raw))
	assert.Equal(t, "plain", string(raw))
}
