package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	logger.InitLogger()
	os.Exit(m.Run())
}

func newClient() *Client {
	return New(5*time.Second, TLSPolicy{})
}

func TestGetJSONRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer srv.Close()

	var out struct {
		Value int `json:"value"`
	}
	err := newClient().GetJSON(context.Background(), srv.URL, nil, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Value)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := newClient().GetJSON(context.Background(), srv.URL, nil, nil, &out)
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetJSONRetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := newClient().GetJSON(context.Background(), srv.URL, nil, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetJSONGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := newClient().GetJSON(context.Background(), srv.URL, nil, nil, &out)
	require.Error(t, err)
	assert.Equal(t, int32(maxAttempts), atomic.LoadInt32(&calls))
}

func TestGetJSONRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out map[string]interface{}
	err := newClient().GetJSON(ctx, srv.URL, nil, nil, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetJSONNoRetrySingleAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := newClient().GetJSONNoRetry(context.Background(), srv.URL, nil, nil, &out)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetJSONSendsQueryAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("limit"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "abc", r.Header.Get("X-API-Key"))
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	query := url.Values{}
	query.Set("limit", "42")
	headers := map[string]string{"X-API-Key": "abc"}

	var out map[string]interface{}
	err := newClient().GetJSON(context.Background(), srv.URL, query, headers, &out)
	require.NoError(t, err)
}

func TestPostFormJSONEncodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	var out struct {
		OK bool `json:"ok"`
	}
	err := newClient().PostFormJSON(context.Background(), srv.URL, form, nil, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestPostFormJSONReplaysBodyOnRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payload", r.PostForm.Get("data"))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	form := url.Values{}
	form.Set("data", "payload")

	var out map[string]interface{}
	err := newClient().PostFormJSON(context.Background(), srv.URL, form, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPlainGetsAlwaysVerifyCertificates(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	// Even with the unconditional bypass configured, the plain helpers keep
	// verifying: only GetJSONWithPolicy honors the bypass flags.
	client := New(5*time.Second, TLSPolicy{AllowInsecure: true})

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), srv.URL, nil, nil, &out)
	require.Error(t, err)
	assert.True(t, isCertError(err), "expected certificate error, got: %v", err)

	err = client.GetJSONNoRetry(context.Background(), srv.URL, nil, nil, &out)
	require.Error(t, err)
	assert.True(t, isCertError(err), "expected certificate error, got: %v", err)

	form := url.Values{}
	form.Set("k", "v")
	err = client.PostFormJSON(context.Background(), srv.URL, form, nil, &out)
	require.Error(t, err)
	assert.True(t, isCertError(err), "expected certificate error, got: %v", err)
}
