package httpclient

import (
	"context"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelfSignedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPolicyAllowInsecureSkipsVerification(t *testing.T) {
	srv := newSelfSignedServer(t)
	client := New(5*time.Second, TLSPolicy{AllowInsecure: true})

	var out struct {
		OK bool `json:"ok"`
	}
	note, err := client.GetJSONWithPolicy(context.Background(), srv.URL, nil, nil, &out)
	require.NoError(t, err)
	assert.Empty(t, note, "the unconditional bypass carries no annotation")
	assert.True(t, out.OK)
}

func TestPolicyDefaultFailsWithGuidance(t *testing.T) {
	srv := newSelfSignedServer(t)
	client := New(5*time.Second, TLSPolicy{})

	var out map[string]interface{}
	note, err := client.GetJSONWithPolicy(context.Background(), srv.URL, nil, nil, &out)
	require.Error(t, err)
	assert.Empty(t, note)
	assert.Contains(t, err.Error(), "certificate verification failed")
	assert.Contains(t, err.Error(), "OPENMETEO_ALLOW_INSECURE")
}

func TestPolicyAutoAcceptRetriesInsecurely(t *testing.T) {
	srv := newSelfSignedServer(t)
	client := New(5*time.Second, TLSPolicy{AutoAcceptUnverified: true})

	var out struct {
		OK bool `json:"ok"`
	}
	note, err := client.GetJSONWithPolicy(context.Background(), srv.URL, nil, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "(insecure auto-accepted TLS)", note)
	assert.True(t, out.OK)
}

func TestPolicyCaptureChainWritesLeafCertificate(t *testing.T) {
	srv := newSelfSignedServer(t)
	chainFile := filepath.Join(t.TempDir(), "openmeteo_cert.pem")
	client := New(5*time.Second, TLSPolicy{CaptureChain: true, ChainFile: chainFile})

	var out map[string]interface{}
	note, err := client.GetJSONWithPolicy(context.Background(), srv.URL, nil, nil, &out)
	require.Error(t, err, "capture still reports the TLS failure")
	assert.Empty(t, note)
	assert.Contains(t, err.Error(), chainFile)

	raw, readErr := os.ReadFile(chainFile)
	require.NoError(t, readErr)
	block, _ := pem.Decode(raw)
	require.NotNil(t, block)
	assert.Equal(t, "CERTIFICATE", block.Type)
}

func TestPolicyNoLadderOnCleanResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	client := New(5*time.Second, TLSPolicy{AutoAcceptUnverified: true})

	var out struct {
		OK bool `json:"ok"`
	}
	note, err := client.GetJSONWithPolicy(context.Background(), srv.URL, nil, nil, &out)
	require.NoError(t, err)
	assert.Empty(t, note, "ladder must not run without a TLS failure")
	assert.True(t, out.OK)
}

func TestPolicyNonTLSErrorsBypassLadder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer srv.Close()

	client := New(5*time.Second, TLSPolicy{AutoAcceptUnverified: true})

	var out map[string]interface{}
	note, err := client.GetJSONWithPolicy(context.Background(), srv.URL, nil, nil, &out)
	require.Error(t, err)
	assert.Empty(t, note)

	var se *StatusError
	assert.ErrorAs(t, err, &se)
}
