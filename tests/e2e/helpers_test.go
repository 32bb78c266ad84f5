//go:build e2e

package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// get performs a GET against the running gateway.
func get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(gatewayURL + path)
	require.NoError(t, err)
	return resp
}

// getJSON performs a GET and decodes the JSON body into out.
func getJSON(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	resp := get(t, path)
	defer closeBody(resp)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

// adminGet performs a GET with the master key attached.
func adminGet(t *testing.T, path, key string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, gatewayURL+path, nil)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// adminPost performs a POST with the master key attached.
func adminPost(t *testing.T, path, key string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, gatewayURL+path, nil)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// warmCatalog guarantees the snapshot exists before a test takes upstream
// call-count baselines. The gateway starts on an empty bootstrap store, so
// whichever request arrives first triggers the initial refresh.
func warmCatalog(t *testing.T) {
	t.Helper()
	resp := get(t, "/problems")
	closeBody(resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// bodyString reads and closes the response body.
func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer closeBody(resp)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// closeBody is a helper to close response bodies in defer statements.
func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}

// eventually polls cond until it returns true or the deadline passes.
// For assertions against the asynchronous request log.
func eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
