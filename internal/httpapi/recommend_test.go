package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ma-ji/miscite-sub001/internal/recommend"
)

func newTestServer(t *testing.T, limiter *rate.Limiter, maxBody int64) *httptest.Server {
	t.Helper()
	builder := recommend.NewBuilder(recommend.BuilderConfig{}, nil)
	mux := http.NewServeMux()
	NewRecommendHandler(builder, nil, limiter, maxBody).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRecommendHandler_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil, 0)

	resp, err := http.Get(srv.URL + "/v1/recommendations")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "method not allowed", body["error"])
}

func TestRecommendHandler_InvalidJSON(t *testing.T) {
	srv := newTestServer(t, nil, 0)

	resp := postJSON(t, srv.URL+"/v1/recommendations", `{"suggestions":`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "invalid json", body["error"])
}

func TestRecommendHandler_BodyTooLarge(t *testing.T) {
	srv := newTestServer(t, nil, 64)

	resp := postJSON(t, srv.URL+"/v1/recommendations",
		`{"suggestions":{"status":"completed","note":"`+strings.Repeat("x", 256)+`"}}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecommendHandler_CompletedRun(t *testing.T) {
	srv := newTestServer(t, nil, 0)
	payload := `{
		"suggestions": {
			"status": "completed",
			"items": [
				{"section_title": "Introduction", "rid": "R2", "action_type": "add",
				 "priority": "high", "action": "Add this reference to support the claim.",
				 "anchor_quote": "The current evidence base is limited."}
			]
		},
		"references": {"R2": {"in_paper": false}}
	}`

	resp := postJSON(t, srv.URL+"/v1/recommendations", payload)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Run-ID"))

	var report recommend.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "completed", report.Status)
	require.Len(t, report.GlobalActions, 1)
	assert.Equal(t, "Introduction", report.GlobalActions[0].SectionTitle)
	assert.Equal(t, []string{"R2"}, report.GlobalActions[0].RIDs)
}

func TestRecommendHandler_SkippedRun(t *testing.T) {
	srv := newTestServer(t, nil, 0)

	resp := postJSON(t, srv.URL+"/v1/recommendations", `{}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode, "a skipped run is a successful response")
	var report recommend.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "skipped", report.Status)
	assert.NotEmpty(t, report.Reason)
}

func TestRecommendHandler_RateLimited(t *testing.T) {
	srv := newTestServer(t, rate.NewLimiter(rate.Limit(0.001), 1), 0)

	first := postJSON(t, srv.URL+"/v1/recommendations", `{}`)
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second := postJSON(t, srv.URL+"/v1/recommendations", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
