package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darshan1137/case/internal/observability"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_ReverseGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/72.877700,19.076000.json", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))
		assert.Equal(t, areaTypes, r.URL.Query().Get("types"))

		resp := response{
			Features: []feature{{
				Center:    []float64{72.8777, 19.076},
				PlaceName: "Andheri East, Mumbai, Maharashtra, India",
				Text:      "Andheri East",
				Relevance: 0.98,
			}},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	result, err := c.ReverseGeocode(context.Background(), 19.076, 72.8777)
	require.NoError(t, err)

	assert.Equal(t, "Andheri East, Mumbai, Maharashtra, India", result.FormattedAddress)
	assert.Equal(t, "Andheri East", result.PlaceName)
	assert.Equal(t, 0.98, result.Confidence)
	assert.Equal(t, 19.076, result.Lat)
	assert.Equal(t, 72.8777, result.Lon)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("success")))
}

func TestClient_ReverseGeocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{}}))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	result, err := c.ReverseGeocode(context.Background(), 0.5, 0.5)
	require.NoError(t, err)
	assert.Empty(t, result.FormattedAddress)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("empty")))
}

func TestClient_ReverseGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.ReverseGeocode(context.Background(), 19.07, 72.87)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("error")))
}

func TestClient_ReverseGeocode_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.ReverseGeocode(context.Background(), 19.07, 72.87)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_ReverseGeocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 50*time.Millisecond)
	_, err := c.ReverseGeocode(context.Background(), 19.07, 72.87)
	require.Error(t, err)
}
