package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/hedgeflow/internal/api"
	"github.com/aristath/hedgeflow/internal/modules/risk"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	handler := NewHandler(risk.NewService(logger), api.NewResponder(logger), 0.95, logger)

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var env struct {
		Data     json.RawMessage `json:"data"`
		Metadata api.Metadata    `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.NotEmpty(t, env.Metadata.Timestamp)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestHandleVaR(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/risk/var",
		`{"exposure_value":1000000,"volatility":0.3,"horizon_days":21}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp varResponse
	decodeData(t, rec, &resp)

	expected := 1_000_000 * 1.645 * 0.3 * math.Sqrt(21.0/252.0)
	assert.InDelta(t, expected, resp.VaR.VaRValue, 1e-6)
	assert.Equal(t, 0.95, resp.VaR.ConfidenceLevel)
	assert.Equal(t, risk.RiskLevelModerate, resp.VaR.RiskLevel)
	assert.Empty(t, resp.Profile)
}

func TestHandleVaR_Profile(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/risk/var",
		`{"exposure_value":500000,"volatility":0.2,"confidence":0.99,"horizon_days":63,"profile":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp varResponse
	decodeData(t, rec, &resp)

	assert.Equal(t, 0.99, resp.VaR.ConfidenceLevel)
	require.Len(t, resp.Profile, 3)
	assert.Equal(t, 0.90, resp.Profile[0].ConfidenceLevel)
	assert.Equal(t, 0.99, resp.Profile[2].ConfidenceLevel)
	assert.Less(t, resp.Profile[0].VaRValue, resp.Profile[1].VaRValue)
	assert.Less(t, resp.Profile[1].VaRValue, resp.Profile[2].VaRValue)
	assert.InDelta(t, resp.VaR.VaRValue, resp.Profile[2].VaRValue, 1e-9)
}

func TestHandleVaR_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"exposure_value":`},
		{"missing volatility", `{"exposure_value":100,"horizon_days":5}`},
		{"missing horizon", `{"exposure_value":100,"volatility":0.2}`},
		{"negative exposure", `{"exposure_value":-1,"volatility":0.2,"horizon_days":5}`},
		{"negative horizon", `{"exposure_value":100,"volatility":0.2,"horizon_days":-5}`},
	}

	router := setupRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/risk/var", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestHandleConfidenceLevels(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/risk/confidence-levels", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var levels []risk.ConfidenceLevel
	decodeData(t, rec, &levels)
	require.Len(t, levels, 3)
	assert.Equal(t, 1.645, levels[1].ZScore)
}

func TestHandleHedgeRatio_ExplicitStatistics(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/risk/hedge-ratio",
		`{"correlation":0.9,"spot_volatility":0.3,"futures_volatility":0.25}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp hedgeRatioResponse
	decodeData(t, rec, &resp)

	assert.InDelta(t, 1.08, resp.Ratio, 1e-9)
	assert.Equal(t, risk.MaxRecommendedHedgePct, resp.RecommendedPct)
	assert.InDelta(t, 81.0, resp.VarianceReductionPct, 1e-9)
	assert.False(t, resp.Derived)
}

func TestHandleHedgeRatio_DerivedFromPrices(t *testing.T) {
	router := setupRouter(t)

	// Futures move exactly half as much as spot in the same direction.
	body := `{
		"spot_prices":    [100, 102, 99, 103, 101, 104],
		"futures_prices": [50, 50.5, 49.757353, 50.762552, 50.269712, 51.016292]
	}`
	rec := doRequest(t, router, http.MethodPost, "/api/risk/hedge-ratio", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp hedgeRatioResponse
	decodeData(t, rec, &resp)

	assert.True(t, resp.Derived)
	assert.Equal(t, 5, resp.Observations)
	assert.InDelta(t, 1.0, resp.Correlation, 1e-3)
	assert.InDelta(t, 2.0, resp.Ratio, 1e-2)
	assert.Equal(t, risk.MaxRecommendedHedgePct, resp.RecommendedPct)
}

func TestHandleHedgeRatio_ExplicitOverridesDerived(t *testing.T) {
	router := setupRouter(t)

	body := `{
		"correlation": 0.5,
		"spot_prices":    [100, 102, 99, 103, 101, 104],
		"futures_prices": [100, 102, 99, 103, 101, 104]
	}`
	rec := doRequest(t, router, http.MethodPost, "/api/risk/hedge-ratio", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp hedgeRatioResponse
	decodeData(t, rec, &resp)

	assert.True(t, resp.Derived)
	assert.Equal(t, 0.5, resp.Correlation)
	assert.InDelta(t, 0.5, resp.Ratio, 1e-9)
}

func TestHandleHedgeRatio_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"nothing", `{}`},
		{"correlation out of range", `{"correlation":1.5,"spot_volatility":0.3,"futures_volatility":0.2}`},
		{"zero futures vol", `{"correlation":0.8,"spot_volatility":0.3,"futures_volatility":0}`},
		{"spot without futures", `{"spot_prices":[1,2,3]}`},
		{"mismatched series", `{"spot_prices":[1,2,3,4],"futures_prices":[1,2,3]}`},
		{"too short", `{"spot_prices":[1,2],"futures_prices":[1,2]}`},
		{"flat prices", `{"spot_prices":[5,5,5,5],"futures_prices":[5,5,5,5]}`},
	}

	router := setupRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/risk/hedge-ratio", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandlePortfolioRisk(t *testing.T) {
	router := setupRouter(t)

	body := `{
		"assets": [
			{"name":"fuel","exposure_value":600000,"volatility":0.3},
			{"name":"currency","exposure_value":400000,"volatility":0.1}
		],
		"correlations": {"currency-fuel": 0.0}
	}`
	rec := doRequest(t, router, http.MethodPost, "/api/risk/portfolio", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp risk.PortfolioRiskResult
	decodeData(t, rec, &resp)

	assert.Equal(t, 1_000_000.0, resp.TotalExposure)
	// (0.6 × 0.3)² + (0.4 × 0.1)² with no cross term
	assert.InDelta(t, 0.0324+0.0016, resp.PortfolioVariance, 1e-12)
	require.Len(t, resp.Covariances, 1)
	assert.Equal(t, 0.0, resp.Covariances[0].Correlation)
	assert.Greater(t, resp.DiversificationBenefit, 0.0)
}

func TestHandlePortfolioRisk_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no assets", `{"assets":[]}`},
		{"duplicate asset", `{"assets":[{"name":"fuel","exposure_value":1,"volatility":0.1},{"name":"fuel","exposure_value":1,"volatility":0.1}]}`},
		{"bad correlation", `{"assets":[{"name":"a","exposure_value":1,"volatility":0.1}],"correlations":{"a-b":2}}`},
	}

	router := setupRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/risk/portfolio", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
