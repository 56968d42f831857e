// Package handlers provides HTTP handlers for risk calculations.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/hedgeflow/internal/api"
	"github.com/aristath/hedgeflow/internal/modules/risk"
	"github.com/aristath/hedgeflow/pkg/formulas"
)

// Handler handles risk HTTP requests
type Handler struct {
	service           *risk.Service
	responder         *api.Responder
	defaultConfidence float64
	log               zerolog.Logger
}

// NewHandler creates a new risk handler.
// defaultConfidence applies to VaR requests that omit a confidence level.
func NewHandler(service *risk.Service, responder *api.Responder, defaultConfidence float64, log zerolog.Logger) *Handler {
	return &Handler{
		service:           service,
		responder:         responder,
		defaultConfidence: defaultConfidence,
		log:               log.With().Str("handler", "risk").Logger(),
	}
}

type varRequest struct {
	ExposureValue *float64 `json:"exposure_value" validate:"required"`
	Volatility    *float64 `json:"volatility" validate:"required"`
	Confidence    float64  `json:"confidence"`
	HorizonDays   int      `json:"horizon_days" validate:"required"`
	Profile       bool     `json:"profile"` // Also estimate at every supported confidence level
}

type varResponse struct {
	VaR     risk.VaRResult   `json:"var"`
	Profile []risk.VaRResult `json:"profile,omitempty"`
}

// HandleVaR handles POST /api/risk/var
func (h *Handler) HandleVaR(w http.ResponseWriter, r *http.Request) {
	var req varRequest
	if err := h.responder.Decode(r, &req); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	confidence := req.Confidence
	if confidence == 0 {
		confidence = h.defaultConfidence
	}

	result, err := h.service.ComputeVaR(*req.ExposureValue, *req.Volatility, confidence, req.HorizonDays)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	resp := varResponse{VaR: result}
	if req.Profile {
		resp.Profile, err = h.service.ComputeVaRProfile(*req.ExposureValue, *req.Volatility, req.HorizonDays)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
	}

	h.responder.WriteData(w, r, http.StatusOK, resp)
}

// HandleConfidenceLevels handles GET /api/risk/confidence-levels
func (h *Handler) HandleConfidenceLevels(w http.ResponseWriter, r *http.Request) {
	h.responder.WriteData(w, r, http.StatusOK, risk.ConfidenceLevels())
}

// hedgeRatioRequest takes either explicit statistics or aligned price series to derive them from.
// Explicit statistics win over derived ones.
type hedgeRatioRequest struct {
	Correlation   *float64  `json:"correlation" validate:"required_without=SpotPrices,omitempty,gte=-1,lte=1"`
	SpotVol       *float64  `json:"spot_volatility" validate:"required_without=SpotPrices"`
	FuturesVol    *float64  `json:"futures_volatility" validate:"required_without=SpotPrices"`
	SpotPrices    []float64 `json:"spot_prices" validate:"omitempty,min=3,dive,gt=0"`
	FuturesPrices []float64 `json:"futures_prices" validate:"required_with=SpotPrices,omitempty,min=3,dive,gt=0"`
}

type hedgeRatioResponse struct {
	risk.HedgeRatioResult
	Derived      bool `json:"derived"` // Statistics were estimated from price series
	Observations int  `json:"observations,omitempty"`
}

// HandleHedgeRatio handles POST /api/risk/hedge-ratio
func (h *Handler) HandleHedgeRatio(w http.ResponseWriter, r *http.Request) {
	var req hedgeRatioRequest
	if err := h.responder.Decode(r, &req); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	var correlation, spotVol, futuresVol float64
	resp := hedgeRatioResponse{}

	if len(req.SpotPrices) > 0 {
		if len(req.SpotPrices) != len(req.FuturesPrices) {
			h.responder.WriteError(w, r, &api.RequestError{
				Message: "spot_prices and futures_prices must have the same length",
				Fields:  []api.FieldError{{Field: "futures_prices", Rule: "len", Param: "spot_prices"}},
			})
			return
		}

		spotReturns := formulas.CalculateReturns(req.SpotPrices)
		futuresReturns := formulas.CalculateReturns(req.FuturesPrices)
		correlation = formulas.Correlation(spotReturns, futuresReturns)
		spotVol = formulas.AnnualizedVolatility(spotReturns)
		futuresVol = formulas.AnnualizedVolatility(futuresReturns)

		resp.Derived = true
		resp.Observations = len(spotReturns)
	}

	if req.Correlation != nil {
		correlation = *req.Correlation
	}
	if req.SpotVol != nil {
		spotVol = *req.SpotVol
	}
	if req.FuturesVol != nil {
		futuresVol = *req.FuturesVol
	}

	result, err := h.service.ComputeHedgeRatio(correlation, spotVol, futuresVol)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	resp.HedgeRatioResult = result

	h.responder.WriteData(w, r, http.StatusOK, resp)
}

type portfolioRequest struct {
	Assets       []risk.AssetExposure `json:"assets" validate:"required,min=1"`
	Correlations map[string]float64   `json:"correlations"` // Keyed "a-b"; overrides the default category correlations
}

// HandlePortfolioRisk handles POST /api/risk/portfolio
func (h *Handler) HandlePortfolioRisk(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := h.responder.Decode(r, &req); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	result, err := h.service.ComputePortfolioRisk(req.Assets, risk.Correlations(req.Correlations))
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	h.responder.WriteData(w, r, http.StatusOK, result)
}
