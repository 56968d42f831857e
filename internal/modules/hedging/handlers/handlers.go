// Package handlers provides HTTP handlers for hedge strategy operations.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aristath/hedgeflow/internal/api"
	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/internal/market_regime"
	"github.com/aristath/hedgeflow/internal/modules/hedging"
)

const defaultHistoryLimit = 20

// RegimeHistoryReader lists recorded regime decisions
type RegimeHistoryReader interface {
	Recent(limit int) ([]market_regime.RegimeHistoryEntry, error)
}

// Handler handles hedging HTTP requests
type Handler struct {
	service           *hedging.Service
	history           RegimeHistoryReader
	responder         *api.Responder
	defaultConfidence float64
	log               zerolog.Logger
}

// NewHandler creates a new hedging handler. history may be nil.
func NewHandler(service *hedging.Service, history RegimeHistoryReader, responder *api.Responder, defaultConfidence float64, log zerolog.Logger) *Handler {
	return &Handler{
		service:           service,
		history:           history,
		responder:         responder,
		defaultConfidence: defaultConfidence,
		log:               log.With().Str("handler", "hedging").Logger(),
	}
}

type exposureRequest struct {
	Category      domain.Category `json:"category" validate:"required,oneof=fuel currency freight"`
	Quantity      float64         `json:"quantity" validate:"gt=0"`
	UnitPrice     float64         `json:"unit_price" validate:"gt=0"`
	HorizonMonths int             `json:"horizon_months" validate:"gte=1"`
}

type strategyRequest struct {
	Exposures      []exposureRequest      `json:"exposures" validate:"required,min=1,max=3,dive"`
	Snapshot       *domain.MarketSnapshot `json:"snapshot"` // Omitted means the configured market data provider
	CrisisOverride bool                   `json:"crisis_override"`
	BudgetLimit    *float64               `json:"budget_limit" validate:"omitempty,gte=0"`
	Confidence     float64                `json:"confidence"`
}

// HandleBuildStrategy handles POST /api/hedging/strategy
func (h *Handler) HandleBuildStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := h.responder.Decode(r, &req); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	exposures := make([]domain.Exposure, 0, len(req.Exposures))
	for _, e := range req.Exposures {
		exposures = append(exposures, domain.Exposure{
			Category:      e.Category,
			Quantity:      e.Quantity,
			UnitPrice:     e.UnitPrice,
			HorizonMonths: e.HorizonMonths,
		})
	}

	confidence := req.Confidence
	if confidence == 0 {
		confidence = h.defaultConfidence
	}

	strategy, err := h.service.BuildHedgeStrategy(r.Context(), exposures, req.Snapshot, req.CrisisOverride, hedging.StrategyOptions{
		BudgetLimit: req.BudgetLimit,
		Confidence:  confidence,
	})
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	h.responder.WriteData(w, r, http.StatusOK, strategy)
}

type instrumentsQuery struct {
	Category      domain.Category `json:"category" validate:"required,oneof=fuel currency freight"`
	Quantity      float64         `json:"quantity" validate:"gt=0"`
	UnitPrice     float64         `json:"unit_price" validate:"gt=0"`
	HorizonMonths int             `json:"horizon_months" validate:"gte=1"`
	Crisis        bool            `json:"crisis"`
}

type instrumentsResponse struct {
	Regime      domain.StrategyRegime         `json:"regime"`
	Exposure    domain.Exposure               `json:"exposure"`
	Instruments []hedging.HedgeInstrumentSpec `json:"instruments"` // Cheapest protection first
}

// HandleGetInstruments handles GET /api/hedging/instruments
func (h *Handler) HandleGetInstruments(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseInstrumentsQuery(r)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	exposure := domain.Exposure{
		Category:      q.Category,
		Quantity:      q.Quantity,
		UnitPrice:     q.UnitPrice,
		HorizonMonths: q.HorizonMonths,
	}

	regime, specs, err := h.service.PricedCatalog(r.Context(), exposure, q.Crisis)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	h.responder.WriteData(w, r, http.StatusOK, instrumentsResponse{
		Regime:      regime,
		Exposure:    exposure,
		Instruments: specs,
	})
}

// HandleGetRegime handles GET /api/hedging/regime
func (h *Handler) HandleGetRegime(w http.ResponseWriter, r *http.Request) {
	crisis, err := parseBool(r, "crisis")
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	decision, err := h.service.CurrentRegime(r.Context(), crisis)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	h.responder.WriteData(w, r, http.StatusOK, decision)
}

// HandleGetRegimeHistory handles GET /api/hedging/regime/history
func (h *Handler) HandleGetRegimeHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.responder.WriteData(w, r, http.StatusOK, []market_regime.RegimeHistoryEntry{})
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.responder.WriteError(w, r, queryError("limit", "number", err))
			return
		}
		limit = n
	}

	entries, err := h.history.Recent(limit)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	h.responder.WriteData(w, r, http.StatusOK, entries)
}

func (h *Handler) parseInstrumentsQuery(r *http.Request) (instrumentsQuery, error) {
	values := r.URL.Query()
	q := instrumentsQuery{Category: domain.Category(values.Get("category"))}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"quantity", &q.Quantity},
		{"unit_price", &q.UnitPrice},
	}
	for _, f := range floats {
		if raw := values.Get(f.name); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return q, queryError(f.name, "number", err)
			}
			*f.dst = v
		}
	}

	if raw := values.Get("horizon_months"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, queryError("horizon_months", "number", err)
		}
		q.HorizonMonths = v
	}

	crisis, err := parseBool(r, "crisis")
	if err != nil {
		return q, err
	}
	q.Crisis = crisis

	return q, h.responder.Validate(q)
}

func parseBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, queryError(name, "boolean", err)
	}
	return v, nil
}

func queryError(field, rule string, err error) error {
	return &api.RequestError{
		Message: fmt.Sprintf("invalid query parameter %s: %v", field, err),
		Fields:  []api.FieldError{{Field: field, Rule: rule}},
	}
}
