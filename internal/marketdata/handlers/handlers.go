// Package handlers provides HTTP handlers for market data.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/hedgeflow/internal/api"
	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/internal/marketdata"
)

// Store persists market data for the SQLite provider
type Store interface {
	SaveSnapshot(ctx context.Context, s domain.MarketSnapshot) error
	AppendPrices(ctx context.Context, category domain.Category, points []marketdata.PricePoint) error
}

// Handler handles market data HTTP requests
type Handler struct {
	provider  domain.MarketDataProvider
	store     Store
	responder *api.Responder
	log       zerolog.Logger
}

// NewHandler creates a new market data handler.
// Ingest routes are only registered when store is non-nil.
func NewHandler(provider domain.MarketDataProvider, store Store, responder *api.Responder, log zerolog.Logger) *Handler {
	return &Handler{
		provider:  provider,
		store:     store,
		responder: responder,
		log:       log.With().Str("handler", "market").Logger(),
	}
}

// HandleGetSnapshot handles GET /api/market/snapshot
func (h *Handler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.provider.GetSnapshot(r.Context())
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	h.responder.WriteData(w, r, http.StatusOK, snapshot)
}

type snapshotRequest struct {
	AsOf                 time.Time           `json:"as_of"`
	SpotPrice            float64             `json:"spot_price" validate:"gt=0"`
	AnnualizedVolatility float64             `json:"annualized_volatility" validate:"gte=0"`
	FXSpotRate           float64             `json:"fx_spot_rate" validate:"gt=0"`
	FreightDayRate       float64             `json:"freight_day_rate" validate:"gt=0"`
	CrisisIndicators     []string            `json:"crisis_indicators" validate:"dive,required,excludesall=0x2C"`
	Regime               domain.MarketRegime `json:"regime" validate:"omitempty,oneof=normal elevated crisis"`
}

// HandleSaveSnapshot handles POST /api/market/snapshot
func (h *Handler) HandleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := h.responder.Decode(r, &req); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	snapshot := domain.MarketSnapshot{
		AsOf:                 req.AsOf,
		SpotPrice:            req.SpotPrice,
		AnnualizedVolatility: req.AnnualizedVolatility,
		FXSpotRate:           req.FXSpotRate,
		FreightDayRate:       req.FreightDayRate,
		CrisisIndicators:     req.CrisisIndicators,
		Regime:               req.Regime,
	}
	if err := h.store.SaveSnapshot(r.Context(), snapshot); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	h.log.Info().
		Float64("spot_price", snapshot.SpotPrice).
		Str("regime", string(snapshot.Regime)).
		Msg("Stored market snapshot")

	h.responder.WriteData(w, r, http.StatusCreated, snapshot)
}

type pricesRequest struct {
	Category domain.Category         `json:"category" validate:"required,oneof=fuel currency freight"`
	Points   []marketdata.PricePoint `json:"points" validate:"required,min=1"`
}

type pricesResponse struct {
	Category domain.Category `json:"category"`
	Stored   int             `json:"stored"`
}

// HandleAppendPrices handles POST /api/market/prices
func (h *Handler) HandleAppendPrices(w http.ResponseWriter, r *http.Request) {
	var req pricesRequest
	if err := h.responder.Decode(r, &req); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	if err := h.store.AppendPrices(r.Context(), req.Category, req.Points); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	h.log.Debug().
		Str("category", string(req.Category)).
		Int("points", len(req.Points)).
		Msg("Stored daily prices")

	h.responder.WriteData(w, r, http.StatusCreated, pricesResponse{Category: req.Category, Stored: len(req.Points)})
}
