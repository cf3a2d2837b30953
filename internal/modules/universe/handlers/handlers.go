// Package handlers provides HTTP handlers for the asset universe.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/universe"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	cacheControl   = "public, max-age=3600"
	dataSourceNote = "データは教育・情報提供目的です。投資判断の根拠として使用しないでください。"
)

// Catalog is the read side of the universe store used by the handlers
type Catalog interface {
	List(ctx context.Context, filter universe.ListFilter) ([]domain.Asset, int, error)
	GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error)
	LatestPrice(ctx context.Context, assetID int64) (*universe.LatestPrice, error)
	Prices(ctx context.Context, assetID int64, since time.Time) ([]domain.PricePoint, error)
}

// Handler serves asset listings and price histories
type Handler struct {
	catalog Catalog
	now     func() time.Time
	log     zerolog.Logger
}

// NewHandler creates a new universe handler
func NewHandler(catalog Catalog, log zerolog.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		now:     time.Now,
		log:     log.With().Str("handler", "universe").Logger(),
	}
}

// RegisterRoutes registers the asset routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/assets", func(r chi.Router) {
		r.Get("/", h.HandleListAssets)
		r.Get("/{symbol}/prices", h.HandleGetPrices)
	})
}

type latestPriceResponse struct {
	ChangePct *float64 `json:"change_pct"`
	Date      string   `json:"date"`
	Close     float64  `json:"close"`
}

type assetResponse struct {
	LatestPrice *latestPriceResponse `json:"latest_price"`
	NameJA      *string              `json:"name_ja"`
	Sector      *string              `json:"sector"`
	Symbol      string               `json:"symbol"`
	Name        string               `json:"name"`
	AssetType   domain.AssetType     `json:"asset_type"`
	Market      domain.Market        `json:"market"`
	Currency    domain.Currency      `json:"currency"`
}

type listResponse struct {
	Items   []assetResponse `json:"items"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Pages   int             `json:"pages"`
}

// HandleListAssets handles GET /api/v1/assets
func (h *Handler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 1)
	if err != nil || page < 1 {
		h.writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	perPage, err := intParam(q.Get("per_page"), universe.DefaultPerPage)
	if err != nil || perPage < 1 || perPage > universe.MaxPerPage {
		h.writeError(w, http.StatusBadRequest, "per_page must be between 1 and 100")
		return
	}

	filter := universe.ListFilter{
		Market:    domain.Market(q.Get("market")),
		AssetType: domain.AssetType(q.Get("asset_type")),
		Search:    q.Get("search"),
		Page:      page,
		PerPage:   perPage,
	}

	assets, total, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list assets")
		h.writeError(w, http.StatusInternalServerError, "Failed to list assets")
		return
	}

	items := make([]assetResponse, 0, len(assets))
	for _, a := range assets {
		item := assetResponse{
			Symbol:    a.Symbol,
			Name:      a.Name,
			NameJA:    optional(a.NameJA),
			AssetType: a.AssetType,
			Market:    a.Market,
			Currency:  a.Currency,
			Sector:    optional(a.Sector),
		}

		latest, err := h.catalog.LatestPrice(r.Context(), a.ID)
		if err != nil {
			h.log.Warn().Str("symbol", a.Symbol).Err(err).Msg("Failed to load latest price")
		} else if latest != nil {
			item.LatestPrice = &latestPriceResponse{
				Close:     latest.Close,
				Date:      latest.Date.Format("2006-01-02"),
				ChangePct: latest.ChangePct,
			}
		}
		items = append(items, item)
	}

	w.Header().Set("Cache-Control", cacheControl)
	h.writeJSON(w, http.StatusOK, listResponse{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   universe.Pages(total, perPage),
	})
}

type priceResponse struct {
	Open     *float64 `json:"open"`
	High     *float64 `json:"high"`
	Low      *float64 `json:"low"`
	AdjClose *float64 `json:"adj_close"`
	Volume   *int64   `json:"volume"`
	Date     string   `json:"date"`
	Close    float64  `json:"close"`
}

type pricesResponse struct {
	Symbol         string          `json:"symbol"`
	Period         string          `json:"period"`
	Interval       string          `json:"interval"`
	DataSourceNote string          `json:"data_source_note"`
	Prices         []priceResponse `json:"prices"`
}

// HandleGetPrices handles GET /api/v1/assets/{symbol}/prices
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1y"
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = string(universe.IntervalDaily)
	}

	asset, err := h.catalog.GetBySymbol(r.Context(), symbol)
	if errors.Is(err, domain.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Asset "+symbol+" not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to load asset")
		h.writeError(w, http.StatusInternalServerError, "Failed to load asset")
		return
	}

	points, err := h.catalog.Prices(r.Context(), asset.ID, universe.PeriodStart(period, h.now()))
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to load prices")
		h.writeError(w, http.StatusInternalServerError, "Failed to load prices")
		return
	}
	points = universe.Downsample(points, universe.Interval(interval))

	prices := make([]priceResponse, len(points))
	for i, p := range points {
		prices[i] = priceResponse{
			Date:     p.Date.Format("2006-01-02"),
			Open:     nonZero(p.Open),
			High:     nonZero(p.High),
			Low:      nonZero(p.Low),
			Close:    p.Close,
			AdjClose: nonZero(p.AdjClose),
			Volume:   p.Volume,
		}
	}

	w.Header().Set("Cache-Control", cacheControl)
	h.writeJSON(w, http.StatusOK, pricesResponse{
		Symbol:         symbol,
		Period:         period,
		Interval:       interval,
		Prices:         prices,
		DataSourceNote: dataSourceNote,
	})
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nonZero maps zero-valued optional prices to null
func nonZero(p *float64) *float64 {
	if p == nil || *p == 0 {
		return nil
	}
	return p
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
