package locations

import (
	"log/slog"
	"net/http"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) CreateCountry(w http.ResponseWriter, r *http.Request) {
	var req CreateCountryRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	country, err := h.service.CreateCountry(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create country", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, country)
}

func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.service.ListCountries(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "list countries", err)
		return
	}
	httpx.JSON(w, http.StatusOK, countries)
}

func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	var req CreateCityRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	city, err := h.service.CreateCity(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create city", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, city)
}

func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.ListCities(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "list cities", err)
		return
	}
	httpx.JSON(w, http.StatusOK, cities)
}

func (h *Handler) CitiesByCountry(w http.ResponseWriter, r *http.Request) {
	countryID, err := httpx.IDParam(r, "countryID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	cities, err := h.service.CitiesByCountry(r.Context(), countryID)
	if err != nil {
		httpx.Fail(w, h.logger, "list cities by country", err)
		return
	}
	httpx.JSON(w, http.StatusOK, cities)
}
