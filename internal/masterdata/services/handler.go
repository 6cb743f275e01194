package services

import (
	"log/slog"
	"net/http"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	manager *Manager
}

func NewHandler(logger *slog.Logger, manager *Manager) *Handler {
	return &Handler{logger: logger, manager: manager}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	svc, err := h.manager.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create service", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, svc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// Filter is the name-ordered variant used by the quotation builder.
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, byName bool) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filter.ByName = byName
	items, err := h.manager.List(r.Context(), filter)
	if err != nil {
		httpx.Fail(w, h.logger, "list services", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.manager.Delete(r.Context(), id); err != nil {
		httpx.Fail(w, h.logger, "delete service", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Service deleted successfully"})
}

func parseFilter(r *http.Request) (Filter, error) {
	var filter Filter
	cityID, err := httpx.OptionalIDQuery(r, "city_id")
	if err != nil {
		return filter, err
	}
	filter.CityID = cityID
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := ParseCategory(raw)
		if err != nil {
			return filter, err
		}
		filter.Category = &category
	}
	return filter, nil
}
