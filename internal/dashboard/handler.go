package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.summary)
	r.Get("/accounts/summary", h.accounts)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Summary(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "dashboard summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) accounts(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Accounts(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "accounts summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
