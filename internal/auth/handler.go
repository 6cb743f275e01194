package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voyageos/voyageos/internal/platform/httpx"
	"github.com/voyageos/voyageos/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := readLogin(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, shared.ErrInvalidCredentials) {
		httpx.RespondError(w, fmt.Errorf("invalid credentials: %w", httpx.ErrUnauthorized))
		return
	}
	if err != nil {
		httpx.Fail(w, h.logger, "login", err)
		return
	}
	httpx.JSON(w, http.StatusOK, token)
}

// readLogin accepts an OAuth2 password form or a JSON body.
func readLogin(r *http.Request) (loginRequest, error) {
	var req loginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := httpx.Bind(r, &req); err != nil {
			return loginRequest{}, err
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return loginRequest{}, fmt.Errorf("parse form: %w", httpx.ErrValidation)
	}
	req.Username = r.PostFormValue("username")
	req.Password = r.PostFormValue("password")
	if err := httpx.Validate(req); err != nil {
		return loginRequest{}, err
	}
	return req, nil
}
