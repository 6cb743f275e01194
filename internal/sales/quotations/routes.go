package quotations

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/quotations", h.Create)
	r.Get("/quotations", h.List)
	r.Get("/quotations/{id}", h.Show)
	r.Post("/quotations/{id}/items", h.AddItem)
	r.Put("/quotations/{id}/status", h.UpdateStatus)
	r.Delete("/quotations/{id}", h.Delete)
	r.Get("/quotations/{id}/profit-sheet", h.ProfitSheetPDF)
}

// MountDocumentRoutes registers the brochure download, served without a token.
func (h *Handler) MountDocumentRoutes(r chi.Router) {
	r.Get("/quotations/{id}/pdf", h.BrochurePDF)
}
