package invoices

import "github.com/go-chi/chi/v5"

// MountRoutes registers the authenticated invoice and payment endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/invoices", h.create)
	r.Get("/invoices", h.list)
	r.Get("/invoices/{id}", h.get)
	r.Put("/invoices/{id}/payment", h.recordPayment)
	r.Get("/invoices/{id}/payments", h.payments)
	r.Put("/invoices/{id}/cancel", h.cancel)

	r.Post("/payments", h.recordQuotationPayment)
	r.Get("/payments/quotation/{quotationID}", h.quotationPayments)
	r.Get("/payments/summary", h.summary)
}

// MountDocumentRoutes registers the PDF downloads, which are served without a token.
func (h *Handler) MountDocumentRoutes(r chi.Router) {
	r.Get("/invoices/{id}/pdf", h.invoicePDF)
	r.Get("/invoices/payments/{paymentID}/voucher", h.voucherPDF)
}
