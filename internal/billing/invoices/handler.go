package invoices

import (
	"log/slog"
	"net/http"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

// IdempotencyHeader lets clients retry payment requests safely.
const IdempotencyHeader = "Idempotency-Key"

// Handler exposes invoice and payment endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	quotationID, err := httpx.OptionalIDQuery(r, "quotation_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.List(r.Context(), quotationID)
	if err != nil {
		httpx.Fail(w, h.logger, "list invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req RecordPaymentRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.RecordPayment(r.Context(), id, req, r.Header.Get(IdempotencyHeader))
	if err != nil {
		httpx.Fail(w, h.logger, "record invoice payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.Payments(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "list invoice payments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "cancel invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, name, err := h.service.InvoicePDF(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "render invoice pdf", err)
		return
	}
	httpx.PDF(w, name, pdf)
}

func (h *Handler) voucherPDF(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "paymentID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, name, err := h.service.VoucherPDF(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "render payment voucher", err)
		return
	}
	httpx.PDF(w, name, pdf)
}

func (h *Handler) recordQuotationPayment(w http.ResponseWriter, r *http.Request) {
	var req QuotationPaymentRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.RecordQuotationPayment(r.Context(), req, r.Header.Get(IdempotencyHeader))
	if err != nil {
		httpx.Fail(w, h.logger, "record quotation payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) quotationPayments(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "quotationID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.PaymentsForQuotation(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "list quotation payments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Summary(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "payments summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}
