package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyageos/voyageos/internal/documents"
	"github.com/voyageos/voyageos/internal/platform/httpx"
	"github.com/voyageos/voyageos/internal/shared"
)

const idempotencyScope = "invoice_payment"

// Recorder receives billing counters.
type Recorder interface {
	InvoiceCreated()
	PaymentRecorded(method string)
	OverdueMarked(n int64)
}

type nopRecorder struct{}

func (nopRecorder) InvoiceCreated()        {}
func (nopRecorder) PaymentRecorded(string) {}
func (nopRecorder) OverdueMarked(int64)    {}

// Options configures the invoice service.
type Options struct {
	CompanyName string
	DueDays     int
	Auditor     shared.Auditor
	Invalidator shared.Invalidator
	Recorder    Recorder
	Logger      *slog.Logger
	Now         func() time.Time
}

// Service implements invoice and payment use-cases.
type Service struct {
	repo        Repository
	docs        *documents.Generator
	companyName string
	dueDays     int
	auditor     shared.Auditor
	invalidator shared.Invalidator
	recorder    Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs the invoice service.
func NewService(repo Repository, docs *documents.Generator, opts Options) *Service {
	s := &Service{
		repo:        repo,
		docs:        docs,
		companyName: opts.CompanyName,
		dueDays:     opts.DueDays,
		auditor:     opts.Auditor,
		invalidator: opts.Invalidator,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if s.auditor == nil {
		s.auditor = shared.NopAuditor{}
	}
	if s.invalidator == nil {
		s.invalidator = shared.NopInvalidator{}
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create bills a quotation that has no invoice yet.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error) {
	var inv Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		q, err := tx.Quotation(ctx, req.QuotationID)
		if err != nil {
			return err
		}
		inv, err = tx.Create(ctx, Seed{
			QuotationID: q.ID,
			ClientID:    q.ClientID,
			Total:       q.TotalSell,
			IssuedAt:    s.now(),
			DueDays:     s.dueDays,
		})
		return err
	})
	if err != nil {
		return Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	s.recorder.InvoiceCreated()
	s.invalidator.Invalidate(ctx)
	return inv, nil
}

// List returns invoices newest first. Each open invoice is reconciled
// against its payments and the corrected balance is written back.
func (s *Service) List(ctx context.Context, quotationID *int64) ([]Invoice, error) {
	listed, err := s.repo.List(ctx, quotationID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	now := s.now()
	changed := false
	out := make([]Invoice, 0, len(listed))
	for _, li := range listed {
		inv := li.Invoice
		if inv.PaymentStatus != StatusCancelled {
			due, status := Reconcile(inv.TotalAmount, li.PaymentSum, inv.DueDate, now)
			if !due.Equal(inv.DueAmount) || !li.PaymentSum.Equal(inv.PaidAmount) || status != inv.PaymentStatus {
				if err := s.repo.SaveBalance(ctx, inv.ID, li.PaymentSum, due, status); err != nil {
					return nil, fmt.Errorf("save invoice %d balance: %w", inv.ID, err)
				}
				inv.PaidAmount, inv.DueAmount, inv.PaymentStatus = li.PaymentSum, due, status
				changed = true
			}
		}
		out = append(out, inv)
	}
	if changed {
		s.invalidator.Invalidate(ctx)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.Get(ctx, id)
}

// RecordPayment appends a payment and reconciles the invoice in one
// transaction. A non-empty idempotency key makes retries with the same key fail
// instead of paying twice.
func (s *Service) RecordPayment(ctx context.Context, invoiceID int64, req RecordPaymentRequest, idempotencyKey string) (PaymentResult, error) {
	if !req.PaidAmount.IsPositive() {
		return PaymentResult{}, fmt.Errorf("payment amount must be greater than zero: %w", httpx.ErrValidation)
	}
	method, err := ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return PaymentResult{}, err
	}
	now := s.now()
	paidOn := now
	if req.PaymentDate.Valid {
		paidOn = req.PaymentDate.Time
	}

	var result PaymentResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.ClaimIdempotencyKey(ctx, idempotencyScope, strings.TrimSpace(idempotencyKey)); err != nil {
			return err
		}
		inv, err := tx.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.PaymentStatus == StatusCancelled {
			return fmt.Errorf("invoice %s is cancelled: %w", inv.InvoiceNumber, httpx.ErrInvalidState)
		}

		payment, err := tx.InsertPayment(ctx, Payment{
			InvoiceID:     inv.ID,
			PaymentDate:   paidOn,
			Amount:        req.PaidAmount,
			PaymentMethod: method,
			ReferenceNo:   optional(req.ReferenceNumber),
			Notes:         optional(req.Notes),
		})
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		paid, err := tx.SumPayments(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("sum payments: %w", err)
		}
		due, status := Reconcile(inv.TotalAmount, paid, inv.DueDate, now)
		if err := tx.SaveBalance(ctx, inv.ID, paid, due, status); err != nil {
			return fmt.Errorf("save balance: %w", err)
		}
		inv.PaidAmount, inv.DueAmount, inv.PaymentStatus = paid, due, status
		result = PaymentResult{Invoice: inv, Payment: payment}
		return nil
	})
	if err != nil {
		return PaymentResult{}, fmt.Errorf("record payment: %w", err)
	}

	s.recorder.PaymentRecorded(string(method))
	s.invalidator.Invalidate(ctx)
	s.audit(ctx, "invoice.payment", invoiceID, map[string]any{
		"receipt_number": result.Payment.ReceiptNumber,
		"amount":         result.Payment.Amount.String(),
		"status":         string(result.Invoice.PaymentStatus),
	})
	return result, nil
}

// RecordQuotationPayment pays the invoice belonging to a quotation.
func (s *Service) RecordQuotationPayment(ctx context.Context, req QuotationPaymentRequest, idempotencyKey string) (PaymentResult, error) {
	inv, err := s.repo.ForQuotation(ctx, req.QuotationID)
	if err != nil {
		return PaymentResult{}, err
	}
	return s.RecordPayment(ctx, inv.ID, req.toPayment(), idempotencyKey)
}

func (s *Service) Payments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	if _, err := s.repo.Get(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.Payments(ctx, invoiceID)
}

func (s *Service) PaymentsForQuotation(ctx context.Context, quotationID int64) ([]Payment, error) {
	return s.repo.PaymentsForQuotation(ctx, quotationID)
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return s.repo.Summary(ctx, today(s.now()))
}

// Cancel voids an unpaid or partially paid invoice. The outstanding amount is
// cleared but paid_amount is left as recorded, so paid and due no longer add
// up to the total; there is no refund flow to reconcile it.
func (s *Service) Cancel(ctx context.Context, id int64) (Invoice, error) {
	var inv Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		var err error
		inv, err = tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.PaymentStatus == StatusPaid {
			return fmt.Errorf("paid invoice %s cannot be cancelled: %w", inv.InvoiceNumber, httpx.ErrInvalidState)
		}
		inv.DueAmount = decimal.Zero
		inv.PaymentStatus = StatusCancelled
		return tx.SaveBalance(ctx, inv.ID, inv.PaidAmount, inv.DueAmount, inv.PaymentStatus)
	})
	if err != nil {
		return Invoice{}, fmt.Errorf("cancel invoice: %w", err)
	}
	s.invalidator.Invalidate(ctx)
	s.audit(ctx, "invoice.cancel", id, map[string]any{"paid_amount": inv.PaidAmount.String()})
	return inv, nil
}

// SweepOverdue flags unsettled invoices whose due date has passed.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkOverdue(ctx, today(s.now()))
	if err != nil {
		return 0, fmt.Errorf("sweep overdue invoices: %w", err)
	}
	s.recorder.OverdueMarked(n)
	if n > 0 {
		s.invalidator.Invalidate(ctx)
	}
	return n, nil
}

// InvoicePDF renders the invoice with its line items and payment history.
func (s *Service) InvoicePDF(ctx context.Context, id int64) ([]byte, string, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := s.repo.DocumentData(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("load invoice document: %w", err)
	}
	payments, err := s.repo.Payments(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("load payments: %w", err)
	}

	doc := documents.Invoice{
		CompanyName:   s.companyName,
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.CreatedAt,
		DueDate:       inv.DueDate,
		ClientName:    data.ClientName,
		Status:        string(inv.PaymentStatus),
		Total:         inv.TotalAmount,
		Paid:          inv.PaidAmount,
		Due:           inv.DueAmount,
	}
	for _, l := range data.Lines {
		doc.Lines = append(doc.Lines, documents.InvoiceLine{Service: l.Service, Units: l.Units, UnitPrice: l.UnitPrice, Total: l.Total})
	}
	for _, p := range payments {
		doc.Payments = append(doc.Payments, documents.PaymentLine{
			Date:      p.PaymentDate,
			Method:    string(p.PaymentMethod),
			Reference: deref(p.ReferenceNo),
			Amount:    p.Amount,
		})
	}
	pdf, err := s.docs.Render(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	return pdf, doc.Filename(), nil
}

// VoucherPDF renders the receipt for a single payment.
func (s *Service) VoucherPDF(ctx context.Context, paymentID int64) ([]byte, string, error) {
	v, err := s.repo.Voucher(ctx, paymentID)
	if err != nil {
		return nil, "", err
	}
	doc := documents.Voucher{
		CompanyName:   s.companyName,
		ReceiptNumber: v.Payment.ReceiptNumber,
		InvoiceNumber: v.InvoiceNumber,
		ClientName:    v.ClientName,
		PaymentDate:   v.Payment.PaymentDate,
		Method:        string(v.Payment.PaymentMethod),
		Reference:     deref(v.Payment.ReferenceNo),
		Amount:        v.Payment.Amount,
	}
	pdf, err := s.docs.Render(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	return pdf, doc.Filename(), nil
}

func (s *Service) audit(ctx context.Context, action string, id int64, meta map[string]any) {
	if err := s.auditor.Record(ctx, shared.AuditLog{Action: action, Entity: "invoice", EntityID: id, Meta: meta}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Int64("invoice_id", id), slog.Any("error", err))
	}
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
