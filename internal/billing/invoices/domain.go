// Package invoices bills confirmed quotations and tracks the payments made
// against them.
package invoices

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

// PaymentStatus enumerates invoice settlement states.
type PaymentStatus string

const (
	StatusUnpaid    PaymentStatus = "UNPAID"
	StatusPartial   PaymentStatus = "PARTIAL"
	StatusPaid      PaymentStatus = "PAID"
	StatusOverdue   PaymentStatus = "OVERDUE"
	StatusCancelled PaymentStatus = "CANCELLED"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCard         PaymentMethod = "CARD"
	MethodOnline       PaymentMethod = "ONLINE"
	MethodOther        PaymentMethod = "OTHER"
)

// ParsePaymentMethod defaults a blank method to CASH.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(raw); m {
	case "":
		return MethodCash, nil
	case MethodCash, MethodBankTransfer, MethodCard, MethodOnline, MethodOther:
		return m, nil
	}
	return "", fmt.Errorf("invalid payment method %q: %w", raw, httpx.ErrValidation)
}

// Invoice model.
type Invoice struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	QuotationID   int64           `json:"quotation_id"`
	ClientID      int64           `json:"client_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	DueAmount     decimal.Decimal `json:"due_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	DueDate       *time.Time      `json:"due_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Payment model.
type Payment struct {
	ID            int64           `json:"id"`
	ReceiptNumber string          `json:"receipt_number"`
	InvoiceID     int64           `json:"invoice_id"`
	PaymentDate   time.Time       `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ReferenceNo   *string         `json:"reference_no"`
	Notes         *string         `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ListedInvoice carries the payment sum used to re-reconcile a listed invoice.
type ListedInvoice struct {
	Invoice
	PaymentSum decimal.Decimal
}

// QuotationRef is the slice of a quotation needed to bill it.
type QuotationRef struct {
	ID        int64
	ClientID  int64
	TotalSell decimal.Decimal
	CreatedAt time.Time
}

// Seed describes a new invoice for a quotation.
type Seed struct {
	QuotationID int64
	ClientID    int64
	Total       decimal.Decimal
	IssuedAt    time.Time
	DueDays     int
}

// PaymentResult is returned after a payment is applied.
type PaymentResult struct {
	Invoice Invoice `json:"invoice"`
	Payment Payment `json:"payment"`
}

// Summary aggregates receivables for the payments overview.
type Summary struct {
	TotalCollected decimal.Decimal `json:"total_collected"`
	TotalDue       decimal.Decimal `json:"total_due"`
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`
}

// DocumentData holds what the invoice PDF needs beyond the invoice row.
type DocumentData struct {
	ClientName string
	Lines      []DocumentLine
}

type DocumentLine struct {
	Service   string
	Units     int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// VoucherData joins a payment with its invoice and client.
type VoucherData struct {
	Payment       Payment
	InvoiceNumber string
	ClientName    string
}
