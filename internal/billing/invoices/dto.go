package invoices

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type CreateInvoiceRequest struct {
	QuotationID int64 `json:"quotation_id" validate:"required,gt=0"`
}

type RecordPaymentRequest struct {
	PaidAmount      decimal.Decimal `json:"paid_amount" validate:"gt=0"`
	PaymentDate     pgtype.Date     `json:"payment_date"`
	PaymentMethod   string          `json:"payment_method" validate:"omitempty,oneof=CASH BANK_TRANSFER CARD ONLINE OTHER"`
	ReferenceNumber string          `json:"reference_number" validate:"omitempty,max=120"`
	Notes           string          `json:"notes"`
}

type QuotationPaymentRequest struct {
	QuotationID     int64           `json:"quotation_id" validate:"required,gt=0"`
	Amount          decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentMethod   string          `json:"payment_method" validate:"omitempty,oneof=CASH BANK_TRANSFER CARD ONLINE OTHER"`
	ReferenceNumber string          `json:"reference_number" validate:"omitempty,max=120"`
	Notes           string          `json:"notes"`
}

func (q QuotationPaymentRequest) toPayment() RecordPaymentRequest {
	return RecordPaymentRequest{
		PaidAmount:      q.Amount,
		PaymentMethod:   q.PaymentMethod,
		ReferenceNumber: q.ReferenceNumber,
		Notes:           q.Notes,
	}
}
