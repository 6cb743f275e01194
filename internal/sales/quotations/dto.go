package quotations

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type ItemInput struct {
	ServiceID              int64            `json:"service_id" validate:"required,gt=0"`
	VendorID               *int64           `json:"vendor_id" validate:"omitempty,gt=0"`
	Quantity               int              `json:"quantity" validate:"required,gt=0"`
	StartDate              pgtype.Date      `json:"start_date"`
	EndDate                pgtype.Date      `json:"end_date"`
	ManualMarginPercentage *decimal.Decimal `json:"manual_margin_percentage"`
	CostPrice              decimal.Decimal  `json:"cost_price" validate:"gte=0"`
}

type CreateQuotationRequest struct {
	ClientID         int64            `json:"client_id" validate:"required,gt=0"`
	MarginPercentage *decimal.Decimal `json:"margin_percentage"`
	Items            []ItemInput      `json:"items" validate:"dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type DeleteRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
