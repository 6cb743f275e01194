// Package quotations builds priced travel quotations and moves them through
// the sales workflow up to invoicing.
package quotations

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DefaultMargin applies when a quotation is created without a margin.
var DefaultMargin = decimal.NewFromInt(25)

type Quotation struct {
	ID               int64            `json:"id"`
	QuotationNumber  string           `json:"quotation_number"`
	ClientID         int64            `json:"client_id"`
	Client           *ClientRef       `json:"client,omitempty"`
	TotalCost        decimal.Decimal  `json:"total_cost"`
	TotalSell        decimal.Decimal  `json:"total_sell"`
	TotalProfit      decimal.Decimal  `json:"total_profit"`
	MarginPercentage *decimal.Decimal `json:"margin_percentage"`
	// BaseMargin prices items without their own margin; MarginPercentage is the blended result.
	BaseMargin decimal.Decimal `json:"default_margin_percentage"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []Item          `json:"items"`
}

type ClientRef struct {
	ID          int64   `json:"id"`
	CompanyName string  `json:"company_name"`
	Email       *string `json:"email"`
}

type Item struct {
	ID                     int64            `json:"id"`
	QuotationID            int64            `json:"quotation_id"`
	ServiceID              int64            `json:"service_id"`
	VendorID               *int64           `json:"vendor_id"`
	Quantity               int              `json:"quantity"`
	StartDate              pgtype.Date      `json:"start_date"`
	EndDate                pgtype.Date      `json:"end_date"`
	ManualMarginPercentage *decimal.Decimal `json:"manual_margin_percentage"`
	CostPrice              decimal.Decimal  `json:"cost_price"`
	SellPrice              decimal.Decimal  `json:"sell_price"`
	TotalCost              decimal.Decimal  `json:"total_cost"`
	TotalSell              decimal.Decimal  `json:"total_sell"`
	Service                ServiceRef       `json:"service"`
	VendorName             *string          `json:"vendor_name"`
}

type ServiceRef struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	City          string  `json:"city"`
	Country       string  `json:"country"`
	ItineraryText *string `json:"itinerary_text"`
}

type Filter struct {
	ClientID *int64
	Status   *Status
}
