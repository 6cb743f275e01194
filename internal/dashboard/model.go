package dashboard

import "github.com/shopspring/decimal"

// QuotationMetrics summarises the sales pipeline. Soft-deleted quotations are excluded.
type QuotationMetrics struct {
	TotalQuotations     int64           `json:"total_quotations"`
	ConfirmedQuotations int64           `json:"confirmed_quotations"`
	ConversionRate      decimal.Decimal `json:"conversion_rate_percentage"`
	TotalProfit         decimal.Decimal `json:"total_profit"`
}

// InvoiceMetrics summarises billing.
type InvoiceMetrics struct {
	TotalInvoices    int64           `json:"total_invoices"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

// Summary is the payload served by GET /dashboard.
type Summary struct {
	Quotations QuotationMetrics `json:"quotation_metrics"`
	Invoices   InvoiceMetrics   `json:"invoice_metrics"`
}

// MonthlyCash is the amount collected on invoices raised in one calendar month.
type MonthlyCash struct {
	Month  string          `json:"month"`
	CashIn decimal.Decimal `json:"cash_in"`
}

// AccountsSummary is the payload served by GET /accounts/summary.
type AccountsSummary struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalInvoices    int64           `json:"total_invoices"`
	MonthlyCashflow  []MonthlyCash   `json:"monthly_cashflow"`
}

var hundred = decimal.NewFromInt(100)

// ConversionRate returns confirmed/total as a percentage rounded to two places.
func ConversionRate(confirmed, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(confirmed).Mul(hundred).Div(decimal.NewFromInt(total)).Round(2)
}
