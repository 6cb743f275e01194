package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository runs the aggregate queries behind the dashboard.
type Repository interface {
	QuotationMetrics(ctx context.Context) (QuotationMetrics, error)
	InvoiceMetrics(ctx context.Context) (InvoiceMetrics, error)
	MonthlyCashflow(ctx context.Context) ([]MonthlyCash, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) QuotationMetrics(ctx context.Context) (QuotationMetrics, error) {
	var m QuotationMetrics
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'CONFIRMED'),
		       COALESCE(SUM(total_profit), 0)
		FROM quotations
		WHERE NOT is_deleted`).Scan(&m.TotalQuotations, &m.ConfirmedQuotations, &m.TotalProfit)
	if err != nil {
		return QuotationMetrics{}, err
	}
	m.ConversionRate = ConversionRate(m.ConfirmedQuotations, m.TotalQuotations)
	return m, nil
}

func (r *repository) InvoiceMetrics(ctx context.Context) (InvoiceMetrics, error) {
	var m InvoiceMetrics
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_amount), 0),
		       COALESCE(SUM(paid_amount), 0),
		       COALESCE(SUM(due_amount), 0)
		FROM invoices`).Scan(&m.TotalInvoices, &m.TotalRevenue, &m.TotalPaid, &m.TotalOutstanding)
	return m, err
}

func (r *repository) MonthlyCashflow(ctx context.Context) ([]MonthlyCash, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'Mon YYYY'),
		       COALESCE(SUM(paid_amount), 0)
		FROM invoices
		GROUP BY date_trunc('month', created_at)
		ORDER BY date_trunc('month', created_at)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MonthlyCash{}
	for rows.Next() {
		var (
			month  string
			cashIn decimal.Decimal
		)
		if err := rows.Scan(&month, &cashIn); err != nil {
			return nil, err
		}
		out = append(out, MonthlyCash{Month: month, CashIn: cashIn})
	}
	return out, rows.Err()
}
