package quotations

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voyageos/voyageos/internal/billing/invoices"
	"github.com/voyageos/voyageos/internal/platform/db"
	"github.com/voyageos/voyageos/internal/platform/httpx"
	"github.com/voyageos/voyageos/internal/sales/pricing"
	"github.com/voyageos/voyageos/internal/shared"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	ClientExists(ctx context.Context, id int64) (bool, error)
	ServiceExists(ctx context.Context, id int64) (bool, error)
	VendorExists(ctx context.Context, id int64) (bool, error)
	NextNumber(ctx context.Context) (string, error)
	Insert(ctx context.Context, q Quotation) (Quotation, error)
	InsertItem(ctx context.Context, item Item) (Item, error)
	Items(ctx context.Context, quotationID int64) ([]Item, error)
	UpdateTotals(ctx context.Context, id int64, totals pricing.Totals) error
	Get(ctx context.Context, id int64) (Quotation, error)
	GetForUpdate(ctx context.Context, id int64) (Quotation, error)
	List(ctx context.Context, filter Filter) ([]Quotation, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	HasInvoice(ctx context.Context, id int64) (bool, error)
	CreateInvoice(ctx context.Context, seed invoices.Seed) (invoices.Invoice, error)
	SoftDelete(ctx context.Context, id int64, actor, reason string, at time.Time) error
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, query, id).Scan(&ok)
	return ok, err
}

func (r *repository) ClientExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, id)
}

func (r *repository) ServiceExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM services WHERE id = $1)`, id)
}

func (r *repository) VendorExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM vendors WHERE id = $1)`, id)
}

func (r *repository) HasInvoice(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE quotation_id = $1)`, id)
}

func (r *repository) NextNumber(ctx context.Context) (string, error) {
	return shared.NextQuotationNumber(ctx, r.db)
}

func (r *repository) Insert(ctx context.Context, q Quotation) (Quotation, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (quotation_number, client_id, total_cost, total_sell, total_profit, margin_percentage,
			default_margin_percentage, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		q.QuotationNumber, q.ClientID, q.TotalCost, q.TotalSell, q.TotalProfit, q.MarginPercentage,
		q.BaseMargin, q.Status,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return Quotation{}, fmt.Errorf("insert quotation: %w", err)
	}
	return q, nil
}

func (r *repository) InsertItem(ctx context.Context, item Item) (Item, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotation_items (quotation_id, service_id, vendor_id, quantity, start_date, end_date,
			manual_margin_percentage, cost_price, sell_price, total_cost, total_sell)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		item.QuotationID, item.ServiceID, item.VendorID, item.Quantity, item.StartDate, item.EndDate,
		item.ManualMarginPercentage, item.CostPrice, item.SellPrice, item.TotalCost, item.TotalSell,
	).Scan(&item.ID)
	if err != nil {
		return Item{}, fmt.Errorf("insert quotation item: %w", err)
	}
	return item, nil
}

func (r *repository) Items(ctx context.Context, quotationID int64) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT qi.id, qi.quotation_id, qi.service_id, qi.vendor_id, qi.quantity, qi.start_date, qi.end_date,
		       qi.manual_margin_percentage, qi.cost_price, qi.sell_price, qi.total_cost, qi.total_sell,
		       s.name, s.category, s.itinerary_text, ci.name, co.name, v.name
		FROM quotation_items qi
		JOIN services s ON s.id = qi.service_id
		JOIN cities ci ON ci.id = s.city_id
		JOIN countries co ON co.id = ci.country_id
		LEFT JOIN vendors v ON v.id = qi.vendor_id
		WHERE qi.quotation_id = $1
		ORDER BY qi.id ASC`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.QuotationID, &it.ServiceID, &it.VendorID, &it.Quantity, &it.StartDate, &it.EndDate,
			&it.ManualMarginPercentage, &it.CostPrice, &it.SellPrice, &it.TotalCost, &it.TotalSell,
			&it.Service.Name, &it.Service.Category, &it.Service.ItineraryText, &it.Service.City, &it.Service.Country,
			&it.VendorName); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repository) UpdateTotals(ctx context.Context, id int64, totals pricing.Totals) error {
	_, err := r.db.Exec(ctx, `
		UPDATE quotations
		SET total_cost = $2, total_sell = $3, total_profit = $4, margin_percentage = $5, updated_at = NOW()
		WHERE id = $1`, id, totals.TotalCost, totals.TotalSell, totals.TotalProfit, totals.Margin)
	return err
}

const headerQuery = `
	SELECT q.id, q.quotation_number, q.client_id, q.total_cost, q.total_sell, q.total_profit,
	       q.margin_percentage, q.default_margin_percentage, q.status, q.created_at, c.company_name, c.email
	FROM quotations q
	JOIN clients c ON c.id = q.client_id`

func scanHeader(row pgx.Row) (Quotation, error) {
	var q Quotation
	client := &ClientRef{}
	err := row.Scan(&q.ID, &q.QuotationNumber, &q.ClientID, &q.TotalCost, &q.TotalSell, &q.TotalProfit,
		&q.MarginPercentage, &q.BaseMargin, &q.Status, &q.CreatedAt, &client.CompanyName, &client.Email)
	client.ID = q.ClientID
	q.Client = client
	q.Items = []Item{}
	return q, err
}

func (r *repository) header(ctx context.Context, id int64, lock bool) (Quotation, error) {
	query := headerQuery + ` WHERE q.id = $1 AND NOT q.is_deleted`
	if lock {
		query += ` FOR UPDATE OF q`
	}
	q, err := scanHeader(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Quotation{}, fmt.Errorf("quotation %d: %w", id, httpx.ErrNotFound)
	}
	return q, err
}

func (r *repository) Get(ctx context.Context, id int64) (Quotation, error) {
	q, err := r.header(ctx, id, false)
	if err != nil {
		return Quotation{}, err
	}
	if q.Items, err = r.Items(ctx, id); err != nil {
		return Quotation{}, err
	}
	return q, nil
}

func (r *repository) GetForUpdate(ctx context.Context, id int64) (Quotation, error) {
	return r.header(ctx, id, true)
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Quotation, error) {
	where := []string{"NOT q.is_deleted"}
	var args []any
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where = append(where, "q.client_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, "q.status = $"+strconv.Itoa(len(args)))
	}
	query := headerQuery + " WHERE " + strings.Join(where, " AND ") + " ORDER BY q.created_at DESC, q.id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Quotation{}
	for rows.Next() {
		q, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	_, err := r.db.Exec(ctx, `UPDATE quotations SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repository) CreateInvoice(ctx context.Context, seed invoices.Seed) (invoices.Invoice, error) {
	return invoices.InsertForQuotation(ctx, r.db, seed)
}

func (r *repository) SoftDelete(ctx context.Context, id int64, actor, reason string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations
		SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, delete_reason = $4, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted`, id, at, actor, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quotation %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}
