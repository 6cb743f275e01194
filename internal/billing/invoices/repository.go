package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/voyageos/voyageos/internal/platform/db"
	"github.com/voyageos/voyageos/internal/platform/httpx"
	"github.com/voyageos/voyageos/internal/shared"
)

// Repository exposes invoice persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	ClaimIdempotencyKey(ctx context.Context, scope, key string) error
	Quotation(ctx context.Context, quotationID int64) (QuotationRef, error)
	Create(ctx context.Context, seed Seed) (Invoice, error)
	Get(ctx context.Context, id int64) (Invoice, error)
	GetForUpdate(ctx context.Context, id int64) (Invoice, error)
	ForQuotation(ctx context.Context, quotationID int64) (Invoice, error)
	List(ctx context.Context, quotationID *int64) ([]ListedInvoice, error)
	SaveBalance(ctx context.Context, id int64, paid, due decimal.Decimal, status PaymentStatus) error
	InsertPayment(ctx context.Context, p Payment) (Payment, error)
	SumPayments(ctx context.Context, invoiceID int64) (decimal.Decimal, error)
	Payments(ctx context.Context, invoiceID int64) ([]Payment, error)
	PaymentsForQuotation(ctx context.Context, quotationID int64) ([]Payment, error)
	Voucher(ctx context.Context, paymentID int64) (VoucherData, error)
	DocumentData(ctx context.Context, invoiceID int64) (DocumentData, error)
	Summary(ctx context.Context, today time.Time) (Summary, error)
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

// NewRepository creates a new invoice repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) ClaimIdempotencyKey(ctx context.Context, scope, key string) error {
	err := shared.ClaimIdempotencyKey(ctx, r.db, scope, key)
	if errors.Is(err, shared.ErrIdempotencyConflict) {
		return fmt.Errorf("idempotency key %q already used: %w", key, httpx.ErrDuplicate)
	}
	return err
}

func (r *repository) Quotation(ctx context.Context, quotationID int64) (QuotationRef, error) {
	var q QuotationRef
	err := r.db.QueryRow(ctx, `
		SELECT id, client_id, total_sell, created_at
		FROM quotations
		WHERE id = $1 AND NOT is_deleted`, quotationID).Scan(&q.ID, &q.ClientID, &q.TotalSell, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return QuotationRef{}, fmt.Errorf("quotation %d: %w", quotationID, httpx.ErrNotFound)
	}
	return q, err
}

func (r *repository) Create(ctx context.Context, seed Seed) (Invoice, error) {
	return InsertForQuotation(ctx, r.db, seed)
}

// InsertForQuotation numbers and inserts an UNPAID invoice for the full
// quotation total on conn, which may be a pool or an open transaction.
func InsertForQuotation(ctx context.Context, conn db.DBTX, seed Seed) (Invoice, error) {
	number, err := shared.NextInvoiceNumber(ctx, conn, seed.IssuedAt)
	if err != nil {
		return Invoice{}, err
	}
	due := DueDate(seed.IssuedAt, seed.DueDays)
	inv, err := scanInvoice(conn.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, quotation_id, client_id, total_amount, paid_amount, due_amount, payment_status, due_date, created_at)
		VALUES ($1, $2, $3, $4, 0, $4, $5, $6, $7)
		RETURNING `+invoiceColumns,
		number, seed.QuotationID, seed.ClientID, seed.Total, StatusUnpaid, due, seed.IssuedAt))
	if err != nil {
		if db.IsUniqueViolation(err) && db.ConstraintName(err) == "invoices_quotation_id_key" {
			return Invoice{}, fmt.Errorf("invoice already exists for quotation %d: %w", seed.QuotationID, httpx.ErrDuplicate)
		}
		return Invoice{}, fmt.Errorf("insert invoice: %w", err)
	}
	return inv, nil
}

const invoiceColumns = `id, invoice_number, quotation_id, client_id, total_amount, paid_amount, due_amount, payment_status, due_date, created_at`

func scanInvoice(row pgx.Row, extra ...any) (Invoice, error) {
	var inv Invoice
	dest := []any{&inv.ID, &inv.InvoiceNumber, &inv.QuotationID, &inv.ClientID, &inv.TotalAmount,
		&inv.PaidAmount, &inv.DueAmount, &inv.PaymentStatus, &inv.DueDate, &inv.CreatedAt}
	err := row.Scan(append(dest, extra...)...)
	return inv, err
}

func (r *repository) get(ctx context.Context, query string, arg int64, what string) (Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, fmt.Errorf("%s %d: %w", what, arg, httpx.ErrNotFound)
	}
	return inv, err
}

func (r *repository) Get(ctx context.Context, id int64) (Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id, "invoice")
}

func (r *repository) GetForUpdate(ctx context.Context, id int64) (Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id, "invoice")
}

func (r *repository) ForQuotation(ctx context.Context, quotationID int64) (Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE quotation_id = $1`, quotationID, "invoice for quotation")
}

func (r *repository) List(ctx context.Context, quotationID *int64) ([]ListedInvoice, error) {
	query := `
		SELECT ` + invoiceColumns + `,
		       COALESCE((SELECT SUM(p.amount) FROM invoice_payments p WHERE p.invoice_id = invoices.id), 0)
		FROM invoices`
	var args []any
	if quotationID != nil {
		query += ` WHERE quotation_id = $1`
		args = append(args, *quotationID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ListedInvoice{}
	for rows.Next() {
		var sum decimal.Decimal
		inv, err := scanInvoice(rows, &sum)
		if err != nil {
			return nil, err
		}
		out = append(out, ListedInvoice{Invoice: inv, PaymentSum: sum})
	}
	return out, rows.Err()
}

func (r *repository) SaveBalance(ctx context.Context, id int64, paid, due decimal.Decimal, status PaymentStatus) error {
	_, err := r.db.Exec(ctx, `
		UPDATE invoices
		SET paid_amount = $2, due_amount = $3, payment_status = $4, updated_at = NOW()
		WHERE id = $1`, id, paid, due, status)
	return err
}

const paymentColumns = `id, receipt_number, invoice_id, payment_date, amount, payment_method, reference_no, notes, created_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.ReceiptNumber, &p.InvoiceID, &p.PaymentDate, &p.Amount, &p.PaymentMethod,
		&p.ReferenceNo, &p.Notes, &p.CreatedAt)
	return p, err
}

func (r *repository) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	receipt, err := shared.NextReceiptNumber(ctx, r.db, p.PaymentDate)
	if err != nil {
		return Payment{}, err
	}
	return scanPayment(r.db.QueryRow(ctx, `
		INSERT INTO invoice_payments (receipt_number, invoice_id, payment_date, amount, payment_method, reference_no, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+paymentColumns,
		receipt, p.InvoiceID, p.PaymentDate, p.Amount, p.PaymentMethod, p.ReferenceNo, p.Notes))
}

func (r *repository) SumPayments(ctx context.Context, invoiceID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM invoice_payments WHERE invoice_id = $1`, invoiceID).Scan(&sum)
	return sum, err
}

func (r *repository) queryPayments(ctx context.Context, query string, arg int64) ([]Payment, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Payments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	return r.queryPayments(ctx, `
		SELECT `+paymentColumns+` FROM invoice_payments
		WHERE invoice_id = $1
		ORDER BY payment_date ASC, id ASC`, invoiceID)
}

func (r *repository) PaymentsForQuotation(ctx context.Context, quotationID int64) ([]Payment, error) {
	return r.queryPayments(ctx, `
		SELECT p.id, p.receipt_number, p.invoice_id, p.payment_date, p.amount, p.payment_method, p.reference_no, p.notes, p.created_at
		FROM invoice_payments p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE i.quotation_id = $1
		ORDER BY p.payment_date DESC, p.id DESC`, quotationID)
}

func (r *repository) Voucher(ctx context.Context, paymentID int64) (VoucherData, error) {
	var v VoucherData
	p := &v.Payment
	err := r.db.QueryRow(ctx, `
		SELECT p.id, p.receipt_number, p.invoice_id, p.payment_date, p.amount, p.payment_method, p.reference_no, p.notes, p.created_at,
		       i.invoice_number, c.company_name
		FROM invoice_payments p
		JOIN invoices i ON i.id = p.invoice_id
		JOIN clients c ON c.id = i.client_id
		WHERE p.id = $1`, paymentID).Scan(&p.ID, &p.ReceiptNumber, &p.InvoiceID, &p.PaymentDate, &p.Amount,
		&p.PaymentMethod, &p.ReferenceNo, &p.Notes, &p.CreatedAt, &v.InvoiceNumber, &v.ClientName)
	if errors.Is(err, pgx.ErrNoRows) {
		return VoucherData{}, fmt.Errorf("payment %d: %w", paymentID, httpx.ErrNotFound)
	}
	return v, err
}

func (r *repository) DocumentData(ctx context.Context, invoiceID int64) (DocumentData, error) {
	var data DocumentData
	var quotationID int64
	err := r.db.QueryRow(ctx, `
		SELECT c.company_name, i.quotation_id
		FROM invoices i JOIN clients c ON c.id = i.client_id
		WHERE i.id = $1`, invoiceID).Scan(&data.ClientName, &quotationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return DocumentData{}, fmt.Errorf("invoice %d: %w", invoiceID, httpx.ErrNotFound)
	}
	if err != nil {
		return DocumentData{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT s.name, qi.quantity, qi.sell_price, qi.total_sell
		FROM quotation_items qi JOIN services s ON s.id = qi.service_id
		WHERE qi.quotation_id = $1
		ORDER BY qi.id ASC`, quotationID)
	if err != nil {
		return DocumentData{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line DocumentLine
		if err := rows.Scan(&line.Service, &line.Units, &line.UnitPrice, &line.Total); err != nil {
			return DocumentData{}, err
		}
		data.Lines = append(data.Lines, line)
	}
	return data, rows.Err()
}

func (r *repository) Summary(ctx context.Context, today time.Time) (Summary, error) {
	var s Summary
	err := r.db.QueryRow(ctx, `
		SELECT
			COALESCE((SELECT SUM(amount) FROM invoice_payments), 0),
			COALESCE(SUM(due_amount) FILTER (WHERE payment_status <> 'CANCELLED'), 0),
			COALESCE(SUM(due_amount) FILTER (WHERE payment_status NOT IN ('CANCELLED', 'PAID')
				AND due_date < $1 AND due_amount > 0), 0)
		FROM invoices`, today).Scan(&s.TotalCollected, &s.TotalDue, &s.OverdueAmount)
	return s, err
}

func (r *repository) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices
		SET payment_status = 'OVERDUE', updated_at = NOW()
		WHERE payment_status IN ('UNPAID', 'PARTIAL')
		  AND due_date < $1
		  AND due_amount > 0`, today)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
