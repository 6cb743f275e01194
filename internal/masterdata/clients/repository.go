package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voyageos/voyageos/internal/platform/db"
	"github.com/voyageos/voyageos/internal/platform/httpx"
)

type Repository interface {
	Create(ctx context.Context, c Client) (Client, error)
	List(ctx context.Context) ([]Client, error)
	Get(ctx context.Context, id int64) (Client, error)
	HasQuotations(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const clientColumns = `id, company_name, contact_person, email, phone, address, created_at`

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.CompanyName, &c.ContactPerson, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
	return c, err
}

func (r *repository) Create(ctx context.Context, c Client) (Client, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO clients (company_name, contact_person, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+clientColumns,
		c.CompanyName, c.ContactPerson, c.Email, c.Phone, c.Address)
	created, err := scanClient(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Client{}, fmt.Errorf("email already registered: %w", httpx.ErrDuplicate)
		}
		return Client{}, err
	}
	return created, nil
}

func (r *repository) List(ctx context.Context) ([]Client, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, fmt.Errorf("client %d: %w", id, httpx.ErrNotFound)
	}
	return c, err
}

func (r *repository) HasQuotations(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quotations WHERE client_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("client %d is referenced by quotations or invoices: %w", id, httpx.ErrInvalidState)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}
