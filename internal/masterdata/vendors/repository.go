package vendors

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
	Create(ctx context.Context, v Vendor) (Vendor, error)
	List(ctx context.Context) ([]Vendor, error)
	Get(ctx context.Context, id int64) (Vendor, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const vendorColumns = `id, name, vendor_type, contact_person, phone, email, address, created_at`

func scanVendor(row pgx.Row) (Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.Name, &v.VendorType, &v.ContactPerson, &v.Phone, &v.Email, &v.Address, &v.CreatedAt)
	v.Services = []ServiceRef{}
	return v, err
}

func (r *repository) Create(ctx context.Context, v Vendor) (Vendor, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO vendors (name, vendor_type, contact_person, phone, email, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+vendorColumns,
		v.Name, v.VendorType, v.ContactPerson, v.Phone, v.Email, v.Address)
	created, err := scanVendor(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Vendor{}, fmt.Errorf("vendor %q already exists: %w", v.Name, httpx.ErrDuplicate)
		}
		return Vendor{}, err
	}
	return created, nil
}

func (r *repository) List(ctx context.Context) ([]Vendor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Vendor{}
	index := map[int64]int{}
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		index[v.ID] = len(out)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	svcRows, err := r.db.Query(ctx, `
		SELECT vs.vendor_id, s.id, s.name, s.category
		FROM vendor_services vs
		JOIN services s ON s.id = vs.service_id
		ORDER BY s.name ASC`)
	if err != nil {
		return nil, err
	}
	defer svcRows.Close()
	for svcRows.Next() {
		var vendorID int64
		var ref ServiceRef
		if err := svcRows.Scan(&vendorID, &ref.ID, &ref.Name, &ref.Category); err != nil {
			return nil, err
		}
		if i, ok := index[vendorID]; ok {
			out[i].Services = append(out[i].Services, ref)
		}
	}
	return out, svcRows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Vendor, error) {
	v, err := scanVendor(r.db.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Vendor{}, fmt.Errorf("vendor %d: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return Vendor{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.name, s.category
		FROM vendor_services vs
		JOIN services s ON s.id = vs.service_id
		WHERE vs.vendor_id = $1
		ORDER BY s.name ASC`, id)
	if err != nil {
		return Vendor{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref ServiceRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Category); err != nil {
			return Vendor{}, err
		}
		v.Services = append(v.Services, ref)
	}
	return v, rows.Err()
}

// Delete cascades to vendor_services; quotation items keep their rows with vendor cleared.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vendor %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}
