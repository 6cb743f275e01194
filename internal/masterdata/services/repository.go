package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voyageos/voyageos/internal/platform/db"
	"github.com/voyageos/voyageos/internal/platform/httpx"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	CityExists(ctx context.Context, id int64) (bool, error)
	VendorExists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, svc Service) (Service, error)
	LinkVendor(ctx context.Context, serviceID, vendorID int64) error
	List(ctx context.Context, filter Filter) ([]Service, error)
	Exists(ctx context.Context, id int64) (bool, error)
	UsedByQuotations(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
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

func (r *repository) CityExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM cities WHERE id = $1)`, id)
}

func (r *repository) VendorExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM vendors WHERE id = $1)`, id)
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM services WHERE id = $1)`, id)
}

func (r *repository) UsedByQuotations(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM quotation_items WHERE service_id = $1)`, id)
}

func (r *repository) Create(ctx context.Context, svc Service) (Service, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO services (name, category, city_id, itinerary_text)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		svc.Name, string(svc.Category), svc.CityID, svc.ItineraryText,
	).Scan(&svc.ID, &svc.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Service{}, fmt.Errorf("service %q already exists for this city and category: %w", svc.Name, httpx.ErrDuplicate)
		}
		return Service{}, err
	}
	err = r.db.QueryRow(ctx, `
		SELECT ci.id, ci.name, co.name
		FROM cities ci JOIN countries co ON co.id = ci.country_id
		WHERE ci.id = $1`, svc.CityID).Scan(&svc.City.ID, &svc.City.Name, &svc.City.Country)
	if err != nil {
		return Service{}, err
	}
	svc.Vendors = []VendorRef{}
	return svc, nil
}

func (r *repository) LinkVendor(ctx context.Context, serviceID, vendorID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO vendor_services (vendor_id, service_id) VALUES ($1, $2)
		ON CONFLICT (vendor_id, service_id) DO NOTHING`, vendorID, serviceID)
	return err
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Service, error) {
	var (
		where []string
		args  []any
	)
	if filter.CityID != nil {
		args = append(args, *filter.CityID)
		where = append(where, "s.city_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		where = append(where, "s.category = $"+strconv.Itoa(len(args)))
	}

	query := `
		SELECT s.id, s.name, s.category, s.city_id, s.itinerary_text, s.created_at,
		       ci.id, ci.name, co.name
		FROM services s
		JOIN cities ci ON ci.id = s.city_id
		JOIN countries co ON co.id = ci.country_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.ByName {
		query += " ORDER BY s.name ASC, s.id ASC"
	} else {
		query += " ORDER BY s.id ASC"
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Service{}
	index := map[int64]int{}
	for rows.Next() {
		var s Service
		var category string
		if err := rows.Scan(&s.ID, &s.Name, &category, &s.CityID, &s.ItineraryText, &s.CreatedAt,
			&s.City.ID, &s.City.Name, &s.City.Country); err != nil {
			return nil, err
		}
		s.Category = Category(category)
		s.Vendors = []VendorRef{}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil || len(out) == 0 {
		return out, err
	}

	ids := make([]int64, 0, len(out))
	for _, s := range out {
		ids = append(ids, s.ID)
	}
	vendorRows, err := r.db.Query(ctx, `
		SELECT vs.service_id, v.id, v.name
		FROM vendor_services vs JOIN vendors v ON v.id = vs.vendor_id
		WHERE vs.service_id = ANY($1)
		ORDER BY v.name ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer vendorRows.Close()
	for vendorRows.Next() {
		var serviceID int64
		var ref VendorRef
		if err := vendorRows.Scan(&serviceID, &ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		out[index[serviceID]].Vendors = append(out[index[serviceID]].Vendors, ref)
	}
	return out, vendorRows.Err()
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("service %d is used in quotations: %w", id, httpx.ErrInvalidState)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("service %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}
