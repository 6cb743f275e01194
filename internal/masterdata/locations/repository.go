package locations

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
	CreateCountry(ctx context.Context, name string) (Country, error)
	GetCountry(ctx context.Context, id int64) (Country, error)
	ListCountries(ctx context.Context) ([]Country, error)
	CreateCity(ctx context.Context, name string, countryID int64) (City, error)
	ListCities(ctx context.Context, countryID *int64) ([]City, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) CreateCountry(ctx context.Context, name string) (Country, error) {
	c := Country{Name: name}
	err := r.db.QueryRow(ctx, `INSERT INTO countries (name) VALUES ($1) RETURNING id`, name).Scan(&c.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Country{}, fmt.Errorf("country %q already exists: %w", name, httpx.ErrDuplicate)
		}
		return Country{}, err
	}
	return c, nil
}

func (r *repository) GetCountry(ctx context.Context, id int64) (Country, error) {
	var c Country
	err := r.db.QueryRow(ctx, `SELECT id, name FROM countries WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Country{}, fmt.Errorf("country %d: %w", id, httpx.ErrNotFound)
	}
	return c, err
}

func (r *repository) ListCountries(ctx context.Context) ([]Country, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM countries ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Country{}
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) CreateCity(ctx context.Context, name string, countryID int64) (City, error) {
	city := City{Name: name, CountryID: countryID}
	err := r.db.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO cities (name, country_id) VALUES ($1, $2) RETURNING id, country_id
		)
		SELECT i.id, c.id, c.name FROM inserted i JOIN countries c ON c.id = i.country_id
	`, name, countryID).Scan(&city.ID, &city.Country.ID, &city.Country.Name)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return City{}, fmt.Errorf("country %d: %w", countryID, httpx.ErrNotFound)
		}
		return City{}, err
	}
	return city, nil
}

func (r *repository) ListCities(ctx context.Context, countryID *int64) ([]City, error) {
	query := `
		SELECT ci.id, ci.name, ci.country_id, co.name
		FROM cities ci
		JOIN countries co ON co.id = ci.country_id`
	var args []any
	if countryID != nil {
		query += ` WHERE ci.country_id = $1`
		args = append(args, *countryID)
	}
	query += ` ORDER BY ci.name ASC, ci.id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []City{}
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.Name, &c.CountryID, &c.Country.Name); err != nil {
			return nil, err
		}
		c.Country.ID = c.CountryID
		out = append(out, c)
	}
	return out, rows.Err()
}
