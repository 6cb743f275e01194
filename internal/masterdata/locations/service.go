package locations

import (
	"context"
	"fmt"
	"strings"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCountry(ctx context.Context, req CreateCountryRequest) (Country, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Country{}, fmt.Errorf("country name is required: %w", httpx.ErrValidation)
	}
	return s.repo.CreateCountry(ctx, name)
}

func (s *Service) ListCountries(ctx context.Context) ([]Country, error) {
	return s.repo.ListCountries(ctx)
}

// CreateCity validates the parent country before inserting so a missing
// country surfaces as not found rather than a constraint error.
func (s *Service) CreateCity(ctx context.Context, req CreateCityRequest) (City, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return City{}, fmt.Errorf("city name is required: %w", httpx.ErrValidation)
	}
	if _, err := s.repo.GetCountry(ctx, req.CountryID); err != nil {
		return City{}, fmt.Errorf("create city: %w", err)
	}
	return s.repo.CreateCity(ctx, name, req.CountryID)
}

func (s *Service) ListCities(ctx context.Context) ([]City, error) {
	return s.repo.ListCities(ctx, nil)
}

func (s *Service) CitiesByCountry(ctx context.Context, countryID int64) ([]City, error) {
	return s.repo.ListCities(ctx, &countryID)
}
