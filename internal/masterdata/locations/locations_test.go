package locations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

type memoryRepo struct {
	countries map[int64]Country
	cities    []City
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{countries: make(map[int64]Country)}
}

func (m *memoryRepo) CreateCountry(_ context.Context, name string) (Country, error) {
	for _, c := range m.countries {
		if c.Name == name {
			return Country{}, fmt.Errorf("country %q already exists: %w", name, httpx.ErrDuplicate)
		}
	}
	m.nextID++
	c := Country{ID: m.nextID, Name: name}
	m.countries[c.ID] = c
	return c, nil
}

func (m *memoryRepo) GetCountry(_ context.Context, id int64) (Country, error) {
	c, ok := m.countries[id]
	if !ok {
		return Country{}, fmt.Errorf("country %d: %w", id, httpx.ErrNotFound)
	}
	return c, nil
}

func (m *memoryRepo) ListCountries(context.Context) ([]Country, error) {
	out := make([]Country, 0, len(m.countries))
	for _, c := range m.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepo) CreateCity(_ context.Context, name string, countryID int64) (City, error) {
	m.nextID++
	c := City{ID: m.nextID, Name: name, CountryID: countryID, Country: m.countries[countryID]}
	m.cities = append(m.cities, c)
	return c, nil
}

func (m *memoryRepo) ListCities(_ context.Context, countryID *int64) ([]City, error) {
	out := []City{}
	for _, c := range m.cities {
		if countryID == nil || c.CountryID == *countryID {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestCreateCountryRejectsDuplicateName(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateCountry(ctx, CreateCountryRequest{Name: "Turkey"})
	require.NoError(t, err)

	_, err = svc.CreateCountry(ctx, CreateCountryRequest{Name: "Turkey"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateCityTrimsNameAndRequiresCountry(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateCity(ctx, CreateCityRequest{Name: "Istanbul", CountryID: 99})
	require.True(t, errors.Is(err, httpx.ErrNotFound))

	country, err := svc.CreateCountry(ctx, CreateCountryRequest{Name: "Turkey"})
	require.NoError(t, err)

	city, err := svc.CreateCity(ctx, CreateCityRequest{Name: "  Istanbul ", CountryID: country.ID})
	require.NoError(t, err)
	require.Equal(t, "Istanbul", city.Name)
	require.Equal(t, "Turkey", city.Country.Name)

	_, err = svc.CreateCity(ctx, CreateCityRequest{Name: "   ", CountryID: country.ID})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCitiesByCountryFilters(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	tr, _ := svc.CreateCountry(ctx, CreateCountryRequest{Name: "Turkey"})
	ae, _ := svc.CreateCountry(ctx, CreateCountryRequest{Name: "UAE"})
	_, _ = svc.CreateCity(ctx, CreateCityRequest{Name: "Istanbul", CountryID: tr.ID})
	_, _ = svc.CreateCity(ctx, CreateCityRequest{Name: "Dubai", CountryID: ae.ID})

	cities, err := svc.CitiesByCountry(ctx, ae.ID)
	require.NoError(t, err)
	require.Len(t, cities, 1)
	require.Equal(t, "Dubai", cities[0].Name)

	all, err := svc.ListCities(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func newTestRouter() (*chi.Mux, *memoryRepo) {
	repo := newMemoryRepo()
	r := chi.NewRouter()
	NewHandler(nil, NewService(repo)).MountRoutes(r)
	return r, repo
}

func TestHandlerCountryLifecycle(t *testing.T) {
	r, _ := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/countries", strings.NewReader(`{"name":"Turkey"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"Turkey"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/countries", strings.NewReader(`{"name":"Turkey"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/countries", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"required"`)
}

func TestHandlerCityUnknownCountryIsNotFound(t *testing.T) {
	r, _ := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cities", strings.NewReader(`{"name":"Lahore","country_id":7}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cities/by-country/abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
