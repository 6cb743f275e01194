package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

type memoryRepo struct {
	vendors []Vendor
}

func (m *memoryRepo) Create(_ context.Context, v Vendor) (Vendor, error) {
	for _, existing := range m.vendors {
		if existing.Name == v.Name {
			return Vendor{}, fmt.Errorf("vendor %q already exists: %w", v.Name, httpx.ErrDuplicate)
		}
	}
	v.ID = int64(len(m.vendors) + 1)
	v.Services = []ServiceRef{}
	m.vendors = append(m.vendors, v)
	return v, nil
}

func (m *memoryRepo) List(context.Context) ([]Vendor, error) {
	return append([]Vendor{}, m.vendors...), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Vendor, error) {
	for _, v := range m.vendors {
		if v.ID == id {
			return v, nil
		}
	}
	return Vendor{}, fmt.Errorf("vendor %d: %w", id, httpx.ErrNotFound)
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	for i, v := range m.vendors {
		if v.ID == id {
			m.vendors = append(m.vendors[:i], m.vendors[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("vendor %d: %w", id, httpx.ErrNotFound)
}

func TestCreateVendorDuplicateName(t *testing.T) {
	svc := NewService(&memoryRepo{})
	ctx := context.Background()

	v, err := svc.Create(ctx, CreateVendorRequest{Name: " Hilton ", VendorType: "HOTEL"})
	require.NoError(t, err)
	require.Equal(t, "Hilton", v.Name)
	require.Equal(t, "HOTEL", *v.VendorType)

	_, err = svc.Create(ctx, CreateVendorRequest{Name: "Hilton"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestVendorHandlers(t *testing.T) {
	repo := &memoryRepo{}
	r := chi.NewRouter()
	NewHandler(nil, NewService(repo)).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/vendors/", strings.NewReader(`{"name":"Skyline Tours"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/vendors/", strings.NewReader(`{"name":"Skyline Tours"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	repo.vendors[0].Services = append(repo.vendors[0].Services, ServiceRef{ID: 3, Name: "City Tour", Category: "TOUR"})

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vendors/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Vendor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	require.Equal(t, []ServiceRef{{ID: 3, Name: "City Tour", Category: "TOUR"}}, listed[0].Services)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/vendors/9", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/vendors/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
