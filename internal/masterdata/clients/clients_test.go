package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

type memoryRepo struct {
	clients    map[int64]Client
	referenced map[int64]bool
	nextID     int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{clients: make(map[int64]Client), referenced: make(map[int64]bool)}
}

func (m *memoryRepo) Create(_ context.Context, c Client) (Client, error) {
	if c.Email != nil {
		for _, existing := range m.clients {
			if existing.Email != nil && *existing.Email == *c.Email {
				return Client{}, fmt.Errorf("email already registered: %w", httpx.ErrDuplicate)
			}
		}
	}
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.clients[c.ID] = c
	return c, nil
}

func (m *memoryRepo) List(context.Context) ([]Client, error) {
	out := []Client{}
	for id := int64(1); id <= m.nextID; id++ {
		if c, ok := m.clients[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return Client{}, fmt.Errorf("client %d: %w", id, httpx.ErrNotFound)
	}
	return c, nil
}

func (m *memoryRepo) HasQuotations(_ context.Context, id int64) (bool, error) {
	return m.referenced[id], nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	delete(m.clients, id)
	return nil
}

func TestCreateClientNormalisesOptionalFields(t *testing.T) {
	svc := NewService(newMemoryRepo())

	c, err := svc.Create(context.Background(), CreateClientRequest{
		CompanyName: " Acme Travels ",
		Email:       "Ops@Acme.test",
	})
	require.NoError(t, err)
	require.Equal(t, "Acme Travels", c.CompanyName)
	require.NotNil(t, c.Email)
	require.Equal(t, "ops@acme.test", *c.Email)
	require.Nil(t, c.Phone)
	require.Nil(t, c.ContactPerson)
}

func TestCreateClientDuplicateEmail(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateClientRequest{CompanyName: "A", Email: "a@x.test"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateClientRequest{CompanyName: "B", Email: "a@x.test"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)

	// clients without email never collide
	_, err = svc.Create(ctx, CreateClientRequest{CompanyName: "C"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateClientRequest{CompanyName: "D"})
	require.NoError(t, err)
}

func TestDeleteClientReferencedByQuotation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateClientRequest{CompanyName: "Acme"})
	require.NoError(t, err)
	repo.referenced[c.ID] = true

	require.ErrorIs(t, svc.Delete(ctx, c.ID), httpx.ErrInvalidState)
	_, err = svc.Get(ctx, c.ID)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, 404), httpx.ErrNotFound)

	repo.referenced[c.ID] = false
	require.NoError(t, svc.Delete(ctx, c.ID))
	_, err = svc.Get(ctx, c.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestClientHandlers(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, NewService(newMemoryRepo())).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients/", strings.NewReader(`{"company_name":"Acme","email":"not-an-email"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"email":"email"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients/", strings.NewReader(`{"company_name":"Acme","email":"ops@acme.test"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"company_name":"Acme"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/2", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/clients/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
