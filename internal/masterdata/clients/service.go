package clients

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

func (s *Service) Create(ctx context.Context, req CreateClientRequest) (Client, error) {
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return Client{}, fmt.Errorf("company name is required: %w", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, Client{
		CompanyName:   name,
		ContactPerson: optional(req.ContactPerson),
		Email:         optional(strings.ToLower(req.Email)),
		Phone:         optional(req.Phone),
		Address:       optional(req.Address),
	})
}

func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Client, error) {
	return s.repo.Get(ctx, id)
}

// Delete refuses to remove a client that any quotation still points at,
// soft-deleted ones included.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	used, err := s.repo.HasQuotations(ctx, id)
	if err != nil {
		return fmt.Errorf("check client quotations: %w", err)
	}
	if used {
		return fmt.Errorf("client %d has quotations: %w", id, httpx.ErrInvalidState)
	}
	return s.repo.Delete(ctx, id)
}

// optional maps blank strings to NULL.
func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
