package vendors

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

func (s *Service) Create(ctx context.Context, req CreateVendorRequest) (Vendor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Vendor{}, fmt.Errorf("vendor name is required: %w", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, Vendor{
		Name:          name,
		VendorType:    optional(req.VendorType),
		ContactPerson: optional(req.ContactPerson),
		Phone:         optional(req.Phone),
		Email:         optional(req.Email),
		Address:       optional(req.Address),
	})
}

func (s *Service) List(ctx context.Context) ([]Vendor, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Vendor, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
