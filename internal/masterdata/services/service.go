package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

// Manager owns the service catalogue rules. It is not called Service to keep
// that name for the catalogue entry itself.
type Manager struct {
	repo Repository
}

func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo}
}

// Create inserts the service and its vendor links in one transaction.
func (m *Manager) Create(ctx context.Context, req CreateServiceRequest) (Service, error) {
	category, err := ParseCategory(req.Category)
	if err != nil {
		return Service{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Service{}, fmt.Errorf("service name is required: %w", httpx.ErrValidation)
	}

	var created Service
	err = m.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		ok, err := tx.CityExists(ctx, req.CityID)
		if err != nil {
			return fmt.Errorf("check city: %w", err)
		}
		if !ok {
			return fmt.Errorf("city %d: %w", req.CityID, httpx.ErrNotFound)
		}
		for _, vendorID := range req.VendorIDs {
			ok, err := tx.VendorExists(ctx, vendorID)
			if err != nil {
				return fmt.Errorf("check vendor: %w", err)
			}
			if !ok {
				return fmt.Errorf("vendor %d: %w", vendorID, httpx.ErrNotFound)
			}
		}

		svc := Service{Name: name, Category: category, CityID: req.CityID}
		if text := strings.TrimSpace(req.ItineraryText); text != "" {
			svc.ItineraryText = &text
		}
		created, err = tx.Create(ctx, svc)
		if err != nil {
			return err
		}
		seen := map[int64]bool{}
		for _, vendorID := range req.VendorIDs {
			if seen[vendorID] {
				continue
			}
			seen[vendorID] = true
			if err := tx.LinkVendor(ctx, created.ID, vendorID); err != nil {
				return fmt.Errorf("link vendor %d: %w", vendorID, err)
			}
		}
		return nil
	})
	if err != nil {
		return Service{}, err
	}
	return created, nil
}

func (m *Manager) List(ctx context.Context, filter Filter) ([]Service, error) {
	return m.repo.List(ctx, filter)
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	ok, err := m.repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check service: %w", err)
	}
	if !ok {
		return fmt.Errorf("service %d: %w", id, httpx.ErrNotFound)
	}
	used, err := m.repo.UsedByQuotations(ctx, id)
	if err != nil {
		return fmt.Errorf("check service usage: %w", err)
	}
	if used {
		return fmt.Errorf("service %d is used in quotations: %w", id, httpx.ErrInvalidState)
	}
	return m.repo.Delete(ctx, id)
}
