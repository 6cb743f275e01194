// Package services holds the sellable travel services (hotels, tours,
// transfers and the like) and the vendors able to supply them.
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

type Category string

const (
	CategoryHotel    Category = "HOTEL"
	CategoryTour     Category = "TOUR"
	CategoryTransfer Category = "TRANSFER"
	CategoryVisa     Category = "VISA"
	CategoryTicket   Category = "TICKET"
	CategoryOther    Category = "OTHER"
)

var categories = []Category{
	CategoryHotel, CategoryTour, CategoryTransfer, CategoryVisa, CategoryTicket, CategoryOther,
}

// ParseCategory accepts only the enumerated category names.
func ParseCategory(raw string) (Category, error) {
	for _, c := range categories {
		if string(c) == raw {
			return c, nil
		}
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return "", fmt.Errorf("invalid category %q, expected one of %s: %w", raw, strings.Join(names, ", "), httpx.ErrValidation)
}

type Service struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Category      Category    `json:"category"`
	CityID        int64       `json:"city_id"`
	City          CityRef     `json:"city"`
	ItineraryText *string     `json:"itinerary_text"`
	CreatedAt     time.Time   `json:"created_at"`
	Vendors       []VendorRef `json:"vendors"`
}

type CityRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type VendorRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Filter struct {
	CityID   *int64
	Category *Category
	ByName   bool
}
