package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/voyageos/voyageos/internal/masterdata/clients"
	"github.com/voyageos/voyageos/internal/masterdata/locations"
	"github.com/voyageos/voyageos/internal/masterdata/services"
	"github.com/voyageos/voyageos/internal/masterdata/vendors"
	"github.com/voyageos/voyageos/internal/platform/db"
)

// Seeds demo master data through the same services the API uses. Accounts
// come from BOOTSTRAP_USERS at server start, never from here.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}
	ctx := context.Background()
	if err := db.Migrate(dsn); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	pool, err := db.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	places := locations.NewService(locations.NewRepository(pool))
	existing, err := places.ListCountries(ctx)
	if err != nil {
		log.Fatalf("list countries: %v", err)
	}
	if len(existing) > 0 {
		fmt.Println("✓ master data already present, nothing to do")
		return
	}

	fmt.Println("→ Seeding locations...")
	cities, err := seedLocations(ctx, places)
	if err != nil {
		log.Fatalf("seed locations: %v", err)
	}

	fmt.Println("→ Seeding vendors...")
	vendorSvc := vendors.NewService(vendors.NewRepository(pool))
	hotelier, err := vendorSvc.Create(ctx, vendors.CreateVendorRequest{Name: "Bosphorus Stays", VendorType: "Hotel", Email: "reservations@bosphorus.example"})
	if err != nil {
		log.Fatalf("seed vendors: %v", err)
	}
	operator, err := vendorSvc.Create(ctx, vendors.CreateVendorRequest{Name: "Anatolia Tours", VendorType: "Tour operator"})
	if err != nil {
		log.Fatalf("seed vendors: %v", err)
	}

	fmt.Println("→ Seeding services...")
	catalogue := services.NewManager(services.NewRepository(pool))
	entries := []services.CreateServiceRequest{
		{Name: "Grand Hotel Sultanahmet", Category: "HOTEL", CityID: cities["Istanbul"], ItineraryText: "Check in and evening at leisure.", VendorIDs: []int64{hotelier.ID}},
		{Name: "Bosphorus Dinner Cruise", Category: "TOUR", CityID: cities["Istanbul"], ItineraryText: "Dinner cruise along the Bosphorus.", VendorIDs: []int64{operator.ID}},
		{Name: "Cave Suites Goreme", Category: "HOTEL", CityID: cities["Cappadocia"], VendorIDs: []int64{hotelier.ID}},
		{Name: "Sunrise Balloon Flight", Category: "TOUR", CityID: cities["Cappadocia"], ItineraryText: "Hot air balloon over the fairy chimneys.", VendorIDs: []int64{operator.ID}},
		{Name: "Airport Transfer", Category: "TRANSFER", CityID: cities["Istanbul"]},
		{Name: "Dubai Tourist Visa", Category: "VISA", CityID: cities["Dubai"]},
	}
	for _, entry := range entries {
		if _, err := catalogue.Create(ctx, entry); err != nil {
			log.Fatalf("seed service %s: %v", entry.Name, err)
		}
	}

	fmt.Println("→ Seeding clients...")
	clientSvc := clients.NewService(clients.NewRepository(pool))
	if _, err := clientSvc.Create(ctx, clients.CreateClientRequest{
		CompanyName:   "Crescent Travels",
		ContactPerson: "Ayesha Khan",
		Email:         "bookings@crescent.example",
		Phone:         "+92 21 555 0100",
	}); err != nil {
		log.Fatalf("seed clients: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedLocations(ctx context.Context, svc *locations.Service) (map[string]int64, error) {
	catalogue := map[string][]string{
		"Turkey":               {"Istanbul", "Cappadocia"},
		"United Arab Emirates": {"Dubai"},
	}
	ids := map[string]int64{}
	for country, cities := range catalogue {
		c, err := svc.CreateCountry(ctx, locations.CreateCountryRequest{Name: country})
		if err != nil {
			return nil, err
		}
		for _, name := range cities {
			city, err := svc.CreateCity(ctx, locations.CreateCityRequest{Name: name, CountryID: c.ID})
			if err != nil {
				return nil, err
			}
			ids[name] = city.ID
		}
	}
	return ids, nil
}
