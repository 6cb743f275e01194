package locations

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/countries", h.CreateCountry)
	r.Get("/countries", h.ListCountries)

	r.Post("/cities", h.CreateCity)
	r.Get("/cities", h.ListCities)
	r.Get("/cities/by-country/{countryID}", h.CitiesByCountry)
}
