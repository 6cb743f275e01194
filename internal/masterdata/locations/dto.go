package locations

type CreateCountryRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type CreateCityRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	CountryID int64  `json:"country_id" validate:"required,gt=0"`
}
