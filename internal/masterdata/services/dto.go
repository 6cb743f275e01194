package services

type CreateServiceRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Category      string  `json:"category" validate:"required"`
	CityID        int64   `json:"city_id" validate:"required,gt=0"`
	ItineraryText string  `json:"itinerary_text"`
	VendorIDs     []int64 `json:"vendor_ids" validate:"omitempty,dive,gt=0"`
}
