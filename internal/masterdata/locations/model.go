// Package locations manages the country and city catalogue that services are
// attached to.
package locations

// Country is a destination country.
type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// City belongs to exactly one country.
type City struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	CountryID int64   `json:"country_id"`
	Country   Country `json:"country"`
}
