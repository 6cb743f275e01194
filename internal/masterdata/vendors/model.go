// Package vendors stores suppliers and the services they provide.
package vendors

import "time"

type Vendor struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	VendorType    *string      `json:"vendor_type"`
	ContactPerson *string      `json:"contact_person"`
	Phone         *string      `json:"phone"`
	Email         *string      `json:"email"`
	Address       *string      `json:"address"`
	CreatedAt     time.Time    `json:"created_at"`
	Services      []ServiceRef `json:"services"`
}

// ServiceRef is the compact service view attached to a vendor.
type ServiceRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}
