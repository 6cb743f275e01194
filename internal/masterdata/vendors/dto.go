package vendors

type CreateVendorRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	VendorType    string `json:"vendor_type" validate:"omitempty,max=80"`
	ContactPerson string `json:"contact_person" validate:"omitempty,max=200"`
	Phone         string `json:"phone" validate:"omitempty,max=50"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address"`
}
