package petcare

import "strings"

// Pet is a pet record as listed by GET /api/pets.
type Pet struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Species *string `json:"species,omitempty"`
}

// Service is a bookable service as listed by GET /api/services.
type Service struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	RequiresVeterinarian bool   `json:"requiresVeterinarian"`
}

// User is a staff account as listed by GET /api/admin/users.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role"`
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return strings.TrimSpace(u.Username)
}

// AppointmentPayload is the create/update body. AssignedToID and Note are always sent.
type AppointmentPayload struct {
	PetID         int64  `json:"petId"`
	ServiceID     int64  `json:"serviceId"`
	AssignedToID  *int64 `json:"assignedToId"`
	StartDateTime string `json:"startDateTime"`
	Note          string `json:"note"`
}

// Appointment is the persisted record returned by the backend.
type Appointment struct {
	ID            int64  `json:"id"`
	PetID         int64  `json:"petId"`
	ServiceID     int64  `json:"serviceId"`
	AssignedToID  *int64 `json:"assignedToId"`
	StartDateTime string `json:"startDateTime"`
	Note          string `json:"note"`
}

// CheckoutItem is one cart line in a checkout request.
type CheckoutItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is the POST /api/cart/checkout body.
type CheckoutRequest struct {
	PickupDate string         `json:"pickupDate"`
	Items      []CheckoutItem `json:"items"`
}

// CheckoutResponse reports whether the backend accepted the checkout.
type CheckoutResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// problem mirrors the RFC 7807 body the backend returns on errors.
type problem struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Status  int    `json:"status"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
}
