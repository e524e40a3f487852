package types

import "strings"

// Address is the immutable billing/shipping snapshot attached to an order.
// Stored as jsonb; once written it is never updated.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// Clone returns a value copy safe to mutate independently.
func (a Address) Clone() Address {
	return a
}

// IsZero reports whether no field has been populated.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.FirstName) == "" &&
		strings.TrimSpace(a.LastName) == "" &&
		strings.TrimSpace(a.Email) == "" &&
		strings.TrimSpace(a.Phone) == "" &&
		strings.TrimSpace(a.Address) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == "" &&
		strings.TrimSpace(a.Zip) == "" &&
		strings.TrimSpace(a.Country) == ""
}
