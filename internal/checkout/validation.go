package checkout

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hendrawijaya/shopfront-backend/pkg/types"
)

// Field bounds mirror the order schema's address columns.
const (
	maxNameLen   = 255
	maxStreetLen = 500
	maxZipLen    = 10
	maxEmailLen  = 255
	maxPhoneLen  = 20
)

var fieldValidator = validator.New()

// validateAddress appends one entry per violated field so a single response
// reports everything wrong with the submission at once. The billing address
// carries the order's contact details, so email and phone are checked there
// on top of the shared fields.
func validateAddress(prefix string, addr types.Address, contact bool, details map[string]string) {
	checkField(details, prefix+".firstName", addr.FirstName, maxNameLen)
	checkField(details, prefix+".lastName", addr.LastName, maxNameLen)
	checkField(details, prefix+".address", addr.Address, maxStreetLen)
	checkField(details, prefix+".city", addr.City, maxNameLen)
	checkField(details, prefix+".state", addr.State, maxNameLen)
	checkField(details, prefix+".zip", addr.Zip, maxZipLen)
	checkField(details, prefix+".country", addr.Country, maxNameLen)
	if !contact {
		return
	}
	if checkField(details, prefix+".email", addr.Email, maxEmailLen) {
		if fieldValidator.Var(addr.Email, "email") != nil {
			details[prefix+".email"] = "must be a valid email address"
		}
	}
	checkField(details, prefix+".phone", addr.Phone, maxPhoneLen)
}

// checkField records a detail for a blank or overlong value and reports
// whether the value passed both checks.
func checkField(details map[string]string, key, value string, max int) bool {
	if strings.TrimSpace(value) == "" {
		details[key] = "this field is required"
		return false
	}
	if len(value) > max {
		details[key] = fmt.Sprintf("must be at most %d characters", max)
		return false
	}
	return true
}
