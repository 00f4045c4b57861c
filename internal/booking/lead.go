package booking

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"doorstep/internal/pricing"
	"doorstep/pkg/api"

	"github.com/google/uuid"
)

const LeadSource = "web"

// FieldError names one invalid field of a booking.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CustomerDetails is what the details step collects.
type CustomerDetails struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	VehicleModel  string `json:"vehicleModel"`
	Address       string `json:"address"`
	Pincode       string `json:"pincode"`
	PreferredDate string `json:"preferredDate,omitempty"`
}

// NewLeadRequest assembles the lead payload and attaches the estimate.
// requestID lets the lead API drop resubmissions of the same booking; a new
// one is generated when it is empty.
func NewLeadRequest(
	requestID string,
	d CustomerDetails,
	vehicle pricing.VehicleType,
	city pricing.City,
	serviceIDs, addonIDs []string,
	est pricing.Estimate,
) api.LeadRequest {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return api.LeadRequest{
		RequestID:      requestID,
		Name:           strings.TrimSpace(d.Name),
		Phone:          NormalizePhoneNumber(d.Phone),
		Email:          strings.TrimSpace(d.Email),
		VehicleType:    string(vehicle),
		VehicleModel:   strings.TrimSpace(d.VehicleModel),
		City:           string(city),
		Address:        strings.TrimSpace(d.Address),
		Pincode:        strings.TrimSpace(d.Pincode),
		PreferredDate:  d.PreferredDate,
		Services:       append([]string{}, serviceIDs...),
		Addons:         append([]string{}, addonIDs...),
		EstTotal:       api.Range{Min: est.Total.Min, Max: est.Total.Max},
		DoorstepCharge: est.DoorstepCharge,
		Source:         LeadSource,
	}
}

// ValidateLead checks every field and returns all problems joined.
func ValidateLead(req api.LeadRequest, now time.Time) error {
	var errs []error
	bad := func(field, msg string) {
		errs = append(errs, &FieldError{Field: field, Message: msg})
	}

	if len([]rune(req.Name)) < 2 {
		bad("name", "at least 2 characters")
	}
	if !IsValidPhoneNumber(req.Phone) {
		bad("phone", "enter a valid 10-digit mobile number")
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			bad("email", "invalid email address")
		}
	}
	if _, err := pricing.ParseVehicleType(req.VehicleType); err != nil {
		bad("vehicleType", err.Error())
	}
	if req.VehicleModel == "" {
		bad("vehicleModel", "required")
	}
	if req.City == "" {
		bad("city", "required")
	}
	if len([]rune(req.Address)) < 5 {
		bad("address", "at least 5 characters")
	}
	if !IsValidPincode(req.Pincode) {
		bad("pincode", "must be 6 digits")
	}
	if err := ValidatePreferredDate(req.PreferredDate, now); err != nil {
		bad("preferredDate", err.Error())
	}
	if len(req.Services) == 0 {
		bad("services", "select at least one service")
	}
	if req.EstTotal.Min > req.EstTotal.Max {
		bad("estTotal", "min exceeds max")
	}

	return errors.Join(errs...)
}

// ValidateWaitlist checks a waitlist signup for a city outside the service area.
func ValidateWaitlist(req api.WaitlistRequest) error {
	var errs []error
	if !IsValidPhoneNumber(req.Phone) {
		errs = append(errs, &FieldError{Field: "phone", Message: "enter a valid 10-digit mobile number"})
	}
	if strings.TrimSpace(req.City) == "" {
		errs = append(errs, &FieldError{Field: "city", Message: "required"})
	}
	return errors.Join(errs...)
}

// FieldErrors flattens a joined validation error into field -> message.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *FieldError:
			out[e.Field] = e.Message
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		default:
			var fe *FieldError
			if errors.As(err, &fe) {
				out[fe.Field] = fe.Message
			}
		}
	}
	walk(err)
	return out
}
