package cart

import (
	"errors"
	"sort"

	"doorstep/internal/pricing"
)

var ErrIncomplete = errors.New("vehicle type and city must be chosen before pricing")

// Selection is the cart a session is building. It is a plain value: callers
// own it and pass it to the pricing engine explicitly.
type Selection struct {
	VehicleType pricing.VehicleType `json:"vehicleType,omitempty"`
	City        pricing.City        `json:"city,omitempty"`
	ServiceIDs  []string            `json:"serviceIds"`
	AddonIDs    []string            `json:"addonIds"`
}

// ToggleService adds id if absent and removes it otherwise. It reports
// whether id is selected afterwards.
func (s *Selection) ToggleService(id string) bool {
	var on bool
	s.ServiceIDs, on = toggle(s.ServiceIDs, id)
	return on
}

func (s *Selection) ToggleAddon(id string) bool {
	var on bool
	s.AddonIDs, on = toggle(s.AddonIDs, id)
	return on
}

func (s *Selection) HasService(id string) bool { return contains(s.ServiceIDs, id) }

func (s *Selection) HasAddon(id string) bool { return contains(s.AddonIDs, id) }

// SetVehicle switches the vehicle type. Services are vehicle specific, so a
// change drops them; add-ons survive.
func (s *Selection) SetVehicle(v pricing.VehicleType) {
	if s.VehicleType != v {
		s.ServiceIDs = []string{}
	}
	s.VehicleType = v
}

func (s *Selection) SetCity(c pricing.City) {
	s.City = c
}

func (s *Selection) Clear() {
	*s = Selection{ServiceIDs: []string{}, AddonIDs: []string{}}
}

func (s *Selection) Empty() bool {
	return len(s.ServiceIDs) == 0 && len(s.AddonIDs) == 0
}

// Estimate prices the selection from scratch.
func (s Selection) Estimate(e *pricing.Engine) (pricing.Estimate, error) {
	if s.VehicleType == "" || s.City == "" {
		return pricing.Estimate{}, ErrIncomplete
	}
	return e.CalculateEstimate(s.ServiceIDs, s.AddonIDs, s.VehicleType, s.City)
}

// toggle keeps ids sorted so equal sets compare equal.
func toggle(ids []string, id string) ([]string, bool) {
	i := sort.SearchStrings(ids, id)
	if i < len(ids) && ids[i] == id {
		out := make([]string, 0, len(ids)-1)
		out = append(out, ids[:i]...)
		return append(out, ids[i+1:]...), false
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:i]...)
	out = append(out, id)
	return append(out, ids[i:]...), true
}

func contains(ids []string, id string) bool {
	i := sort.SearchStrings(ids, id)
	return i < len(ids) && ids[i] == id
}
