package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type VehicleType string

const (
	VehicleBike VehicleType = "bike"
	VehicleCar  VehicleType = "car"
)

func ParseVehicleType(s string) (VehicleType, error) {
	v := VehicleType(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case VehicleBike, VehicleCar:
		return v, nil
	}
	return "", &InvalidVehicleTypeError{Value: s}
}

type Category string

const (
	CategoryMaintenance Category = "maintenance"
	CategoryRepair      Category = "repair"
	CategoryEnhancement Category = "enhancement"
	CategoryEmergency   Category = "emergency"
)

func (c Category) valid() bool {
	switch c {
	case CategoryMaintenance, CategoryRepair, CategoryEnhancement, CategoryEmergency:
		return true
	}
	return false
}

// PriceRange is an estimate band in whole rupees.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

func (r PriceRange) Add(o PriceRange) PriceRange {
	return PriceRange{Min: r.Min + o.Min, Max: r.Max + o.Max}
}

// Shift adds the same amount to both bounds.
func (r PriceRange) Shift(v int64) PriceRange {
	return PriceRange{Min: r.Min + v, Max: r.Max + v}
}

func (r PriceRange) validate() error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("negative price range %d-%d", r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("inverted price range %d-%d", r.Min, r.Max)
	}
	return nil
}

type Service struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle,omitempty"`
	PriceRange  PriceRange  `json:"priceRange"`
	VehicleType VehicleType `json:"vehicleType"`
	Category    Category    `json:"category"`
	Duration    string      `json:"duration,omitempty"`
	Popular     bool        `json:"popular,omitempty"`
}

type Addon struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	PriceRange  PriceRange `json:"priceRange"`
}

type City string

// Catalog holds the static tables the engine prices against. Multipliers are
// percentages, e.g. 5 means +5%.
type Catalog struct {
	Services []Service
	Addons   []Addon
	Cities   map[City]int
}

// Validate checks the configuration-time invariants of every entry and
// returns all violations joined together.
func (c Catalog) Validate() error {
	var errs []error

	seen := make(map[string]bool, len(c.Services))
	for _, s := range c.Services {
		if s.ID == "" {
			errs = append(errs, &InvalidCatalogEntryError{Reason: "service with empty id"})
			continue
		}
		if seen[s.ID] {
			errs = append(errs, &InvalidCatalogEntryError{ID: s.ID, Reason: "duplicate service id"})
		}
		seen[s.ID] = true

		if err := s.PriceRange.validate(); err != nil {
			errs = append(errs, &InvalidCatalogEntryError{ID: s.ID, Reason: err.Error()})
		}
		if s.VehicleType != VehicleBike && s.VehicleType != VehicleCar {
			errs = append(errs, &InvalidCatalogEntryError{ID: s.ID, Reason: fmt.Sprintf("unknown vehicle type %q", s.VehicleType)})
		}
		if !s.Category.valid() {
			errs = append(errs, &InvalidCatalogEntryError{ID: s.ID, Reason: fmt.Sprintf("unknown category %q", s.Category)})
		}
	}

	seenAddons := make(map[string]bool, len(c.Addons))
	for _, a := range c.Addons {
		if a.ID == "" {
			errs = append(errs, &InvalidCatalogEntryError{Reason: "addon with empty id"})
			continue
		}
		if seenAddons[a.ID] {
			errs = append(errs, &InvalidCatalogEntryError{ID: a.ID, Reason: "duplicate addon id"})
		}
		seenAddons[a.ID] = true

		if err := a.PriceRange.validate(); err != nil {
			errs = append(errs, &InvalidCatalogEntryError{ID: a.ID, Reason: err.Error()})
		}
	}

	if len(c.Cities) == 0 {
		errs = append(errs, &InvalidCatalogEntryError{Reason: "no cities configured"})
	}
	for city, m := range c.Cities {
		// ParseCity lowercases and trims its input, so any other key is unreachable.
		if city == "" || string(city) != strings.ToLower(strings.TrimSpace(string(city))) {
			errs = append(errs, &InvalidCatalogEntryError{ID: string(city), Reason: "city key must be lowercase without surrounding spaces"})
		}
		if m < -100 {
			errs = append(errs, &InvalidCatalogEntryError{ID: string(city), Reason: fmt.Sprintf("city multiplier %d%% below -100%%", m)})
		}
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy so callers can't mutate shared tables.
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Services: append([]Service(nil), c.Services...),
		Addons:   append([]Addon(nil), c.Addons...),
		Cities:   make(map[City]int, len(c.Cities)),
	}
	for k, v := range c.Cities {
		out.Cities[k] = v
	}
	return out
}

// CityInfo is a city with its multiplier, used for listings.
type CityInfo struct {
	ID         City `json:"id"`
	Multiplier int  `json:"multiplier"`
}

func sortedCities(m map[City]int) []CityInfo {
	out := make([]CityInfo, 0, len(m))
	for k, v := range m {
		out = append(out, CityInfo{ID: k, Multiplier: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
