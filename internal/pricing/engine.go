package pricing

import (
	"fmt"
	"strings"
)

const (
	// DoorstepCharge is the flat dispatch surcharge for low-value orders.
	DoorstepCharge int64 = 99
	// DoorstepWaiverThreshold waives the charge when any selected service has
	// a base minimum at or above it. Compared against the pre-multiplier price.
	DoorstepWaiverThreshold int64 = 1000
	PickupDropAddonID             = "pickup-drop"
)

type Estimate struct {
	Subtotal       PriceRange `json:"subtotal"`
	Addons         PriceRange `json:"addons"`
	Total          PriceRange `json:"total"`
	DoorstepCharge int64      `json:"doorstepCharge"`
}

// Engine prices cart selections against an immutable catalog. It holds no
// per-call state and is safe for concurrent use.
type Engine struct {
	services map[VehicleType]map[string]Service
	addons   map[string]Addon
	cities   map[City]int
	catalog  Catalog
}

func NewEngine(c Catalog) (*Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("pricing.NewEngine: %w", err)
	}
	c = c.Clone()

	e := &Engine{
		services: map[VehicleType]map[string]Service{
			VehicleBike: {},
			VehicleCar:  {},
		},
		addons:  make(map[string]Addon, len(c.Addons)),
		cities:  c.Cities,
		catalog: c,
	}
	for _, s := range c.Services {
		e.services[s.VehicleType][s.ID] = s
	}
	for _, a := range c.Addons {
		e.addons[a.ID] = a
	}
	return e, nil
}

// NewDefaultEngine builds an engine over the built-in Delhi-NCR tables.
func NewDefaultEngine() *Engine {
	e, err := NewEngine(DefaultCatalog())
	if err != nil {
		panic(err)
	}
	return e
}

// ParseCity normalizes s and checks it against the multiplier table.
func (e *Engine) ParseCity(s string) (City, error) {
	c := City(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := e.cities[c]; !ok {
		return "", &InvalidCityError{City: s}
	}
	return c, nil
}

func (e *Engine) Multiplier(city City) (int, error) {
	m, ok := e.cities[city]
	if !ok {
		return 0, &InvalidCityError{City: string(city)}
	}
	return m, nil
}

// ApplyCityMultiplier scales r by the city's percentage and rounds each bound
// to the nearest rupee, halves up. Applying it twice compounds.
func (e *Engine) ApplyCityMultiplier(r PriceRange, city City) (PriceRange, error) {
	m, err := e.Multiplier(city)
	if err != nil {
		return PriceRange{}, err
	}
	return PriceRange{Min: scale(r.Min, m), Max: scale(r.Max, m)}, nil
}

// scale computes round(v * (100+pct) / 100) in integers. v >= 0 and
// pct >= -100 keep the product non-negative.
func scale(v int64, pct int) int64 {
	n := v * int64(100+pct)
	if n < 0 {
		return -((-n + 50) / 100)
	}
	return (n + 50) / 100
}

// CalculateEstimate prices a selection. Service IDs that don't exist for the
// vehicle type and unknown add-on IDs are skipped. Repeated IDs count once.
func (e *Engine) CalculateEstimate(serviceIDs, addonIDs []string, vehicle VehicleType, city City) (Estimate, error) {
	byID, ok := e.services[vehicle]
	if !ok {
		return Estimate{}, &InvalidVehicleTypeError{Value: string(vehicle)}
	}
	if _, err := e.Multiplier(city); err != nil {
		return Estimate{}, err
	}

	var est Estimate
	waived := false

	for _, id := range dedupe(serviceIDs) {
		s, ok := byID[id]
		if !ok {
			continue
		}
		if s.PriceRange.Min >= DoorstepWaiverThreshold {
			waived = true
		}
		adjusted, _ := e.ApplyCityMultiplier(s.PriceRange, city)
		est.Subtotal = est.Subtotal.Add(adjusted)
	}

	for _, id := range dedupe(addonIDs) {
		a, ok := e.addons[id]
		if !ok {
			continue
		}
		if a.ID == PickupDropAddonID {
			waived = true
		}
		adjusted, _ := e.ApplyCityMultiplier(a.PriceRange, city)
		est.Addons = est.Addons.Add(adjusted)
	}

	if !waived {
		est.DoorstepCharge = DoorstepCharge
	}
	est.Total = est.Subtotal.Add(est.Addons).Shift(est.DoorstepCharge)
	return est, nil
}

func (e *Engine) ServicesFor(vehicle VehicleType) []Service {
	out := make([]Service, 0, len(e.services[vehicle]))
	for _, s := range e.catalog.Services {
		if s.VehicleType == vehicle {
			out = append(out, s)
		}
	}
	return out
}

func (e *Engine) Service(vehicle VehicleType, id string) (Service, bool) {
	s, ok := e.services[vehicle][id]
	return s, ok
}

func (e *Engine) Addons() []Addon {
	return append([]Addon(nil), e.catalog.Addons...)
}

func (e *Engine) Addon(id string) (Addon, bool) {
	a, ok := e.addons[id]
	return a, ok
}

func (e *Engine) Cities() []CityInfo {
	return sortedCities(e.cities)
}

func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
