package pricing

import "fmt"

// InvalidCityError is returned when a city is not in the multiplier table.
type InvalidCityError struct {
	City string
}

func (e *InvalidCityError) Error() string {
	return fmt.Sprintf("unknown city %q", e.City)
}

type InvalidVehicleTypeError struct {
	Value string
}

func (e *InvalidVehicleTypeError) Error() string {
	return fmt.Sprintf("unknown vehicle type %q", e.Value)
}

// InvalidCatalogEntryError reports a catalog entry that breaks a load-time
// invariant. ID is empty when the problem isn't tied to one entry.
type InvalidCatalogEntryError struct {
	ID     string
	Reason string
}

func (e *InvalidCatalogEntryError) Error() string {
	if e.ID == "" {
		return "invalid catalog: " + e.Reason
	}
	return fmt.Sprintf("invalid catalog entry %q: %s", e.ID, e.Reason)
}
