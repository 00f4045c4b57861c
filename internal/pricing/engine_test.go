package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateEstimate_BikeOilDelhi(t *testing.T) {
	e := NewDefaultEngine()

	est, err := e.CalculateEstimate([]string{"bike-oil"}, nil, VehicleBike, "delhi")
	require.NoError(t, err)

	assert.Equal(t, PriceRange{Min: 300, Max: 500}, est.Subtotal)
	assert.Equal(t, PriceRange{}, est.Addons)
	assert.Equal(t, int64(99), est.DoorstepCharge)
	assert.Equal(t, PriceRange{Min: 399, Max: 599}, est.Total)
}

func TestCalculateEstimate_PickupDropWaivesCharge(t *testing.T) {
	e := NewDefaultEngine()

	est, err := e.CalculateEstimate([]string{"bike-oil"}, []string{PickupDropAddonID}, VehicleBike, "delhi")
	require.NoError(t, err)

	assert.Equal(t, int64(0), est.DoorstepCharge)
	assert.Equal(t, PriceRange{Min: 299, Max: 399}, est.Addons)
	assert.Equal(t, PriceRange{Min: 599, Max: 899}, est.Total)
}

func TestCalculateEstimate_UnknownIDsAreDropped(t *testing.T) {
	e := NewDefaultEngine()

	est, err := e.CalculateEstimate([]string{"nonexistent-id"}, []string{"nope"}, VehicleBike, "delhi")
	require.NoError(t, err)

	assert.Equal(t, PriceRange{}, est.Subtotal)
	assert.Equal(t, PriceRange{}, est.Addons)
	assert.Equal(t, int64(99), est.DoorstepCharge)
	assert.Equal(t, PriceRange{Min: 99, Max: 99}, est.Total)
}

func TestCalculateEstimate_ServiceOfOtherVehicleIsDropped(t *testing.T) {
	e := NewDefaultEngine()

	est, err := e.CalculateEstimate([]string{"car-battery"}, nil, VehicleBike, "delhi")
	require.NoError(t, err)

	assert.Equal(t, PriceRange{}, est.Subtotal)
	assert.Equal(t, int64(99), est.DoorstepCharge)
}

func TestCalculateEstimate_EmptySelection(t *testing.T) {
	e := NewDefaultEngine()

	est, err := e.CalculateEstimate(nil, nil, VehicleCar, "gurugram")
	require.NoError(t, err)
	assert.Equal(t, PriceRange{Min: 99, Max: 99}, est.Total)

	est, err = e.CalculateEstimate(nil, []string{PickupDropAddonID}, VehicleCar, "delhi")
	require.NoError(t, err)
	assert.Equal(t, int64(0), est.DoorstepCharge)
	assert.Equal(t, PriceRange{Min: 299, Max: 399}, est.Total)
}

func TestCalculateEstimate_WaiverBoundary(t *testing.T) {
	catalog := Catalog{
		Services: []Service{
			{ID: "just-below", Title: "Below", PriceRange: PriceRange{Min: 999, Max: 999}, VehicleType: VehicleCar, Category: CategoryRepair},
			{ID: "at-threshold", Title: "At", PriceRange: PriceRange{Min: 1000, Max: 1200}, VehicleType: VehicleCar, Category: CategoryRepair},
		},
		Cities: map[City]int{"delhi": 0, "gurugram": 5},
	}
	e, err := NewEngine(catalog)
	require.NoError(t, err)

	tests := []struct {
		name    string
		ids     []string
		city    City
		charge  int64
		minimum int64
	}{
		{name: "999 pays the charge", ids: []string{"just-below"}, city: "delhi", charge: 99, minimum: 1098},
		{name: "1000 is waived", ids: []string{"at-threshold"}, city: "delhi", charge: 0, minimum: 1000},
		{name: "one premium service waives the whole order", ids: []string{"just-below", "at-threshold"}, city: "delhi", charge: 0, minimum: 1999},
		// 999 * 1.05 rounds to 1049, but the waiver looks at the base price.
		{name: "city adjustment does not trigger the waiver", ids: []string{"just-below"}, city: "gurugram", charge: 99, minimum: 1148},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := e.CalculateEstimate(tt.ids, nil, VehicleCar, tt.city)
			require.NoError(t, err)
			assert.Equal(t, tt.charge, est.DoorstepCharge)
			assert.Equal(t, tt.minimum, est.Total.Min)
		})
	}
}

func TestCalculateEstimate_DuplicateIDsCountOnce(t *testing.T) {
	e := NewDefaultEngine()

	once, err := e.CalculateEstimate([]string{"bike-oil"}, []string{"polish"}, VehicleBike, "noida")
	require.NoError(t, err)
	twice, err := e.CalculateEstimate([]string{"bike-oil", "bike-oil"}, []string{"polish", "polish"}, VehicleBike, "noida")
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestCalculateEstimate_TotalInvariant(t *testing.T) {
	e := NewDefaultEngine()

	for _, vehicle := range []VehicleType{VehicleBike, VehicleCar} {
		var ids []string
		for _, s := range e.ServicesFor(vehicle) {
			ids = append(ids, s.ID)
			for _, c := range e.Cities() {
				for _, a := range e.Addons() {
					est, err := e.CalculateEstimate(ids, []string{a.ID}, vehicle, c.ID)
					require.NoError(t, err)

					assert.LessOrEqual(t, est.Subtotal.Min, est.Subtotal.Max)
					assert.LessOrEqual(t, est.Addons.Min, est.Addons.Max)
					assert.LessOrEqual(t, est.Total.Min, est.Total.Max)
					assert.Equal(t, est.Subtotal.Min+est.Addons.Min+est.DoorstepCharge, est.Total.Min)
					assert.Equal(t, est.Subtotal.Max+est.Addons.Max+est.DoorstepCharge, est.Total.Max)
				}
			}
		}
	}
}

func TestCalculateEstimate_MonotonicInCityMultiplier(t *testing.T) {
	e := NewDefaultEngine()
	cities := e.Cities()

	selections := [][]string{
		nil,
		{"bike-oil"},
		{"bike-oil", "bike-brake", "bike-battery"},
	}

	for _, ids := range selections {
		for _, a := range cities {
			for _, b := range cities {
				if a.Multiplier > b.Multiplier {
					continue
				}
				estA, err := e.CalculateEstimate(ids, []string{"polish"}, VehicleBike, a.ID)
				require.NoError(t, err)
				estB, err := e.CalculateEstimate(ids, []string{"polish"}, VehicleBike, b.ID)
				require.NoError(t, err)

				assert.LessOrEqual(t, estA.Total.Min, estB.Total.Min, "%s vs %s for %v", a.ID, b.ID, ids)
				assert.LessOrEqual(t, estA.Total.Max, estB.Total.Max, "%s vs %s for %v", a.ID, b.ID, ids)
			}
		}
	}
}

func TestCalculateEstimate_InvalidInputs(t *testing.T) {
	e := NewDefaultEngine()

	_, err := e.CalculateEstimate([]string{"bike-oil"}, nil, VehicleBike, "mumbai")
	var cityErr *InvalidCityError
	require.True(t, errors.As(err, &cityErr))
	assert.Equal(t, "mumbai", cityErr.City)

	_, err = e.CalculateEstimate([]string{"bike-oil"}, nil, "truck", "delhi")
	var vehicleErr *InvalidVehicleTypeError
	require.True(t, errors.As(err, &vehicleErr))
}

func TestApplyCityMultiplier(t *testing.T) {
	e := NewDefaultEngine()

	got, err := e.ApplyCityMultiplier(PriceRange{Min: 400, Max: 600}, "gurugram")
	require.NoError(t, err)
	assert.Equal(t, PriceRange{Min: 420, Max: 630}, got)

	got, err = e.ApplyCityMultiplier(PriceRange{Min: 400, Max: 600}, "delhi")
	require.NoError(t, err)
	assert.Equal(t, PriceRange{Min: 400, Max: 600}, got)

	// 299 * 1.05 = 313.95, 10 * 1.05 = 10.5 rounds up.
	got, err = e.ApplyCityMultiplier(PriceRange{Min: 10, Max: 299}, "gurugram")
	require.NoError(t, err)
	assert.Equal(t, PriceRange{Min: 11, Max: 314}, got)

	twice, err := e.ApplyCityMultiplier(got, "gurugram")
	require.NoError(t, err)
	assert.NotEqual(t, got, twice)

	_, err = e.ApplyCityMultiplier(PriceRange{Min: 1, Max: 2}, "pune")
	var cityErr *InvalidCityError
	assert.True(t, errors.As(err, &cityErr))
}

func TestApplyCityMultiplier_Discount(t *testing.T) {
	e, err := NewEngine(Catalog{Cities: map[City]int{"promo": -10, "free": -100}})
	require.NoError(t, err)

	got, err := e.ApplyCityMultiplier(PriceRange{Min: 305, Max: 1000}, "promo")
	require.NoError(t, err)
	assert.Equal(t, PriceRange{Min: 275, Max: 900}, got)

	got, err = e.ApplyCityMultiplier(PriceRange{Min: 305, Max: 1000}, "free")
	require.NoError(t, err)
	assert.Equal(t, PriceRange{}, got)
}

func TestParseCity(t *testing.T) {
	e := NewDefaultEngine()

	c, err := e.ParseCity("  Gurugram ")
	require.NoError(t, err)
	assert.Equal(t, City("gurugram"), c)

	_, err = e.ParseCity("Chennai")
	assert.Error(t, err)
}

func TestParseVehicleType(t *testing.T) {
	v, err := ParseVehicleType("Bike")
	require.NoError(t, err)
	assert.Equal(t, VehicleBike, v)

	_, err = ParseVehicleType("scooter")
	assert.Error(t, err)
}

func TestEngineCatalogIsImmutable(t *testing.T) {
	e := NewDefaultEngine()

	services := e.ServicesFor(VehicleBike)
	services[0].PriceRange = PriceRange{Min: 1, Max: 1}
	addons := e.Addons()
	addons[0].ID = "changed"

	s, ok := e.Service(VehicleBike, "bike-oil")
	require.True(t, ok)
	assert.Equal(t, PriceRange{Min: 300, Max: 500}, s.PriceRange)
	_, ok = e.Addon(PickupDropAddonID)
	assert.True(t, ok)
	assert.Equal(t, PickupDropAddonID, e.Addons()[0].ID)
}
