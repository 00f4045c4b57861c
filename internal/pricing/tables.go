package pricing

// Built-in Delhi-NCR tables. Read-only; DefaultCatalog hands out copies.

var bikeServices = []Service{
	{ID: "bike-oil", Title: "Engine Oil Change", Subtitle: "Oil + filter check", PriceRange: PriceRange{Min: 300, Max: 500}, VehicleType: VehicleBike, Category: CategoryMaintenance, Duration: "30 min", Popular: true},
	{ID: "bike-general-service", Title: "General Service", Subtitle: "20-point inspection, cleaning, tuning", PriceRange: PriceRange{Min: 599, Max: 899}, VehicleType: VehicleBike, Category: CategoryMaintenance, Duration: "90 min", Popular: true},
	{ID: "bike-brake", Title: "Brake Service", Subtitle: "Pads, shoes and cable adjustment", PriceRange: PriceRange{Min: 250, Max: 450}, VehicleType: VehicleBike, Category: CategoryRepair, Duration: "45 min"},
	{ID: "bike-chain", Title: "Chain Clean & Lube", PriceRange: PriceRange{Min: 199, Max: 349}, VehicleType: VehicleBike, Category: CategoryMaintenance, Duration: "20 min"},
	{ID: "bike-battery", Title: "Battery Replacement", Subtitle: "Includes new battery", PriceRange: PriceRange{Min: 1200, Max: 2200}, VehicleType: VehicleBike, Category: CategoryRepair, Duration: "30 min"},
	{ID: "bike-wash", Title: "Foam Wash", PriceRange: PriceRange{Min: 199, Max: 299}, VehicleType: VehicleBike, Category: CategoryEnhancement, Duration: "30 min"},
	{ID: "bike-puncture", Title: "Puncture Repair", PriceRange: PriceRange{Min: 100, Max: 200}, VehicleType: VehicleBike, Category: CategoryEmergency, Duration: "20 min"},
	{ID: "bike-jumpstart", Title: "Jump Start", PriceRange: PriceRange{Min: 299, Max: 399}, VehicleType: VehicleBike, Category: CategoryEmergency, Duration: "20 min"},
}

var carServices = []Service{
	{ID: "car-periodic", Title: "Periodic Service", Subtitle: "Oil, filters, 40-point inspection", PriceRange: PriceRange{Min: 2499, Max: 3999}, VehicleType: VehicleCar, Category: CategoryMaintenance, Duration: "3 hrs", Popular: true},
	{ID: "car-oil", Title: "Engine Oil Change", PriceRange: PriceRange{Min: 1500, Max: 2500}, VehicleType: VehicleCar, Category: CategoryMaintenance, Duration: "45 min", Popular: true},
	{ID: "car-ac", Title: "AC Gas Top-up", Subtitle: "Leak check included", PriceRange: PriceRange{Min: 1200, Max: 2000}, VehicleType: VehicleCar, Category: CategoryRepair, Duration: "60 min"},
	{ID: "car-brake-pads", Title: "Brake Pad Replacement", PriceRange: PriceRange{Min: 1000, Max: 1200}, VehicleType: VehicleCar, Category: CategoryRepair, Duration: "60 min"},
	{ID: "car-battery", Title: "Battery Replacement", PriceRange: PriceRange{Min: 3500, Max: 6500}, VehicleType: VehicleCar, Category: CategoryRepair, Duration: "30 min"},
	{ID: "car-wash", Title: "Exterior Foam Wash", PriceRange: PriceRange{Min: 499, Max: 799}, VehicleType: VehicleCar, Category: CategoryEnhancement, Duration: "45 min"},
	{ID: "car-interior", Title: "Interior Detailing", PriceRange: PriceRange{Min: 999, Max: 999}, VehicleType: VehicleCar, Category: CategoryEnhancement, Duration: "2 hrs"},
	{ID: "car-jumpstart", Title: "Jump Start", PriceRange: PriceRange{Min: 499, Max: 699}, VehicleType: VehicleCar, Category: CategoryEmergency, Duration: "30 min"},
	{ID: "car-puncture", Title: "Puncture Repair", PriceRange: PriceRange{Min: 299, Max: 449}, VehicleType: VehicleCar, Category: CategoryEmergency, Duration: "30 min"},
}

var addons = []Addon{
	{ID: PickupDropAddonID, Title: "Pickup & Drop", Description: "We take the vehicle to our workshop and bring it back", PriceRange: PriceRange{Min: 299, Max: 399}},
	{ID: "engine-flush", Title: "Engine Flush", PriceRange: PriceRange{Min: 199, Max: 299}},
	{ID: "polish", Title: "Body Polish", PriceRange: PriceRange{Min: 149, Max: 249}},
	{ID: "sanitization", Title: "Cabin Sanitization", PriceRange: PriceRange{Min: 199, Max: 349}},
	{ID: "chain-kit", Title: "Chain Sprocket Kit Check", PriceRange: PriceRange{Min: 99, Max: 99}},
}

var cityMultipliers = map[City]int{
	"delhi":         0,
	"new-delhi":     0,
	"noida":         3,
	"greater-noida": 3,
	"ghaziabad":     2,
	"faridabad":     2,
	"gurugram":      5,
}

func DefaultCatalog() Catalog {
	services := make([]Service, 0, len(bikeServices)+len(carServices))
	services = append(services, bikeServices...)
	services = append(services, carServices...)

	return Catalog{
		Services: services,
		Addons:   addons,
		Cities:   cityMultipliers,
	}.Clone()
}
