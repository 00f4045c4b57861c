package server

import (
	"bytes"
	"fmt"
	"net/http"

	"doorstep/internal/pricing"
	"doorstep/internal/storage"

	"go.uber.org/zap"
)

type estimateView struct {
	pricing.Estimate
	Display estimateDisplay `json:"display"`
}

type estimateDisplay struct {
	Subtotal       string `json:"subtotal"`
	Addons         string `json:"addons"`
	Total          string `json:"total"`
	DoorstepCharge string `json:"doorstepCharge"`
}

func newEstimateView(est pricing.Estimate) *estimateView {
	return &estimateView{
		Estimate: est,
		Display: estimateDisplay{
			Subtotal:       pricing.FormatPriceRange(est.Subtotal),
			Addons:         pricing.FormatPriceRange(est.Addons),
			Total:          pricing.FormatPriceRange(est.Total),
			DoorstepCharge: pricing.FormatRupees(est.DoorstepCharge),
		},
	}
}

type catalogItem struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Subtitle    string             `json:"subtitle,omitempty"`
	Description string             `json:"description,omitempty"`
	VehicleType string             `json:"vehicleType,omitempty"`
	Category    string             `json:"category,omitempty"`
	Duration    string             `json:"duration,omitempty"`
	Popular     bool               `json:"popular,omitempty"`
	PriceRange  pricing.PriceRange `json:"priceRange"`
	Display     string             `json:"display"`
}

type catalogResponse struct {
	City            pricing.City       `json:"city,omitempty"`
	Services        []catalogItem      `json:"services"`
	Addons          []catalogItem      `json:"addons"`
	Cities          []pricing.CityInfo `json:"cities"`
	DoorstepCharge  int64              `json:"doorstepCharge"`
	WaiverThreshold int64              `json:"waiverThreshold"`
}

// Catalog lists services, add-ons and cities. With ?city= the price ranges
// are city adjusted; with ?vehicle= only that vehicle's services are listed.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	vehicles := []pricing.VehicleType{pricing.VehicleBike, pricing.VehicleCar}
	if raw := q.Get("vehicle"); raw != "" {
		v, err := pricing.ParseVehicleType(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		vehicles = []pricing.VehicleType{v}
	}

	var city pricing.City
	if raw := q.Get("city"); raw != "" {
		c, err := h.engine.ParseCity(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		city = c
	}

	price := func(base pricing.PriceRange) pricing.PriceRange {
		if city == "" {
			return base
		}
		adjusted, _ := h.engine.ApplyCityMultiplier(base, city)
		return adjusted
	}

	resp := catalogResponse{
		City:            city,
		Services:        []catalogItem{},
		Addons:          []catalogItem{},
		Cities:          h.engine.Cities(),
		DoorstepCharge:  pricing.DoorstepCharge,
		WaiverThreshold: pricing.DoorstepWaiverThreshold,
	}
	for _, v := range vehicles {
		for _, s := range h.engine.ServicesFor(v) {
			pr := price(s.PriceRange)
			resp.Services = append(resp.Services, catalogItem{
				ID:          s.ID,
				Title:       s.Title,
				Subtitle:    s.Subtitle,
				VehicleType: string(s.VehicleType),
				Category:    string(s.Category),
				Duration:    s.Duration,
				Popular:     s.Popular,
				PriceRange:  pr,
				Display:     pricing.FormatPriceRange(pr),
			})
		}
	}
	for _, a := range h.engine.Addons() {
		pr := price(a.PriceRange)
		resp.Addons = append(resp.Addons, catalogItem{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			PriceRange:  pr,
			Display:     pricing.FormatPriceRange(pr),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type estimateRequest struct {
	ServiceIDs  []string `json:"serviceIds"`
	AddonIDs    []string `json:"addonIds"`
	VehicleType string   `json:"vehicleType"`
	City        string   `json:"city"`
}

// Estimate prices an ad-hoc selection without touching any session.
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	vehicle, err := pricing.ParseVehicleType(req.VehicleType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	city, err := h.engine.ParseCity(req.City)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	est, err := h.engine.CalculateEstimate(req.ServiceIDs, req.AddonIDs, vehicle, city)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newEstimateView(est))
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) RateCard(w http.ResponseWriter, r *http.Request) {
	city, err := h.engine.ParseCity(r.URL.Query().Get("city"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := storage.WriteRateCard(&buf, h.engine, city); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Debug("Rate card exported",
		zap.String("city", string(city)),
		zap.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ratecard-%s.xlsx"`, city))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
