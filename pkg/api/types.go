package api

// Range is the estimate band attached to a lead.
type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// LeadRequest is the booking payload accepted by POST /api/leads.
type LeadRequest struct {
	RequestID      string   `json:"requestId"`
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email,omitempty"`
	VehicleType    string   `json:"vehicleType"`
	VehicleModel   string   `json:"vehicleModel"`
	City           string   `json:"city"`
	Address        string   `json:"address"`
	Pincode        string   `json:"pincode"`
	PreferredDate  string   `json:"preferredDate,omitempty"`
	Services       []string `json:"services"`
	Addons         []string `json:"addons"`
	EstTotal       Range    `json:"estTotal"`
	DoorstepCharge int64    `json:"doorstepCharge"`
	Source         string   `json:"source"`
}

type LeadResponse struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

type OTPSendRequest struct {
	Phone string `json:"phone"`
}

type OTPVerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type OTPVerifyResponse struct {
	Verified bool `json:"verified"`
}

type WaitlistRequest struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}
