package cart

import (
	"time"

	"doorstep/internal/booking"
)

// Session is everything the funnel keeps for one visitor between requests.
type Session struct {
	ID            string       `json:"id"`
	Selection     Selection    `json:"selection"`
	Step          booking.Step `json:"step"`
	VehicleModel  string       `json:"vehicleModel,omitempty"`
	PendingPhone  string       `json:"pendingPhone,omitempty"`
	VerifiedPhone string       `json:"verifiedPhone,omitempty"`
	// LeadRequestID is the idempotency key of the booking being submitted.
	// It is cleared whenever the cart changes.
	LeadRequestID string    `json:"leadRequestId,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Selection: Selection{ServiceIDs: []string{}, AddonIDs: []string{}},
		Step:      booking.StepVehicle,
	}
}

func (s *Session) Progress() booking.Progress {
	return booking.Progress{
		VehicleType:   s.Selection.VehicleType,
		VehicleModel:  s.VehicleModel,
		City:          s.Selection.City,
		HasServices:   len(s.Selection.ServiceIDs) > 0,
		PhoneVerified: s.VerifiedPhone != "",
	}
}

// GoTo moves the session to step if the collected data allows it.
func (s *Session) GoTo(step booking.Step) error {
	if err := booking.CanEnter(step, s.Progress()); err != nil {
		return err
	}
	s.Step = step
	return nil
}

// Reset empties the cart and restarts the funnel, keeping the session id.
func (s *Session) Reset() {
	*s = *NewSession(s.ID)
}

// Advance walks forward towards target and stops at the first step the
// collected data doesn't unlock. It never moves backwards.
func (s *Session) Advance(target booking.Step) {
	if s.Step.After(target) {
		return
	}
	p := s.Progress()
	for s.Step != target {
		next := s.Step.Next()
		if next == s.Step || booking.CanEnter(next, p) != nil {
			return
		}
		s.Step = next
	}
}

// Settle walks back until the current step is reachable again, e.g. after
// the last service was toggled off.
func (s *Session) Settle() {
	p := s.Progress()
	for booking.CanEnter(s.Step, p) != nil {
		prev := s.Step.Prev()
		if prev == s.Step {
			return
		}
		s.Step = prev
	}
}
