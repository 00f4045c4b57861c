package booking

import (
	"errors"
	"fmt"

	"doorstep/internal/pricing"
)

type Step string

const (
	StepVehicle      Step = "vehicle"
	StepModel        Step = "model"
	StepLocation     Step = "location"
	StepDetails      Step = "details"
	StepOTP          Step = "otp"
	StepConfirmation Step = "confirmation"
)

var steps = []Step{StepVehicle, StepModel, StepLocation, StepDetails, StepOTP, StepConfirmation}

var ErrStepLocked = errors.New("step not reachable yet")

func ParseStep(s string) (Step, error) {
	for _, st := range steps {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown booking step %q", s)
}

func (s Step) index() int {
	for i, st := range steps {
		if st == s {
			return i
		}
	}
	return -1
}

// After reports whether s comes later in the funnel than o.
func (s Step) After(o Step) bool {
	return s.index() > o.index()
}

// Next returns the following step; the last step maps to itself.
func (s Step) Next() Step {
	i := s.index()
	if i < 0 {
		return StepVehicle
	}
	if i == len(steps)-1 {
		return s
	}
	return steps[i+1]
}

// Prev returns the previous step; the first step maps to itself.
func (s Step) Prev() Step {
	i := s.index()
	if i <= 0 {
		return StepVehicle
	}
	return steps[i-1]
}

// Progress is what a session has collected so far.
type Progress struct {
	VehicleType   pricing.VehicleType
	VehicleModel  string
	City          pricing.City
	HasServices   bool
	PhoneVerified bool
}

// Reached is the furthest step the collected data allows.
func (p Progress) Reached() Step {
	switch {
	case p.VehicleType == "":
		return StepVehicle
	case p.VehicleModel == "":
		return StepModel
	case p.City == "" || !p.HasServices:
		return StepLocation
	case !p.PhoneVerified:
		// Details are typed on the client and sent along with the OTP request.
		return StepOTP
	default:
		return StepConfirmation
	}
}

func CanEnter(s Step, p Progress) error {
	i := s.index()
	if i < 0 {
		return fmt.Errorf("unknown booking step %q", s)
	}
	if i > p.Reached().index() {
		return fmt.Errorf("%w: %s", ErrStepLocked, s)
	}
	return nil
}
