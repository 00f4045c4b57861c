package server

import (
	"errors"
	"net/http"
	"strings"

	"doorstep/internal/booking"
	"doorstep/internal/cart"
	"doorstep/internal/pricing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type cartResponse struct {
	SessionID     string         `json:"sessionId"`
	Step          booking.Step   `json:"step"`
	ReachedStep   booking.Step   `json:"reachedStep"`
	Selection     cart.Selection `json:"selection"`
	VehicleModel  string         `json:"vehicleModel,omitempty"`
	PhoneVerified bool           `json:"phoneVerified"`
	Estimate      *estimateView  `json:"estimate"`
}

// cartView prices the session; the estimate stays null until vehicle type
// and city are known.
func (h *Handler) cartView(sess *cart.Session) (cartResponse, error) {
	resp := cartResponse{
		SessionID:     sess.ID,
		Step:          sess.Step,
		ReachedStep:   sess.Progress().Reached(),
		Selection:     sess.Selection,
		VehicleModel:  sess.VehicleModel,
		PhoneVerified: sess.VerifiedPhone != "",
	}

	est, err := sess.Selection.Estimate(h.engine)
	switch {
	case errors.Is(err, cart.ErrIncomplete):
	case err != nil:
		return cartResponse{}, err
	default:
		resp.Estimate = newEstimateView(est)
	}
	return resp, nil
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, status int, sess *cart.Session) {
	resp, err := h.cartView(sess)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, resp)
}

// NewCart starts a session and returns its id.
func (h *Handler) NewCart(w http.ResponseWriter, r *http.Request) {
	sess := cart.NewSession(uuid.NewString())
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Debug("Cart session created", zap.String("session_id", sess.ID))
	h.writeCart(w, r, http.StatusCreated, sess)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionID(chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sess, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeCart(w, r, http.StatusOK, sess)
}

func (h *Handler) ToggleService(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "id")

	h.updateCart(w, r, func(sess *cart.Session) error {
		vehicle := sess.Selection.VehicleType
		if vehicle == "" {
			return badRequest("choose a vehicle type first")
		}
		if _, ok := h.engine.Service(vehicle, serviceID); !ok && !sess.Selection.HasService(serviceID) {
			return notFound("unknown %s service %q", vehicle, serviceID)
		}
		sess.Selection.ToggleService(serviceID)
		return nil
	})
}

func (h *Handler) ToggleAddon(w http.ResponseWriter, r *http.Request) {
	addonID := chi.URLParam(r, "id")

	h.updateCart(w, r, func(sess *cart.Session) error {
		if _, ok := h.engine.Addon(addonID); !ok && !sess.Selection.HasAddon(addonID) {
			return notFound("unknown add-on %q", addonID)
		}
		sess.Selection.ToggleAddon(addonID)
		return nil
	})
}

type contextRequest struct {
	VehicleType  *string `json:"vehicleType"`
	VehicleModel *string `json:"vehicleModel"`
	City         *string `json:"city"`
	Step         *string `json:"step"`
}

// SetContext updates vehicle type, model, city and the wizard step. Absent
// fields are left alone.
func (h *Handler) SetContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.updateCart(w, r, func(sess *cart.Session) error {
		if req.VehicleType != nil {
			v, err := pricing.ParseVehicleType(*req.VehicleType)
			if err != nil {
				return err
			}
			if v != sess.Selection.VehicleType {
				sess.VehicleModel = ""
			}
			sess.Selection.SetVehicle(v)
		}
		if req.VehicleModel != nil {
			sess.VehicleModel = strings.TrimSpace(*req.VehicleModel)
		}
		if req.City != nil {
			c, err := h.engine.ParseCity(*req.City)
			if err != nil {
				return err
			}
			sess.Selection.SetCity(c)
		}
		if req.Step != nil {
			step, err := booking.ParseStep(*req.Step)
			if err != nil {
				return badRequest("%v", err)
			}
			return sess.GoTo(step)
		}
		return nil
	})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionID(chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.sessions.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// updateCart applies fn to the session named in the URL, settles the step
// and answers with the repriced cart.
func (h *Handler) updateCart(w http.ResponseWriter, r *http.Request, fn func(*cart.Session) error) {
	id, err := parseSessionID(chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sess, err := h.sessions.Update(r.Context(), id, func(s *cart.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		s.LeadRequestID = ""
		s.Settle()
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeCart(w, r, http.StatusOK, sess)
}
