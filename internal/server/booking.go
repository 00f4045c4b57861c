package server

import (
	"context"
	"net/http"
	"strings"

	"doorstep/internal/booking"
	"doorstep/internal/cart"
	"doorstep/pkg/api"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type otpSendRequest struct {
	SessionID string `json:"sessionId"`
	Phone     string `json:"phone"`
}

type otpSendResponse struct {
	Sent  bool   `json:"sent"`
	Phone string `json:"phone"`
}

// SendOTP asks the lead API to text a code to the phone and remembers the
// number on the session as pending verification.
func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpSendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	sessionID, err := parseSessionID(req.SessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	phone := booking.NormalizePhoneNumber(req.Phone)
	if !booking.IsValidPhoneNumber(phone) {
		h.writeError(w, r, &httpError{
			status: http.StatusBadRequest,
			msg:    "validation failed",
			fields: map[string]string{"phone": "enter a valid 10-digit mobile number"},
		})
		return
	}

	ctx := r.Context()

	allowed, err := h.limiter.Allow(ctx, "otp:"+phone, h.otp.SendLimit, h.otp.SendWindow)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !allowed {
		h.logger.Warn("OTP rate limit exceeded", zap.String("session_id", sessionID))
		h.writeError(w, r, ErrRateLimited)
		return
	}

	if err := h.leads.SendOTP(ctx, phone); err != nil {
		h.writeError(w, r, &upstreamError{err: err})
		return
	}

	_, err = h.sessions.Update(ctx, sessionID, func(s *cart.Session) error {
		if s.VerifiedPhone != phone {
			s.VerifiedPhone = ""
		}
		s.PendingPhone = phone
		s.LeadRequestID = ""
		s.Settle()
		s.Advance(booking.StepOTP)
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, otpSendResponse{Sent: true, Phone: booking.FormatPhoneNumber(phone)})
}

type otpVerifyRequest struct {
	SessionID string `json:"sessionId"`
	Phone     string `json:"phone"`
	Code      string `json:"code"`
}

type otpVerifyResponse struct {
	Verified bool         `json:"verified"`
	Step     booking.Step `json:"step"`
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	sessionID, err := parseSessionID(req.SessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		h.writeError(w, r, badRequest("code is required"))
		return
	}

	ctx := r.Context()

	sess, err := h.sessions.Lookup(ctx, sessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	phone := booking.NormalizePhoneNumber(req.Phone)
	if sess.PendingPhone == "" || sess.PendingPhone != phone {
		h.writeError(w, r, badRequest("request a code for this number first"))
		return
	}

	ok, err := h.leads.VerifyOTP(ctx, phone, code)
	if err != nil {
		h.writeError(w, r, &upstreamError{err: err})
		return
	}
	if !ok {
		h.writeError(w, r, badRequest("invalid or expired code"))
		return
	}

	// The session may have moved on while the code was checked upstream.
	sess, err = h.sessions.UpdateExisting(ctx, sessionID, func(s *cart.Session) error {
		if s.PendingPhone != phone {
			return &httpError{status: http.StatusConflict, msg: "a code was requested for another number"}
		}
		s.VerifiedPhone = phone
		s.PendingPhone = ""
		s.Advance(booking.StepConfirmation)
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("Phone verified", zap.String("session_id", sessionID))
	writeJSON(w, http.StatusOK, otpVerifyResponse{Verified: true, Step: sess.Step})
}

type leadRequest struct {
	SessionID string `json:"sessionId"`
	booking.CustomerDetails
}

type leadResponse struct {
	LeadID    string        `json:"leadId"`
	RequestID string        `json:"requestId"`
	Status    string        `json:"status,omitempty"`
	Estimate  *estimateView `json:"estimate"`
}

// CreateLead turns the session's cart into a booking: it prices the cart,
// validates the customer details against the verified phone, forwards the
// lead and clears the session.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	sessionID, err := parseSessionID(req.SessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()

	// Retries and double submits of an unchanged cart share one request id,
	// which the lead API uses to drop duplicates.
	sess, err := h.sessions.UpdateExisting(ctx, sessionID, func(s *cart.Session) error {
		if s.LeadRequestID == "" {
			s.LeadRequestID = uuid.NewString()
		}
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	est, err := sess.Selection.Estimate(h.engine)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	details := req.CustomerDetails
	if strings.TrimSpace(details.VehicleModel) == "" {
		details.VehicleModel = sess.VehicleModel
	}
	if sess.VerifiedPhone == "" || sess.VerifiedPhone != booking.NormalizePhoneNumber(details.Phone) {
		h.writeError(w, r, ErrOTPNotVerified)
		return
	}

	lead := booking.NewLeadRequest(
		sess.LeadRequestID,
		details,
		sess.Selection.VehicleType,
		sess.Selection.City,
		sess.Selection.ServiceIDs,
		sess.Selection.AddonIDs,
		est,
	)
	if err := booking.ValidateLead(lead, h.now()); err != nil {
		h.writeError(w, r, invalidFields(err))
		return
	}

	created, err := h.leads.CreateLead(ctx, lead)
	if err != nil {
		h.writeError(w, r, &upstreamError{err: err})
		return
	}

	h.logger.Info("Lead created",
		zap.String("lead_id", created.ID),
		zap.String("request_id", lead.RequestID),
		zap.String("session_id", sessionID),
		zap.String("city", lead.City),
		zap.Int64("est_min", lead.EstTotal.Min),
		zap.Int64("est_max", lead.EstTotal.Max))

	h.background(func() {
		h.notifier.NotifyNewLead(context.WithoutCancel(ctx), lead, created.ID)
	})

	if err := h.sessions.Delete(ctx, sessionID); err != nil {
		h.logger.Warn("Failed to clear session after lead",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	writeJSON(w, http.StatusCreated, leadResponse{
		LeadID:    created.ID,
		RequestID: lead.RequestID,
		Status:    created.Status,
		Estimate:  newEstimateView(est),
	})
}

// JoinWaitlist records interest from a city outside the service area.
func (h *Handler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req api.WaitlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Phone = booking.NormalizePhoneNumber(req.Phone)
	req.City = strings.TrimSpace(req.City)

	if err := booking.ValidateWaitlist(req); err != nil {
		h.writeError(w, r, invalidFields(err))
		return
	}
	if _, err := h.engine.ParseCity(req.City); err == nil {
		h.writeError(w, r, &httpError{
			status: http.StatusBadRequest,
			msg:    "validation failed",
			fields: map[string]string{"city": "already serviced, book directly"},
		})
		return
	}

	if err := h.leads.JoinWaitlist(r.Context(), req); err != nil {
		h.writeError(w, r, &upstreamError{err: err})
		return
	}

	h.logger.Info("Waitlist signup", zap.String("city", req.City))
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}
