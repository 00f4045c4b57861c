package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"doorstep/internal/cart"
	"doorstep/internal/pricing"
	"doorstep/pkg/api"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionStore interface {
	Get(ctx context.Context, id string) (*cart.Session, error)
	Lookup(ctx context.Context, id string) (*cart.Session, error)
	Save(ctx context.Context, sess *cart.Session) error
	Update(ctx context.Context, id string, fn func(*cart.Session) error) (*cart.Session, error)
	UpdateExisting(ctx context.Context, id string, fn func(*cart.Session) error) (*cart.Session, error)
	Delete(ctx context.Context, id string) error
}

// LeadAPI is the external lead service. *api.Client implements it.
type LeadAPI interface {
	CreateLead(ctx context.Context, req api.LeadRequest) (api.LeadResponse, error)
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (bool, error)
	JoinWaitlist(ctx context.Context, req api.WaitlistRequest) error
}

type LeadNotifier interface {
	NotifyNewLead(ctx context.Context, lead api.LeadRequest, leadID string)
}

// RateLimiter counts hits per key in a fixed window. *redis.Client implements it.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
}

type OTPPolicy struct {
	SendLimit  int64
	SendWindow time.Duration
}

type Handler struct {
	engine   *pricing.Engine
	sessions SessionStore
	leads    LeadAPI
	notifier LeadNotifier
	limiter  RateLimiter
	otp      OTPPolicy
	logger   *zap.Logger
	now      func() time.Time

	bg sync.WaitGroup
}

func NewHandler(
	engine *pricing.Engine,
	sessions SessionStore,
	leads LeadAPI,
	notifier LeadNotifier,
	limiter RateLimiter,
	otp OTPPolicy,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		engine:   engine,
		sessions: sessions,
		leads:    leads,
		notifier: notifier,
		limiter:  limiter,
		otp:      otp,
		logger:   logger,
		now:      time.Now,
	}
}

// background runs fn outside the request; Wait blocks until every such call
// has returned.
func (h *Handler) background(fn func()) {
	h.bg.Add(1)
	go func() {
		defer h.bg.Done()
		fn()
	}()
}

// Wait is called after the HTTP server has shut down so that pending
// notifications are not cut off.
func (h *Handler) Wait() {
	h.bg.Wait()
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseSessionID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", badRequest("invalid session id")
	}
	return id.String(), nil
}
