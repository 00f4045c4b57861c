package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "secret", 5*time.Second, 3, zap.NewNop())
}

func TestCreateLead(t *testing.T) {
	var got LeadRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/leads", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(LeadResponse{ID: "lead-42", Status: "new"})
	})

	req := LeadRequest{
		RequestID:   "req-1",
		Name:        "Asha",
		Phone:       "+919876543210",
		VehicleType: "bike",
		City:        "delhi",
		Services:    []string{"bike-oil"},
		EstTotal:    Range{Min: 399, Max: 599},
	}
	resp, err := c.CreateLead(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "lead-42", resp.ID)
	assert.Equal(t, req.EstTotal, got.EstTotal)
	assert.Equal(t, req.Services, got.Services)
}

func TestCreateLead_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(LeadResponse{ID: "lead-1"})
	})

	resp, err := c.CreateLead(context.Background(), LeadRequest{})
	require.NoError(t, err)
	assert.Equal(t, "lead-1", resp.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCreateLead_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"bad phone"}`))
	})

	_, err := c.CreateLead(context.Background(), LeadRequest{})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnprocessableEntity, se.Code)
	assert.Contains(t, se.Body, "bad phone")
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateLead_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.CreateLead(context.Background(), LeadRequest{})
	require.Error(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestVerifyOTP(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body OTPVerifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch body.Code {
		case "123456":
			_ = json.NewEncoder(w).Encode(OTPVerifyResponse{Verified: true})
		case "000000":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			_ = json.NewEncoder(w).Encode(OTPVerifyResponse{Verified: false})
		}
	})

	ok, err := c.VerifyOTP(context.Background(), "+919876543210", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.VerifyOTP(context.Background(), "+919876543210", "000000")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.VerifyOTP(context.Background(), "+919876543210", "111111")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSendOTPAndWaitlist(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.SendOTP(context.Background(), "+919876543210"))
	require.NoError(t, c.JoinWaitlist(context.Background(), WaitlistRequest{Phone: "+919876543210", City: "jaipur"}))
	assert.Equal(t, []string{"/api/otp/send", "/api/waitlist"}, paths)
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.SendOTP(ctx, "+919876543210")
	assert.ErrorIs(t, err, context.Canceled)
}
