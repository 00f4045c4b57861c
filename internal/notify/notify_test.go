package notify

import (
	"context"
	"errors"
	"testing"

	"doorstep/pkg/api"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func testLead() api.LeadRequest {
	return api.LeadRequest{
		Name:           "Asha <Verma>",
		Phone:          "+919812345678",
		VehicleType:    "bike",
		VehicleModel:   "Activa 6G",
		City:           "noida",
		Address:        "Sector 62",
		Pincode:        "201309",
		Services:       []string{"bike-oil", "bike-wash"},
		EstTotal:       api.Range{Min: 1200, Max: 1500},
		DoorstepCharge: 99,
	}
}

func TestNotifyNewLead(t *testing.T) {
	sender := &fakeSender{}
	n := NewWithSender(sender, -100123, zap.NewNop())

	n.NotifyNewLead(context.Background(), testLead(), "lead-1")

	require.Len(t, sender.sent, 1)
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100123), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "#lead-1")
}

func TestNotifyNewLeadDisabled(t *testing.T) {
	sender := &fakeSender{}
	n := NewWithSender(sender, 0, zap.NewNop())

	n.NotifyNewLead(context.Background(), testLead(), "lead-1")
	assert.Empty(t, sender.sent)

	n, err := New("", 42, zap.NewNop())
	require.NoError(t, err)
	n.NotifyNewLead(context.Background(), testLead(), "lead-1")
}

func TestNotifyNewLeadSendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("forbidden")}
	n := NewWithSender(sender, 1, zap.NewNop())

	assert.NotPanics(t, func() {
		n.NotifyNewLead(context.Background(), testLead(), "lead-1")
	})
	assert.Len(t, sender.sent, 1)
}

func TestFormatLeadNotification(t *testing.T) {
	text := FormatLeadNotification(testLead(), "lead-1")

	assert.Contains(t, text, "Asha &lt;Verma&gt;")
	assert.Contains(t, text, "+91 98123 45678")
	assert.Contains(t, text, "bike-oil, bike-wash")
	assert.Contains(t, text, "Add-ons: -")
	assert.Contains(t, text, "Doorstep charge: ₹99")
	assert.Contains(t, text, "<b>₹1,200–₹1,500</b>")
}
