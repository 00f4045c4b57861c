// Package notify posts new leads to the operations Telegram channel.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"doorstep/internal/booking"
	"doorstep/internal/pricing"
	"doorstep/pkg/api"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	sender    Sender
	channelID int64
	logger    *zap.Logger
}

// New connects to the Bot API. An empty token yields a notifier that only logs.
func New(token string, channelID int64, logger *zap.Logger) (*Notifier, error) {
	const operation = "notify.New"

	if token == "" {
		logger.Warn("Channel notifications disabled - no bot token configured")
		return &Notifier{logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create bot api: %w", operation, err)
	}

	logger.Info("Telegram notifier ready",
		zap.String("bot", bot.Self.UserName),
		zap.Int64("channel_id", channelID))

	return NewWithSender(bot, channelID, logger), nil
}

func NewWithSender(sender Sender, channelID int64, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender:    sender,
		channelID: channelID,
		logger:    logger,
	}
}

// NotifyNewLead sends a short summary of the lead to the channel. Failures
// are logged, never returned: the lead is already accepted upstream.
func (n *Notifier) NotifyNewLead(ctx context.Context, lead api.LeadRequest, leadID string) {
	if n.sender == nil || n.channelID == 0 {
		n.logger.Debug("Skipping lead notification", zap.String("lead_id", leadID))
		return
	}
	if ctx.Err() != nil {
		return
	}

	msg := tgbotapi.NewMessage(n.channelID, FormatLeadNotification(lead, leadID))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error("Failed to send lead notification",
			zap.String("lead_id", leadID),
			zap.Int64("channel_id", n.channelID),
			zap.Error(err))
		return
	}

	n.logger.Info("Lead notification sent", zap.String("lead_id", leadID))
}

func FormatLeadNotification(lead api.LeadRequest, leadID string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🛠 <b>New booking</b> #%s\n", html.EscapeString(leadID))
	fmt.Fprintf(&b, "Customer: %s\n", html.EscapeString(lead.Name))
	fmt.Fprintf(&b, "Phone: %s\n", booking.FormatPhoneNumber(lead.Phone))
	fmt.Fprintf(&b, "Vehicle: %s %s\n", lead.VehicleType, html.EscapeString(lead.VehicleModel))
	fmt.Fprintf(&b, "City: %s, %s\n", lead.City, html.EscapeString(lead.Pincode))
	fmt.Fprintf(&b, "Address: %s\n", html.EscapeString(lead.Address))
	if lead.PreferredDate != "" {
		fmt.Fprintf(&b, "Date: %s\n", lead.PreferredDate)
	}

	b.WriteString("──────────────────\n")
	fmt.Fprintf(&b, "Services: %s\n", joinOrDash(lead.Services))
	fmt.Fprintf(&b, "Add-ons: %s\n", joinOrDash(lead.Addons))
	if lead.DoorstepCharge > 0 {
		fmt.Fprintf(&b, "Doorstep charge: %s\n", pricing.FormatRupees(lead.DoorstepCharge))
	}
	fmt.Fprintf(&b, "Estimate: <b>%s</b>",
		pricing.FormatPriceRange(pricing.PriceRange{Min: lead.EstTotal.Min, Max: lead.EstTotal.Max}))

	return b.String()
}

func joinOrDash(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
