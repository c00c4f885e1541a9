package service

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
)

// MessageParams fills the placeholders of a notification message.
type MessageParams struct {
	// Amount is in cents.
	Amount   int64
	TeamName string
}

type messageFunc func(p *message.Printer, params MessageParams) string

func fixed(text string) messageFunc {
	return func(*message.Printer, MessageParams) string { return text }
}

func teamText(format string) messageFunc {
	return func(p *message.Printer, params MessageParams) string {
		name := params.TeamName
		if name == "" {
			name = "your team"
		}
		return p.Sprintf(format, name)
	}
}

func amountText(format string) messageFunc {
	return func(p *message.Printer, params MessageParams) string {
		return p.Sprintf(format, number.Decimal(float64(params.Amount)/100, number.Scale(2)))
	}
}

var messageTable = map[domain.NotificationType]map[string]messageFunc{
	domain.NotificationBooking: {
		"created":   fixed("New delivery booking has been created"),
		"confirmed": fixed("Your delivery booking has been confirmed"),
		"cancelled": fixed("Your delivery booking has been cancelled"),
		"completed": fixed("Your delivery has been completed"),
	},
	domain.NotificationPayment: {
		"success": amountText("Payment of $%v has been processed successfully"),
		"failed":  amountText("Payment of $%v has failed"),
		"pending": amountText("Payment of $%v is pending"),
	},
	domain.NotificationTeam: {
		"created":             teamText("You have been added to team %q"),
		"invited":             teamText("You have been invited to join team %q"),
		"joined":              teamText("You have joined team %q"),
		"member_added":        teamText("New member has been added to team %q"),
		"member_removed":      teamText("A member has been removed from team %q"),
		"removed":             teamText("You have been removed from team %q"),
		"invitation_rejected": teamText("An invitation to team %q was declined"),
		"deleted":             teamText("Team %q has been deleted"),
		"updated":             teamText("Team %q has been updated"),
	},
	domain.NotificationOrderStatus: {
		"processing": fixed("Your order is being processed"),
		"in_transit": fixed("Your order is in transit"),
		"delivered":  fixed("Your order has been delivered"),
		"cancelled":  fixed("Your order has been cancelled"),
	},
}

var fallbackMessages = map[domain.NotificationType]string{
	domain.NotificationBooking:     "Booking status updated",
	domain.NotificationPayment:     "Payment status updated",
	domain.NotificationTeam:        "Team status updated",
	domain.NotificationOrderStatus: "Order status updated",
	domain.NotificationSystem:      "New notification",
}

var printer = message.NewPrinter(language.English)

// RenderMessage picks the text for key within typ. Unknown keys get the
// type's generic "status updated" text.
func RenderMessage(typ domain.NotificationType, key string, params MessageParams) string {
	typ = domain.CoerceNotificationType(string(typ))
	if fn, ok := messageTable[typ][key]; ok {
		return fn(printer, params)
	}
	return fallbackMessages[typ]
}
