package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/dto"
)

// Placeholder stands in for any field the event did not carry.
const Placeholder = "—"

const timestampLayout = "1/2/2006, 3:04:05 PM"

// EventFormatter renders a RevenueCat event as a Telegram Markdown message.
type EventFormatter struct {
	escape   bool
	location *time.Location
}

func NewEventFormatter(escape bool, location *time.Location) *EventFormatter {
	if location == nil {
		location = time.UTC
	}
	return &EventFormatter{escape: escape, location: location}
}

// Format has no side effects. It fails only for a nil event; a missing type
// renders as the placeholder like any other field.
func (f *EventFormatter) Format(event *dto.RevenueCatEvent) (string, error) {
	if event == nil {
		return "", &FormattingError{Err: ErrMissingEvent}
	}

	appID := f.field(str(event.AppID))
	eventType := f.field(strings.TrimSpace(event.Type))
	userID := f.field(firstNonEmpty(str(event.UserID), str(event.AppUserID), str(event.ID)))
	productID := f.field(str(event.ProductID))
	store := f.field(str(event.Store))
	country := f.field(CountryName(firstNonEmpty(str(event.CountryCode), str(event.Country))))
	revenue := f.revenue(event)
	eventTime := f.timestamp(event.EventTimestampMs)

	var b strings.Builder
	b.WriteString("🚀 *" + appID + "*\n")
	b.WriteString("*Event:* " + eventType + "\n\n")
	b.WriteString("👤 *User ID:*\n`" + userID + "`\n\n")
	b.WriteString("📦 *Product:*\n`" + productID + "`\n\n")
	b.WriteString("🏪 *Store:* " + store + "\n")
	b.WriteString("🌍 *Country:* " + country + "\n")
	b.WriteString("💰 *Revenue:* " + revenue + "\n")
	if event.IsTrialConversion != nil {
		label := "Subscription"
		if *event.IsTrialConversion {
			label = "Trial"
		}
		b.WriteString("🔁 *Type:* " + label + "\n")
	}
	b.WriteString("\n⏱ *Time:* " + eventTime + "\n")
	return b.String(), nil
}

// field applies the placeholder and, when enabled, Markdown escaping.
func (f *EventFormatter) field(v string) string {
	if v == "" {
		return Placeholder
	}
	if f.escape {
		return EscapeMarkdown(v)
	}
	return v
}

func (f *EventFormatter) revenue(event *dto.RevenueCatEvent) string {
	if event.Price == nil {
		return Placeholder
	}
	text := f.field(formatAmount(*event.Price)) + " " + f.field(str(event.Currency))
	if event.PriceInPurchasedCurrency != nil {
		text = f.field(formatAmount(*event.PriceInPurchasedCurrency)) + " ~ " + text
	}
	return text
}

func (f *EventFormatter) timestamp(ms *int64) string {
	if ms == nil {
		return Placeholder
	}
	return f.field(time.UnixMilli(*ms).In(f.location).Format(timestampLayout))
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
