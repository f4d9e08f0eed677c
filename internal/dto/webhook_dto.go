package dto

import "encoding/json"

// RevenueCatWebhook is the envelope RevenueCat posts. Event stays raw so a
// missing event can be told apart from a malformed one.
type RevenueCatWebhook struct {
	APIVersion string          `json:"api_version"`
	Event      json.RawMessage `json:"event"`
}

// RevenueCatEvent holds the fields the notification uses. Everything except
// Type is optional, hence the pointers.
type RevenueCatEvent struct {
	Type                     string   `json:"type"`
	ID                       *string  `json:"id"`
	AppID                    *string  `json:"app_id"`
	UserID                   *string  `json:"user_id"`
	AppUserID                *string  `json:"app_user_id"`
	ProductID                *string  `json:"product_id"`
	Store                    *string  `json:"store"`
	Environment              *string  `json:"environment"`
	Price                    *float64 `json:"price"`
	Currency                 *string  `json:"currency"`
	Country                  *string  `json:"country"`
	CountryCode              *string  `json:"country_code"`
	EventTimestampMs         *int64   `json:"event_timestamp_ms"`
	IsTrialConversion        *bool    `json:"is_trial_conversion"`
	PriceInPurchasedCurrency *float64 `json:"price_in_purchased_currency"`
}
