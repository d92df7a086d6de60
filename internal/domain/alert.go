package domain

import "time"

// Alert is a user's saved search: a location substring plus an inclusive
// price range. LastSentAt is the only durable trace of a sent notification;
// it is nil until the first sweep emails the owner.
type Alert struct {
	AlertID    string     `json:"id" dynamodbav:"alert_id"`
	UserID     string     `json:"user_id" dynamodbav:"user_id"`
	Location   string     `json:"location" dynamodbav:"location"`
	MinPrice   float64    `json:"min_price" dynamodbav:"min_price"`
	MaxPrice   float64    `json:"max_price" dynamodbav:"max_price"`
	LastSentAt *time.Time `json:"last_sent_at,omitempty" dynamodbav:"last_sent_at,omitempty"`
	CreatedAt  time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// CreateAlertRequest is the create-alert payload. Location may be empty,
// which matches every listing.
type CreateAlertRequest struct {
	Location string  `json:"location"`
	MinPrice float64 `json:"min_price" validate:"gte=0"`
	MaxPrice float64 `json:"max_price" validate:"gte=0"`
}
