package domain

import "time"

// Analytics event types recorded by the API and aggregated for the
// admin dashboard.
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventSearch   = "search"
)

type Event struct {
	EventID   string    `json:"id" dynamodbav:"event_id"`
	Type      string    `json:"type" dynamodbav:"type"`
	UserID    string    `json:"user_id,omitempty" dynamodbav:"user_id,omitempty"`
	Location  string    `json:"location,omitempty" dynamodbav:"location,omitempty"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

// LocationCount is an aggregated (location, occurrences) pair.
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}
