package domain

import "time"

type Favorite struct {
	FavoriteID string    `json:"id" dynamodbav:"favorite_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	ListingID  int       `json:"listing_id" dynamodbav:"listing_id"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}

// FavoriteCount ranks a listing by how many users favorited it.
type FavoriteCount struct {
	ListingID int `json:"listing_id"`
	Count     int `json:"count"`
}
