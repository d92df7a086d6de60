package http

import (
	"github.com/go-rentals-api/internal/infrastructure/catalog"
	"github.com/go-rentals-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-rentals-api/internal/infrastructure/jwt"
	"github.com/go-rentals-api/internal/infrastructure/smtp"
	"github.com/go-rentals-api/internal/transport/http/handler"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	VerificationRepo *dynamo.VerificationRepo
	FavoriteRepo     *dynamo.FavoriteRepo
	AlertRepo        *dynamo.AlertRepo
	EventRepo        *dynamo.EventRepo
	Catalog          *catalog.Store
	Mailer           smtp.Mailer
	JWTProvider      *jwtinfra.Provider
	Sweep            handler.SweepRunner
}
