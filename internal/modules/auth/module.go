package auth

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/eduticket/eduticket-api/internal/modules/auth/application"
	"github.com/eduticket/eduticket-api/internal/modules/auth/infrastructure/persistence/postgres"
	auth_http "github.com/eduticket/eduticket-api/internal/modules/auth/interfaces/http"
)

type Module struct {
	service *application.AuthService
	handler *auth_http.AuthHandler
	repo    *postgres.PgUserRepository
}

func NewModule(db *sqlx.DB, jwtSecret string, jwtExpiry time.Duration, googleClientID string, logger zerolog.Logger) *Module {
	repo := postgres.NewPgUserRepository(db)
	service := application.NewAuthService(repo, jwtSecret, jwtExpiry, logger)
	handler := auth_http.NewAuthHandler(service, googleClientID)

	return &Module{service: service, handler: handler, repo: repo}
}

func (m *Module) Service() *application.AuthService {
	return m.service
}

func (m *Module) HTTPHandler() *auth_http.AuthHandler {
	return m.handler
}

// UserDirectory exposes email lookup to the notification module.
func (m *Module) UserDirectory() *postgres.PgUserRepository {
	return m.repo
}
