package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/eduticket/eduticket-api/internal/gateway"
	"github.com/eduticket/eduticket-api/internal/gateway/middleware"
	"github.com/eduticket/eduticket-api/internal/modules/auth"
	"github.com/eduticket/eduticket-api/internal/modules/filestorage"
	"github.com/eduticket/eduticket-api/internal/modules/notification"
	"github.com/eduticket/eduticket-api/internal/modules/notification/infrastructure/email"
	"github.com/eduticket/eduticket-api/internal/modules/ticket"
	"github.com/eduticket/eduticket-api/internal/shared/infrastructure/config"
	"github.com/eduticket/eduticket-api/internal/shared/infrastructure/database"
	"github.com/eduticket/eduticket-api/pkg/migration"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	// Funnel anything still using the standard logger through zerolog.
	log.SetFlags(0)
	log.SetOutput(logger)

	cfg := config.Load()

	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()

	dbURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.DBName, cfg.Database.SSLMode,
	)
	if err := migration.AutoMigrate(dbURL, "migrations", logger); err != nil {
		logger.Fatal().Err(err).Msg("database migration failed")
	}

	redisClient, err := database.NewRedis(cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, unread counts will not be cached")
		redisClient = nil
	}

	storageModule, err := filestorage.NewModule(context.Background(), cfg.FileStorage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize file storage")
	}

	authModule := auth.NewModule(db, cfg.JWT.Secret, cfg.JWT.Expiry, cfg.Google.ClientID, logger)

	var smtpCfg *email.Config
	if cfg.SMTP.Host != "" {
		smtpCfg = &email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}
	}

	// The notification module needs ticket head lookups, so build the
	// ticket module's repositories first through its own constructor and
	// hand the directory across.
	ticketModule := ticket.NewModule(ticket.Deps{
		DB:             db,
		Blobs:          storageModule.Service(),
		Auth:           authModule.Service(),
		TriageEndpoint: cfg.Triage.Endpoint,
		TriageTimeout:  cfg.Triage.Timeout,
		Logger:         logger,
	})

	notificationModule, err := notification.NewModule(notification.Deps{
		DB:      db,
		Redis:   redisClient,
		Tickets: ticketModule.TicketDirectory(),
		Users:   authModule.UserDirectory(),
		SMTP:    smtpCfg,
		BaseURL: cfg.Server.BaseURL,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize notifications")
	}
	defer notificationModule.Close()

	ticketModule.SetNotifier(notificationModule.Notifier())

	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      middleware.NewAuthMiddleware(cfg.JWT.Secret),
		TicketHandler:       ticketModule.HTTPHandler(),
		NotificationHandler: notificationModule.HTTPHandler(),
	})

	var handler http.Handler = mux
	handler = middleware.PrometheusMiddleware(handler)
	handler = middleware.CORSMiddleware(handler, cfg.Server.AllowedOrigins)

	server := gateway.NewServer(cfg.Server.Port, handler, logger)
	if err := server.Start(); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
