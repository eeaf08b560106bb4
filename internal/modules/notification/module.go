package notification

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduticket/eduticket-api/internal/modules/notification/application"
	"github.com/eduticket/eduticket-api/internal/modules/notification/domain"
	"github.com/eduticket/eduticket-api/internal/modules/notification/infrastructure/cache"
	"github.com/eduticket/eduticket-api/internal/modules/notification/infrastructure/email"
	notification_http "github.com/eduticket/eduticket-api/internal/modules/notification/interfaces/http"
	ws "github.com/eduticket/eduticket-api/internal/modules/notification/infrastructure/websocket"
	"github.com/eduticket/eduticket-api/internal/modules/notification/infrastructure/persistence/postgres"
)

// Deps are the collaborators the notification module needs from the rest
// of the application.
type Deps struct {
	DB      *sqlx.DB
	Redis   *redis.Client // optional; unread counts skip caching when nil
	Tickets domain.TicketDirectory
	Users   application.UserDirectory
	SMTP    *email.Config // optional; email channel is a no-op when nil
	BaseURL string
	Logger  zerolog.Logger
}

type Module struct {
	notifier *application.Notifier
	service  *application.NotificationService
	handler  *notification_http.NotificationHandler
	hub      *ws.Hub
	dispatch *application.Dispatcher
}

func NewModule(deps Deps) (*Module, error) {
	repo := postgres.NewPgNotificationRepository(deps.DB)

	hub := ws.NewHub(deps.Logger)
	go hub.Run()

	var unreadCache application.UnreadCache
	if deps.Redis != nil {
		unreadCache = cache.NewRedisUnreadCache(deps.Redis, deps.Logger)
	}

	var mailer application.Mailer
	if deps.SMTP != nil {
		m, err := email.NewSMTPMailer(*deps.SMTP, deps.Logger)
		if err != nil {
			return nil, err
		}
		mailer = m
	}
	formatter := email.NewFormatter(deps.BaseURL)

	dispatcher := application.NewDispatcher(repo, hub, formatter, mailer, deps.Users, unreadCache, deps.Logger)
	resolver := application.NewRecipientResolver(deps.Tickets, deps.Logger)
	notifier := application.NewNotifier(resolver, dispatcher, deps.Logger)
	service := application.NewNotificationService(repo, unreadCache, hub, deps.Logger)
	handler := notification_http.NewNotificationHandler(service, hub)

	return &Module{
		notifier: notifier,
		service:  service,
		handler:  handler,
		hub:      hub,
		dispatch: dispatcher,
	}, nil
}

func (m *Module) Notifier() *application.Notifier {
	return m.notifier
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) Hub() *ws.Hub {
	return m.hub
}

// Close stops background delivery. Pending emails are drained first.
func (m *Module) Close() {
	m.dispatch.Wait()
	m.hub.Stop()
}
