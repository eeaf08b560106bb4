package ticket

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	authapp "github.com/eduticket/eduticket-api/internal/modules/auth/application"
	notifdomain "github.com/eduticket/eduticket-api/internal/modules/notification/domain"
	"github.com/eduticket/eduticket-api/internal/modules/ticket/application"
	"github.com/eduticket/eduticket-api/internal/modules/ticket/domain"
	"github.com/eduticket/eduticket-api/internal/modules/ticket/infrastructure/persistence/postgres"
	"github.com/eduticket/eduticket-api/internal/modules/ticket/infrastructure/triage"
	tickethttp "github.com/eduticket/eduticket-api/internal/modules/ticket/interfaces/http"
)

// Deps carries everything the ticket module needs from the outside.
// Notifier and Blobs are optional; the service degrades gracefully
// without them.
type Deps struct {
	DB             *sqlx.DB
	Notifier       application.EventPublisher
	Blobs          application.BlobStore
	Auth           *authapp.AuthService
	TriageEndpoint string
	TriageTimeout  time.Duration
	Logger         zerolog.Logger
}

type Module struct {
	service *application.TicketService
	handler *tickethttp.TicketHandler
	tickets *postgres.PgTicketRepository
}

func NewModule(deps Deps) *Module {
	ticketRepo := postgres.NewPgTicketRepository(deps.DB)
	commentRepo := postgres.NewPgCommentRepository(deps.DB)
	attachmentRepo := postgres.NewPgAttachmentRepository(deps.DB)

	var triageClient domain.TriageClient
	if deps.TriageEndpoint != "" {
		triageClient = triage.NewClient(deps.TriageEndpoint, deps.TriageTimeout, deps.Logger)
	}

	service := application.NewTicketService(
		ticketRepo,
		commentRepo,
		attachmentRepo,
		triageClient,
		deps.Notifier,
		deps.Blobs,
		deps.TriageTimeout,
		deps.Logger,
	)

	return &Module{
		service: service,
		handler: tickethttp.NewTicketHandler(service, deps.Auth),
		tickets: ticketRepo,
	}
}

func (m *Module) Service() *application.TicketService { return m.service }

// SetNotifier attaches the notification publisher once it exists.
func (m *Module) SetNotifier(n application.EventPublisher) { m.service.SetNotifier(n) }

func (m *Module) HTTPHandler() *tickethttp.TicketHandler { return m.handler }

// TicketDirectory exposes ticket head lookups to the notification module.
func (m *Module) TicketDirectory() notifdomain.TicketDirectory { return m.tickets }
