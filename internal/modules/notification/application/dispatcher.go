package application

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduticket/eduticket-api/internal/modules/notification/domain"
)

// RealtimePusher delivers an in-app payload to a connected user.
type RealtimePusher interface {
	SendToUser(userID uuid.UUID, message []byte)
}

// EmailFormatter renders a request into a subject and HTML body. It must
// be pure and total.
type EmailFormatter interface {
	Format(req domain.Request) (subject, html string)
}

// Mailer hands a rendered email to the transport. Delivery is best-effort;
// the dispatcher never surfaces transport failures.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, html string) error
}

// UserDirectory resolves a recipient's email address.
type UserDirectory interface {
	Email(ctx context.Context, userID uuid.UUID) (string, error)
}

// Dispatcher fans a request out into one persisted record per recipient
// and triggers secondary channels. Every failure below this boundary is
// caught and logged; nothing here may abort the business operation that
// triggered the send.
type Dispatcher struct {
	repo    domain.NotificationRepository
	pusher  RealtimePusher
	format  EmailFormatter
	mailer  Mailer
	users   UserDirectory
	cache   UnreadCache
	logger  zerolog.Logger
	metrics *dispatchMetrics

	// wg tracks in-flight email goroutines so tests can drain them.
	wg sync.WaitGroup
}

func NewDispatcher(
	repo domain.NotificationRepository,
	pusher RealtimePusher,
	format EmailFormatter,
	mailer Mailer,
	users UserDirectory,
	cache UnreadCache,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		pusher:  pusher,
		format:  format,
		mailer:  mailer,
		users:   users,
		cache:   cache,
		logger:  logger.With().Str("component", "dispatcher").Logger(),
		metrics: metrics(),
	}
}

// Send persists one record per recipient and triggers secondary channels.
// An empty recipient set is a successful no-op. The returned error exists
// for logging at the call site only; by contract callers proceed
// regardless of it.
func (d *Dispatcher) Send(ctx context.Context, req domain.Request) error {
	if len(req.Recipients) == 0 {
		return nil
	}

	req = withDefaults(req)
	now := time.Now().UTC()

	records := make([]domain.Notification, 0, len(req.Recipients))
	for _, userID := range req.Recipients {
		records = append(records, domain.Notification{
			ID:                uuid.New(),
			UserID:            userID,
			Kind:              req.Kind,
			Title:             req.Title,
			Message:           req.Message,
			Priority:          req.Priority,
			TicketID:          req.TicketID,
			Metadata:          req.Metadata,
			Actions:           req.Actions,
			DeliveredChannels: req.Channels,
			IsRead:            false,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	if err := d.repo.InsertMany(ctx, records); err != nil {
		d.metrics.failed.WithLabelValues(string(req.Kind), "store").Inc()
		d.logger.Error().Err(err).
			Str("kind", string(req.Kind)).
			Int("recipients", len(records)).
			Msg("failed to persist notifications")
		return fmt.Errorf("dispatch %s: %w", req.Kind, err)
	}
	d.metrics.dispatched.WithLabelValues(string(req.Kind), string(domain.ChannelInApp)).
		Add(float64(len(records)))

	if d.cache != nil {
		d.cache.Invalidate(ctx, req.Recipients...)
	}

	for _, record := range records {
		d.push(record)
	}

	if req.HasChannel(domain.ChannelEmail) {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			// Email is detached from the request context: the triggering
			// HTTP request may already be finished.
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			d.sendEmail(ctx, req)
		}()
	}

	return nil
}

// SendBatch fires every request concurrently. Individual failures are
// logged and counted but never fail the batch.
func (d *Dispatcher) SendBatch(ctx context.Context, reqs []domain.Request) {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, req := range reqs {
		wg.Add(1)
		go func(req domain.Request) {
			defer wg.Done()
			if err := d.Send(ctx, req); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(req)
	}
	wg.Wait()

	if failed > 0 {
		d.logger.Warn().
			Int("failed", failed).
			Int("total", len(reqs)).
			Msg("some notifications in batch failed to dispatch")
	}
}

// Wait blocks until all in-flight secondary deliveries have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) push(record domain.Notification) {
	if d.pusher == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		d.logger.Warn().Err(err).Str("notification_id", record.ID.String()).
			Msg("failed to encode realtime payload")
		return
	}
	d.pusher.SendToUser(record.UserID, payload)
}

func (d *Dispatcher) sendEmail(ctx context.Context, req domain.Request) {
	if d.mailer == nil || d.format == nil {
		return
	}

	var to []string
	for _, userID := range req.Recipients {
		addr, err := d.users.Email(ctx, userID)
		if err != nil {
			d.logger.Warn().Err(err).Str("user_id", userID.String()).
				Msg("could not resolve recipient email")
			continue
		}
		if addr != "" {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return
	}

	subject, html := d.format.Format(req)
	if err := d.mailer.Send(ctx, to, subject, html); err != nil {
		d.metrics.failed.WithLabelValues(string(req.Kind), string(domain.ChannelEmail)).Inc()
		d.logger.Warn().Err(err).
			Str("kind", string(req.Kind)).
			Int("recipients", len(to)).
			Msg("email delivery failed")
		return
	}
	d.metrics.dispatched.WithLabelValues(string(req.Kind), string(domain.ChannelEmail)).
		Add(float64(len(to)))
}

func withDefaults(req domain.Request) domain.Request {
	defPriority, defChannels := req.Kind.Defaults()
	if req.Priority == "" {
		req.Priority = defPriority
	}
	if len(req.Channels) == 0 {
		req.Channels = defChannels
	}
	if req.Title == "" && req.Message == "" {
		content := ResolveContent(req.Kind, domain.TitleContext{})
		req.Title = content.Title
		req.Message = content.Message
	}
	return req
}
