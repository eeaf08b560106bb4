package application

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduticket/eduticket-api/internal/modules/notification/domain"
)

// UnreadCache is a best-effort counter cache. A miss or cache failure is
// never an error; the store stays authoritative.
type UnreadCache interface {
	Get(ctx context.Context, userID uuid.UUID) (int, bool)
	Set(ctx context.Context, userID uuid.UUID, count int)
	Invalidate(ctx context.Context, userIDs ...uuid.UUID)
}

// changeEvent tells connected clients that an existing record changed, so
// a second open tab can reconcile without polling. Inserts push the full
// record from the dispatcher; everything else goes through here.
type changeEvent struct {
	Event          string     `json:"event"`
	NotificationID *uuid.UUID `json:"notification_id,omitempty"`
}

const (
	eventRead    = "notification_read"
	eventReadAll = "notifications_read_all"
	eventDeleted = "notification_deleted"
)

// NotificationService serves the read/mutate side of a user's inbox.
type NotificationService struct {
	repo   domain.NotificationRepository
	cache  UnreadCache
	pusher RealtimePusher
	logger zerolog.Logger
}

func NewNotificationService(repo domain.NotificationRepository, cache UnreadCache, pusher RealtimePusher, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		cache:  cache,
		pusher: pusher,
		logger: logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Notification, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, userID, filter)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, notificationID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	s.pushChange(userID, changeEvent{Event: eventRead, NotificationID: &notificationID})
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	s.pushChange(userID, changeEvent{Event: eventReadAll})
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, notificationID, userID uuid.UUID) error {
	if err := s.repo.Delete(ctx, notificationID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	s.pushChange(userID, changeEvent{Event: eventDeleted, NotificationID: &notificationID})
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if s.cache != nil {
		if count, ok := s.cache.Get(ctx, userID); ok {
			return count, nil
		}
	}
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, userID, count)
	}
	return count, nil
}

func (s *NotificationService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

func (s *NotificationService) pushChange(userID uuid.UUID, evt changeEvent) {
	if s.pusher == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", evt.Event).
			Msg("failed to encode change event")
		return
	}
	s.pusher.SendToUser(userID, payload)
}
