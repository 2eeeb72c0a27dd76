package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskhub/internal/apperrors"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"
)

type NotificationService struct {
	store     repository.Store
	publisher Publisher
	now       func() time.Time
}

// Append records a notification and pushes it to the recipient's open
// connections. Failures are logged and never returned to the caller.
func (s *NotificationService) Append(ctx context.Context, recipientID string, typ models.NotificationType, message, resourceID string) {
	n := &models.Notification{
		RecipientID: recipientID,
		Type:        typ,
		Message:     message,
		ResourceID:  resourceID,
	}
	n.ApplyDefaults(s.now())
	if err := s.store.Notifications().Create(ctx, n); err != nil {
		logger.ErrorLogger.Error("Failed to append notification",
			zap.Error(err),
			zap.String("recipient_id", recipientID),
			zap.String("type", string(typ)),
		)
		return
	}
	if s.publisher != nil {
		s.publisher.Publish(recipientID, n)
	}
}

func (s *NotificationService) List(ctx context.Context, p Principal, unreadOnly bool) ([]models.Notification, error) {
	return s.store.Notifications().ListByRecipient(ctx, p.UserID, unreadOnly)
}

// owned loads a notification addressed to the caller. Anyone else's
// notification is reported as missing.
func (s *NotificationService) owned(ctx context.Context, p Principal, id string) (*models.Notification, error) {
	n, err := s.store.Notifications().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != p.UserID {
		return nil, apperrors.NotFound("notification", id)
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, p Principal, id string) (*models.Notification, error) {
	n, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Notifications().MarkRead(ctx, id); err != nil {
		return nil, err
	}
	n.Read = true
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, p Principal) (int64, error) {
	return s.store.Notifications().MarkAllRead(ctx, p.UserID)
}

func (s *NotificationService) Delete(ctx context.Context, p Principal, id string) error {
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	return s.store.Notifications().Delete(ctx, id)
}
