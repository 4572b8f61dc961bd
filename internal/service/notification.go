package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/perchsocial/perch/internal/model"
)

type NotificationService struct {
	notifications NotificationRepository
}

func NewNotificationService(notifications NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns the caller's notifications, newest first, and marks the
// unread ones as read.
func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID) ([]model.Notification, error) {
	items, err := s.notifications.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	if err := s.notifications.MarkRead(ctx, userID); err != nil {
		return nil, fmt.Errorf("marking notifications read: %w", err)
	}
	if items == nil {
		items = []model.Notification{}
	}
	return items, nil
}

// Clear deletes every notification owned by the caller.
func (s *NotificationService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.notifications.DeleteByRecipient(ctx, userID); err != nil {
		return fmt.Errorf("deleting notifications: %w", err)
	}
	return nil
}
