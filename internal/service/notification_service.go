package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/expenso-app/expenso-backend/internal/model"
	"github.com/expenso-app/expenso-backend/internal/store"
)

// NotificationService exposes the in-app notification feed and per-user
// delivery preferences.
type NotificationService struct {
	store store.Store
}

func NewNotificationService(st store.Store) *NotificationService {
	return &NotificationService{store: st}
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	return s.store.ListNotifications(ctx, userID, unreadOnly)
}

// MarkRead marks one of the user's notifications read. A notification
// belonging to someone else is reported as missing, same as transaction
// deletion.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return store.ErrNotFound
	}
	return s.store.MarkNotificationRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllNotificationsRead(ctx, userID)
}

// GetPreferences returns the user's preferences, falling back to defaults
// (alerts and reminders on, push off) when none have been saved yet.
func (s *NotificationService) GetPreferences(ctx context.Context, userID string) (*model.NotificationPreferences, error) {
	prefs, err := s.store.GetNotificationPreferences(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &model.NotificationPreferences{
			UserID:        userID,
			BudgetAlerts:  true,
			DailyReminder: true,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, userID string, prefs *model.NotificationPreferences) error {
	prefs.UserID = userID
	return s.store.UpdateNotificationPreferences(ctx, prefs)
}
