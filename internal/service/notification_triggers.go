package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/expenso-app/expenso-backend/internal/model"
	"github.com/expenso-app/expenso-backend/internal/store"
)

// NotificationTrigger evaluates advisory output and time-of-day rules and
// records in-app notifications. Each trigger dedupes through the store so
// repeated evaluation (every dashboard load, every insight poll) cannot
// spam the user.
type NotificationTrigger struct {
	store  store.Store
	pusher *PushSender
	now    func() time.Time
}

func NewNotificationTrigger(st store.Store, pusher *PushSender) *NotificationTrigger {
	return &NotificationTrigger{
		store:  st,
		pusher: pusher,
		now:    time.Now,
	}
}

// PacingAlert records a budget-pacing warning. At most one alert is
// created per user per week; the dedup key is the week's Sunday start.
func (t *NotificationTrigger) PacingAlert(ctx context.Context, userID, insight string) error {
	if insight == "" {
		return nil
	}

	prefs, err := t.store.GetNotificationPreferences(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		// No saved preferences means alerts default on.
		prefs = &model.NotificationPreferences{UserID: userID, BudgetAlerts: true, DailyReminder: true}
	} else if err != nil {
		return fmt.Errorf("get preferences: %w", err)
	}
	if !prefs.BudgetAlerts {
		return nil
	}

	weekKey := WeekStart(t.now()).Format(model.DateLayout)
	exists, err := t.store.HasNotification(ctx, userID, model.NotificationTypePacingAlert, "week_start", weekKey, 7*24)
	if err != nil {
		return fmt.Errorf("check existing alert: %w", err)
	}
	if exists {
		return nil
	}

	notif := &model.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      model.NotificationTypePacingAlert,
		Title:     "Budget pacing alert",
		Message:   insight,
		CreatedAt: t.now(),
		Metadata:  map[string]string{"week_start": weekKey},
	}
	if err := t.store.CreateNotification(ctx, notif); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	log.Printf("[Notification] pacing alert created for user %s (week %s)", userID, weekKey)

	t.pusher.Send(ctx, userID, notif.Title, notif.Message)
	return nil
}

// DailyReminder nudges the user to log today's expenses. Fires only in
// the evening (20:00 or later, server-local time) and at most once per
// calendar day.
func (t *NotificationTrigger) DailyReminder(ctx context.Context, userID string) error {
	now := t.now()
	if now.Hour() < 20 {
		return nil
	}

	prefs, err := t.store.GetNotificationPreferences(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		prefs = &model.NotificationPreferences{UserID: userID, BudgetAlerts: true, DailyReminder: true}
	} else if err != nil {
		return fmt.Errorf("get preferences: %w", err)
	}
	if !prefs.DailyReminder {
		return nil
	}

	dayKey := now.Format(model.DateLayout)
	exists, err := t.store.HasNotification(ctx, userID, model.NotificationTypeDailyReminder, "day", dayKey, 24)
	if err != nil {
		return fmt.Errorf("check existing reminder: %w", err)
	}
	if exists {
		return nil
	}

	notif := &model.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      model.NotificationTypeDailyReminder,
		Title:     "Log today's expenses",
		Message:   "Don't forget to record what you spent today.",
		CreatedAt: now,
		Metadata:  map[string]string{"day": dayKey},
	}
	if err := t.store.CreateNotification(ctx, notif); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	log.Printf("[Notification] daily reminder created for user %s (%s)", userID, dayKey)

	t.pusher.Send(ctx, userID, notif.Title, notif.Message)
	return nil
}
