package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/expenso-app/expenso-backend/internal/model"
	"github.com/expenso-app/expenso-backend/internal/store"
)

func newTestTrigger(t *testing.T, now time.Time) (*NotificationTrigger, *store.MockStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	trigger := NewNotificationTrigger(mockStore, nil)
	trigger.now = func() time.Time { return now }
	return trigger, mockStore
}

func enabledPrefs() *model.NotificationPreferences {
	return &model.NotificationPreferences{
		UserID:        "user-123",
		BudgetAlerts:  true,
		DailyReminder: true,
	}
}

func TestPacingAlert(t *testing.T) {
	t.Run("creates one alert per week", func(t *testing.T) {
		trigger, mockStore := newTestTrigger(t, wednesday)

		mockStore.EXPECT().
			GetNotificationPreferences(gomock.Any(), "user-123").
			Return(enabledPrefs(), nil)
		mockStore.EXPECT().
			HasNotification(gomock.Any(), "user-123", model.NotificationTypePacingAlert, "week_start", "2025-03-02", 168).
			Return(false, nil)
		mockStore.EXPECT().
			CreateNotification(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, n *model.Notification) error {
				if n.Type != model.NotificationTypePacingAlert {
					t.Errorf("expected pacing_alert type, got %q", n.Type)
				}
				if n.Metadata["week_start"] != "2025-03-02" {
					t.Errorf("expected week_start metadata 2025-03-02, got %q", n.Metadata["week_start"])
				}
				if n.Message == "" {
					t.Error("expected the insight text as message")
				}
				return nil
			})

		if err := trigger.PacingAlert(context.Background(), "user-123", "Slow down, 60% gone already."); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("deduped within the same week", func(t *testing.T) {
		trigger, mockStore := newTestTrigger(t, wednesday)

		mockStore.EXPECT().
			GetNotificationPreferences(gomock.Any(), "user-123").
			Return(enabledPrefs(), nil)
		mockStore.EXPECT().
			HasNotification(gomock.Any(), "user-123", model.NotificationTypePacingAlert, "week_start", "2025-03-02", 168).
			Return(true, nil)

		if err := trigger.PacingAlert(context.Background(), "user-123", "Slow down."); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("respects disabled budget alerts", func(t *testing.T) {
		trigger, mockStore := newTestTrigger(t, wednesday)

		prefs := enabledPrefs()
		prefs.BudgetAlerts = false
		mockStore.EXPECT().
			GetNotificationPreferences(gomock.Any(), "user-123").
			Return(prefs, nil)

		if err := trigger.PacingAlert(context.Background(), "user-123", "Slow down."); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty insight is a no-op", func(t *testing.T) {
		trigger, _ := newTestTrigger(t, wednesday)
		if err := trigger.PacingAlert(context.Background(), "user-123", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("defaults apply without saved preferences", func(t *testing.T) {
		trigger, mockStore := newTestTrigger(t, wednesday)

		mockStore.EXPECT().
			GetNotificationPreferences(gomock.Any(), "user-123").
			Return(nil, store.ErrNotFound)
		mockStore.EXPECT().
			HasNotification(gomock.Any(), "user-123", model.NotificationTypePacingAlert, "week_start", "2025-03-02", 168).
			Return(false, nil)
		mockStore.EXPECT().
			CreateNotification(gomock.Any(), gomock.Any()).
			Return(nil)

		if err := trigger.PacingAlert(context.Background(), "user-123", "Slow down."); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestDailyReminder(t *testing.T) {
	evening := time.Date(2025, 3, 5, 20, 30, 0, 0, time.UTC)

	t.Run("fires in the evening", func(t *testing.T) {
		trigger, mockStore := newTestTrigger(t, evening)

		mockStore.EXPECT().
			GetNotificationPreferences(gomock.Any(), "user-123").
			Return(enabledPrefs(), nil)
		mockStore.EXPECT().
			HasNotification(gomock.Any(), "user-123", model.NotificationTypeDailyReminder, "day", "2025-03-05", 24).
			Return(false, nil)
		mockStore.EXPECT().
			CreateNotification(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, n *model.Notification) error {
				if n.Type != model.NotificationTypeDailyReminder {
					t.Errorf("expected daily_reminder type, got %q", n.Type)
				}
				if n.Metadata["day"] != "2025-03-05" {
					t.Errorf("expected day metadata 2025-03-05, got %q", n.Metadata["day"])
				}
				return nil
			})

		if err := trigger.DailyReminder(context.Background(), "user-123"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("silent before 8 PM", func(t *testing.T) {
		trigger, _ := newTestTrigger(t, wednesday) // midday
		if err := trigger.DailyReminder(context.Background(), "user-123"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("deduped within the same day", func(t *testing.T) {
		trigger, mockStore := newTestTrigger(t, evening)

		mockStore.EXPECT().
			GetNotificationPreferences(gomock.Any(), "user-123").
			Return(enabledPrefs(), nil)
		mockStore.EXPECT().
			HasNotification(gomock.Any(), "user-123", model.NotificationTypeDailyReminder, "day", "2025-03-05", 24).
			Return(true, nil)

		if err := trigger.DailyReminder(context.Background(), "user-123"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("respects disabled reminders", func(t *testing.T) {
		trigger, mockStore := newTestTrigger(t, evening)

		prefs := enabledPrefs()
		prefs.DailyReminder = false
		mockStore.EXPECT().
			GetNotificationPreferences(gomock.Any(), "user-123").
			Return(prefs, nil)

		if err := trigger.DailyReminder(context.Background(), "user-123"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
