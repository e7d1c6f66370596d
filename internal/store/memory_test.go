package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/expenso-app/expenso-backend/internal/model"
)

func TestMemoryStore_Transactions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	older := &model.Transaction{
		UserID:    "user-123",
		Amount:    50,
		Type:      model.TransactionTypeExpense,
		Category:  "Food",
		Date:      "2025-03-01",
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	newer := &model.Transaction{
		UserID:    "user-123",
		Amount:    120,
		Type:      model.TransactionTypeExpense,
		Category:  "Transport",
		Date:      "2025-03-03",
		CreatedAt: time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
	}
	other := &model.Transaction{
		UserID:   "user-456",
		Amount:   999,
		Type:     model.TransactionTypeExpense,
		Category: "Rent",
		Date:     "2025-03-02",
	}
	for _, txn := range []*model.Transaction{older, newer, other} {
		if err := s.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("create: %v", err)
		}
		if txn.ID == "" {
			t.Fatal("expected assigned ID")
		}
	}

	txns, err := s.ListTransactions(ctx, "user-123")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions for user-123, got %d", len(txns))
	}
	if txns[0].Date != "2025-03-03" || txns[1].Date != "2025-03-01" {
		t.Errorf("expected newest date first, got %s then %s", txns[0].Date, txns[1].Date)
	}

	// Mutating a listed copy must not touch the stored record.
	txns[0].Amount = 0
	again, _ := s.GetTransaction(ctx, txns[0].ID)
	if again.Amount != 120 {
		t.Errorf("store record mutated through a returned copy: %v", again.Amount)
	}

	if err := s.DeleteTransaction(ctx, older.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTransaction(ctx, older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown ID, got %v", err)
	}
}

func TestMemoryStore_Notifications(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	alert := &model.Notification{
		UserID:   "user-123",
		Type:     model.NotificationTypePacingAlert,
		Title:    "Budget pacing alert",
		Message:  "Slow down.",
		Metadata: map[string]string{"week_start": "2025-03-02"},
	}
	if err := s.CreateNotification(ctx, alert); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := s.HasNotification(ctx, "user-123", model.NotificationTypePacingAlert, "week_start", "2025-03-02", 168)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !found {
		t.Error("expected dedup hit for same week")
	}

	found, err = s.HasNotification(ctx, "user-123", model.NotificationTypePacingAlert, "week_start", "2025-02-23", 168)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if found {
		t.Error("expected no hit for a different week")
	}

	found, err = s.HasNotification(ctx, "user-123", model.NotificationTypeDailyReminder, "week_start", "2025-03-02", 168)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if found {
		t.Error("expected no hit for a different type")
	}

	unread, err := s.ListNotifications(ctx, "user-123", true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("expected 1 unread notification, got %d", len(unread))
	}

	if err := s.MarkNotificationRead(ctx, alert.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, _ = s.ListNotifications(ctx, "user-123", true)
	if len(unread) != 0 {
		t.Errorf("expected no unread notifications after mark read, got %d", len(unread))
	}
	all, _ := s.ListNotifications(ctx, "user-123", false)
	if len(all) != 1 {
		t.Errorf("expected the read notification to remain listed, got %d", len(all))
	}
}

func TestMemoryStore_GetNotification(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	alert := &model.Notification{
		UserID: "user-123",
		Type:   model.NotificationTypePacingAlert,
		Title:  "Budget pacing alert",
	}
	if err := s.CreateNotification(ctx, alert); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetNotification(ctx, alert.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "user-123" || got.Title != "Budget pacing alert" {
		t.Errorf("notification mismatch: %+v", got)
	}

	if _, err := s.GetNotification(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown ID, got %v", err)
	}
}

func TestMemoryStore_HasNotificationWindow(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created := time.Date(2025, 3, 4, 20, 0, 0, 0, time.UTC)
	reminder := &model.Notification{
		UserID:    "user-123",
		Type:      model.NotificationTypeDailyReminder,
		Metadata:  map[string]string{"day": "2025-03-04"},
		CreatedAt: created,
	}
	if err := s.CreateNotification(ctx, reminder); err != nil {
		t.Fatalf("create: %v", err)
	}

	// One hour before the 24h window closes: still a hit.
	s.now = func() time.Time { return created.Add(23 * time.Hour) }
	found, err := s.HasNotification(ctx, "user-123", model.NotificationTypeDailyReminder, "day", "2025-03-04", 24)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !found {
		t.Error("expected hit inside the dedup window")
	}

	// One hour past the window: the record no longer dedupes.
	s.now = func() time.Time { return created.Add(25 * time.Hour) }
	found, err = s.HasNotification(ctx, "user-123", model.NotificationTypeDailyReminder, "day", "2025-03-04", 24)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if found {
		t.Error("expected no hit once the window has passed")
	}
}

func TestMemoryStore_Preferences(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.GetNotificationPreferences(ctx, "user-123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unset preferences, got %v", err)
	}

	prefs := &model.NotificationPreferences{
		UserID:       "user-123",
		BudgetAlerts: true,
		PushEnabled:  true,
		FCMToken:     "token-abc",
	}
	if err := s.UpdateNotificationPreferences(ctx, prefs); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.GetNotificationPreferences(ctx, "user-123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.BudgetAlerts || !got.PushEnabled || got.FCMToken != "token-abc" {
		t.Errorf("preferences round-trip mismatch: %+v", got)
	}
}
