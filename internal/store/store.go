package store

import (
	"context"
	"errors"

	"github.com/expenso-app/expenso-backend/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface used by the service layer.
// Transaction listing is whole-list per user: no pagination, no streaming.
type Store interface {
	// Transaction operations. Transactions are immutable: create, read,
	// hard-delete only.
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, txnID string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]*model.Transaction, error)
	DeleteTransaction(ctx context.Context, txnID string) error

	// Notification operations
	CreateNotification(ctx context.Context, notification *model.Notification) error
	GetNotification(ctx context.Context, notificationID string) (*model.Notification, error)
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	// HasNotification reports whether a notification of the given type with a
	// matching metadata entry was created for the user within the last
	// withinHours hours. Used to deduplicate alerts.
	HasNotification(ctx context.Context, userID string, notificationType model.NotificationType, metaKey, metaValue string, withinHours int) (bool, error)

	// Notification preferences
	GetNotificationPreferences(ctx context.Context, userID string) (*model.NotificationPreferences, error)
	UpdateNotificationPreferences(ctx context.Context, prefs *model.NotificationPreferences) error
}
