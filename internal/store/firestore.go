package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/expenso-app/expenso-backend/internal/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	transactionsCollection  = "transactions"
	notificationsCollection = "notifications"
	preferencesCollection   = "notificationPreferences"
)

// FirestoreStore implements the Store interface using Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// CreateTransaction writes a transaction document keyed by its ID.
func (s *FirestoreStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	_, err := s.client.Collection(transactionsCollection).Doc(txn.ID).Set(ctx, txn)
	return err
}

// GetTransaction retrieves a transaction from Firestore.
func (s *FirestoreStore) GetTransaction(ctx context.Context, txnID string) (*model.Transaction, error) {
	doc, err := s.client.Collection(transactionsCollection).Doc(txnID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	var txn model.Transaction
	if err := doc.DataTo(&txn); err != nil {
		return nil, fmt.Errorf("parse transaction: %w", err)
	}
	return &txn, nil
}

// ListTransactions returns every transaction for the user, newest date first.
// The query filters on UserId only and sorts in memory, so no composite
// index is required.
func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string) ([]*model.Transaction, error) {
	docs, err := s.client.Collection(transactionsCollection).
		Where("UserId", "==", userID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	result := make([]*model.Transaction, 0, len(docs))
	for _, doc := range docs {
		var txn model.Transaction
		if err := doc.DataTo(&txn); err != nil {
			return nil, fmt.Errorf("parse transaction %s: %w", doc.Ref.ID, err)
		}
		result = append(result, &txn)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteTransaction removes a transaction document. Hard delete.
func (s *FirestoreStore) DeleteTransaction(ctx context.Context, txnID string) error {
	_, err := s.client.Collection(transactionsCollection).Doc(txnID).Delete(ctx)
	return err
}

// CreateNotification writes a notification document.
func (s *FirestoreStore) CreateNotification(ctx context.Context, notification *model.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	_, err := s.client.Collection(notificationsCollection).Doc(notification.ID).Set(ctx, notification)
	return err
}

// GetNotification retrieves a notification document.
func (s *FirestoreStore) GetNotification(ctx context.Context, notificationID string) (*model.Notification, error) {
	doc, err := s.client.Collection(notificationsCollection).Doc(notificationID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	var n model.Notification
	if err := doc.DataTo(&n); err != nil {
		return nil, fmt.Errorf("parse notification: %w", err)
	}
	return &n, nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *FirestoreStore) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	query := s.client.Collection(notificationsCollection).Where("UserId", "==", userID)
	if unreadOnly {
		query = query.Where("IsRead", "==", false)
	}

	var result []*model.Notification
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list notifications: %w", err)
		}
		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, fmt.Errorf("parse notification %s: %w", doc.Ref.ID, err)
		}
		result = append(result, &n)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// MarkNotificationRead sets IsRead on a single notification.
func (s *FirestoreStore) MarkNotificationRead(ctx context.Context, notificationID string) error {
	_, err := s.client.Collection(notificationsCollection).Doc(notificationID).Update(ctx, []firestore.Update{
		{Path: "IsRead", Value: true},
	})
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

// MarkAllNotificationsRead sets IsRead on every unread notification for the user.
func (s *FirestoreStore) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	docs, err := s.client.Collection(notificationsCollection).
		Where("UserId", "==", userID).
		Where("IsRead", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("list unread notifications: %w", err)
	}
	for _, doc := range docs {
		if _, err := doc.Ref.Update(ctx, []firestore.Update{{Path: "IsRead", Value: true}}); err != nil {
			return fmt.Errorf("mark notification %s read: %w", doc.Ref.ID, err)
		}
	}
	return nil
}

// HasNotification reports whether a matching notification exists within the
// dedup window. Filters on UserId/Type and checks the time window and
// metadata in memory to keep the index requirements minimal.
func (s *FirestoreStore) HasNotification(ctx context.Context, userID string, notificationType model.NotificationType, metaKey, metaValue string, withinHours int) (bool, error) {
	docs, err := s.client.Collection(notificationsCollection).
		Where("UserId", "==", userID).
		Where("Type", "==", string(notificationType)).
		Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("query notifications: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(withinHours) * time.Hour)
	for _, doc := range docs {
		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			continue
		}
		if n.CreatedAt.Before(cutoff) {
			continue
		}
		if metaKey != "" && n.Metadata[metaKey] != metaValue {
			continue
		}
		return true, nil
	}
	return false, nil
}

// GetNotificationPreferences reads a user's preferences document.
func (s *FirestoreStore) GetNotificationPreferences(ctx context.Context, userID string) (*model.NotificationPreferences, error) {
	doc, err := s.client.Collection(preferencesCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get notification preferences: %w", err)
	}
	var prefs model.NotificationPreferences
	if err := doc.DataTo(&prefs); err != nil {
		return nil, fmt.Errorf("parse notification preferences: %w", err)
	}
	return &prefs, nil
}

// UpdateNotificationPreferences upserts a user's preferences document.
func (s *FirestoreStore) UpdateNotificationPreferences(ctx context.Context, prefs *model.NotificationPreferences) error {
	_, err := s.client.Collection(preferencesCollection).Doc(prefs.UserID).Set(ctx, prefs)
	return err
}
