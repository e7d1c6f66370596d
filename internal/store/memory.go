package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/expenso-app/expenso-backend/internal/model"
	"github.com/google/uuid"
)

// MemoryStore implements Store with in-memory maps. Used for local
// development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	transactions  map[string]*model.Transaction
	notifications map[string]*model.Notification
	preferences   map[string]*model.NotificationPreferences

	// now is swappable so tests can pin the dedup-window cutoff.
	now func() time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions:  make(map[string]*model.Transaction),
		notifications: make(map[string]*model.Notification),
		preferences:   make(map[string]*model.NotificationPreferences),
		now:           time.Now,
	}
}

// CreateTransaction stores a transaction, assigning an ID and CreatedAt if
// the caller left them empty.
func (s *MemoryStore) CreateTransaction(_ context.Context, txn *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = s.now()
	}
	cp := *txn
	s.transactions[txn.ID] = &cp
	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *MemoryStore) GetTransaction(_ context.Context, txnID string) (*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.transactions[txnID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *txn
	return &cp, nil
}

// ListTransactions returns all of a user's transactions, newest date first.
func (s *MemoryStore) ListTransactions(_ context.Context, userID string) ([]*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Transaction
	for _, txn := range s.transactions {
		if txn.UserID == userID {
			cp := *txn
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteTransaction removes a transaction. Hard delete, no undo.
func (s *MemoryStore) DeleteTransaction(_ context.Context, txnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[txnID]; !ok {
		return ErrNotFound
	}
	delete(s.transactions, txnID)
	return nil
}

// CreateNotification stores a notification.
func (s *MemoryStore) CreateNotification(_ context.Context, notification *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = s.now()
	}
	cp := *notification
	s.notifications[notification.ID] = &cp
	return nil
}

// GetNotification retrieves a notification by ID.
func (s *MemoryStore) GetNotification(_ context.Context, notificationID string) (*model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[notificationID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *MemoryStore) ListNotifications(_ context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Notification
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		cp := *n
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// MarkNotificationRead marks a single notification as read.
func (s *MemoryStore) MarkNotificationRead(_ context.Context, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[notificationID]
	if !ok {
		return ErrNotFound
	}
	n.IsRead = true
	return nil
}

// MarkAllNotificationsRead marks every notification for the user as read.
func (s *MemoryStore) MarkAllNotificationsRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// HasNotification reports whether a matching notification exists within the
// dedup window.
func (s *MemoryStore) HasNotification(_ context.Context, userID string, notificationType model.NotificationType, metaKey, metaValue string, withinHours int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-time.Duration(withinHours) * time.Hour)
	for _, n := range s.notifications {
		if n.UserID != userID || n.Type != notificationType {
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

// GetNotificationPreferences returns a user's preferences, or ErrNotFound if
// they were never set.
func (s *MemoryStore) GetNotificationPreferences(_ context.Context, userID string) (*model.NotificationPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefs, ok := s.preferences[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *prefs
	return &cp, nil
}

// UpdateNotificationPreferences upserts a user's preferences.
func (s *MemoryStore) UpdateNotificationPreferences(_ context.Context, prefs *model.NotificationPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *prefs
	s.preferences[prefs.UserID] = &cp
	return nil
}
