package service

import (
	"context"
	"log"

	"firebase.google.com/go/v4/messaging"

	"github.com/expenso-app/expenso-backend/internal/store"
)

// PushSender delivers notifications through Firebase Cloud Messaging.
// A nil messaging client (local development, no Firebase project) turns
// every Send into a no-op.
type PushSender struct {
	fcmClient *messaging.Client
	store     store.Store
}

func NewPushSender(client *messaging.Client, st store.Store) *PushSender {
	return &PushSender{
		fcmClient: client,
		store:     st,
	}
}

// Send pushes a notification if the user has push enabled and a token
// registered. Fire-and-forget: errors are logged but never returned, so
// a push outage cannot fail the triggering operation.
func (p *PushSender) Send(ctx context.Context, userID, title, body string) {
	if p == nil || p.fcmClient == nil {
		return
	}

	prefs, err := p.store.GetNotificationPreferences(ctx, userID)
	if err != nil || !prefs.PushEnabled || prefs.FCMToken == "" {
		return
	}

	message := &messaging.Message{
		Token: prefs.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	}
	if _, err := p.fcmClient.Send(ctx, message); err != nil {
		log.Printf("[Push] Failed to send push to user %s: %v", userID, err)
	}
}
