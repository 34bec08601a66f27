// Package notify is the sink for user-facing notifications produced by order
// status changes. Delivery is fire-and-forget: a failure here must never roll
// back the transition that triggered it.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ifixzone/shop/internal/logging"
	"github.com/ifixzone/shop/internal/models"
	"github.com/ifixzone/shop/internal/mykafka"
)

type Notifier struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// Notify persists the notification row and publishes an event for external
// fan-out (email/push). Errors are logged and swallowed.
func (n *Notifier) Notify(ctx context.Context, userID uint, content string) {
	if n == nil {
		return
	}
	l := logging.FromContext(ctx)

	notification := models.Notification{
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := n.DB.WithContext(ctx).Create(&notification).Error; err != nil {
		l.Warn("notification persist failed", "user_id", userID, "error", err)
		return
	}

	if n.Producer == nil {
		return
	}

	event := map[string]any{
		"type":            "notification_created",
		"event_id":        uuid.NewString(),
		"notification_id": notification.ID,
		"user_id":         userID,
		"content":         content,
	}
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := n.Producer.PublishEvent(publishCtx, "notification_events", fmt.Sprint(userID), event); err != nil {
		l.Warn("notification publish failed", "user_id", userID, "error", err)
	}
}

// List returns the user's notifications newest first.
func (n *Notifier) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	var out []models.Notification
	err := n.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flags one of the user's notifications as read. Unknown ids are a
// no-op.
func (n *Notifier) MarkRead(ctx context.Context, userID, notificationID uint) error {
	return n.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}
