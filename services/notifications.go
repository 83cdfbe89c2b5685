package services

import (
	"encoding/json"
	"log"

	"arena-score-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService writes outbound notification rows for an external
// collaborator to deliver. Best effort: each notification is attempted once per
// triggering event, and a failed write is logged, never propagated — settlement
// must not abort because a notification could not be stored.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

func (s *NotificationService) Notify(tx *gorm.DB, recipientID, ntype, title, message string, payload map[string]interface{}) {
	body := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			log.Printf("[NOTIFY] ⚠️ Failed to encode payload for %s/%s: %v", recipientID, ntype, err)
		} else {
			body = string(raw)
		}
	}

	notification := models.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Type:        ntype,
		Title:       title,
		Message:     message,
		Payload:     body,
	}
	if err := tx.Create(&notification).Error; err != nil {
		log.Printf("[NOTIFY] ⚠️ Failed to store %s notification for %s: %v", ntype, recipientID, err)
	}
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(externalUserID string, limit int) ([]models.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	var notifications []models.Notification
	err := s.DB.Where("recipient_id = ?", externalUserID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}
