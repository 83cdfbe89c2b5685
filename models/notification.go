package models

import (
	"time"
)

// Notification types emitted by the settlement pipeline.
const (
	NotificationAchievement    = "achievement_unlocked"
	NotificationPerfectCard    = "perfect_card"
	NotificationDuelResolved   = "duel_resolved"
	NotificationLeagueChampion = "league_champion"
)

// Notification is an outbound (recipient, type, title, message, payload) tuple.
// Delivery and display belong to an external collaborator; the engine only
// guarantees each one is attempted once per triggering event.
type Notification struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	RecipientID    string     `json:"recipient_id" gorm:"not null;index"`
	Type           string     `json:"type" gorm:"type:varchar(32);not null"`
	Title          string     `json:"title" gorm:"not null"`
	Message        string     `json:"message"`
	Payload        string     `json:"payload" gorm:"type:jsonb"`
	ReadAt         *time.Time `json:"read_at,omitempty"`

	Timestamps
}
