package models

import (
	"time"
)

// Duel lifecycle. Only accepted duels are picked up by the resolver; the
// accepted → finalized transition is one-way and happens at most once.
const (
	DuelStatusPending   = "pending"
	DuelStatusAccepted  = "accepted"
	DuelStatusDeclined  = "declined"
	DuelStatusFinalized = "finalized"
)

// Duel is a head-to-head challenge between two users scoped to one event,
// settled by comparing their event point totals once the event closes.
type Duel struct {
	ID           string `json:"id" gorm:"primaryKey"`
	EventID      string `json:"event_id" gorm:"not null;index"`
	ChallengerID string `json:"challenger_id" gorm:"not null;index"`
	OpponentID   string `json:"opponent_id" gorm:"not null;index"`
	Status       string `json:"status" gorm:"type:varchar(16);default:'pending';index"`

	// Final snapshot, persisted at resolution
	ChallengerPoints  int64   `json:"challenger_points" gorm:"default:0"`
	OpponentPoints    int64   `json:"opponent_points" gorm:"default:0"`
	ChallengerCorrect int64   `json:"challenger_correct" gorm:"default:0"`
	OpponentCorrect   int64   `json:"opponent_correct" gorm:"default:0"`
	WinnerID          *string `json:"winner_id,omitempty"` // nil after finalization = drawn duel

	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`

	Timestamps
}
