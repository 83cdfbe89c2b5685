package models

import (
	"time"
)

// Prediction is a user's forecast for one fight. One per user per fight, enforced
// by the composite unique index. The scorer mutates it exactly once: Processed is
// a one-way latch, a retry that finds it true skips the row entirely.
type Prediction struct {
	ID             string `json:"id" gorm:"primaryKey"`
	ExternalUserID string `json:"external_user_id" gorm:"not null;uniqueIndex:idx_user_fight"`
	FightID        string `json:"fight_id" gorm:"not null;uniqueIndex:idx_user_fight"`
	EventID        string `json:"event_id" gorm:"not null;index"` // denormalized for event folds

	// The pick
	PickedWinner    string  `json:"picked_winner" gorm:"not null"`
	PredictedMethod *string `json:"predicted_method,omitempty"`
	PredictedRound  *int    `json:"predicted_round,omitempty"`
	Confidence      int     `json:"confidence" gorm:"default:100"` // 0–100
	OddsAtPick      *int    `json:"odds_at_pick,omitempty"`        // american odds of the picked side at submission

	// Scoring output — written once by the scorer
	CorrectWinner      bool    `json:"correct_winner" gorm:"default:false"`
	CorrectMethod      bool    `json:"correct_method" gorm:"default:false"`
	CorrectRound       bool    `json:"correct_round" gorm:"default:false"`
	MethodMultiplier   float64 `json:"method_multiplier" gorm:"default:0"`
	RoundMultiplier    float64 `json:"round_multiplier" gorm:"default:0"`
	UnderdogMultiplier float64 `json:"underdog_multiplier" gorm:"default:0"`
	AwardedPoints      int64   `json:"awarded_points" gorm:"default:0"`
	AwardedXP          int64   `json:"awarded_xp" gorm:"default:0"`

	Processed   bool       `json:"processed" gorm:"default:false;index"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	Timestamps
}

// Perfect reports a fully correct pick: winner, method and round all right.
func (p *Prediction) Perfect() bool {
	return p.CorrectWinner && p.CorrectMethod && p.CorrectRound
}
