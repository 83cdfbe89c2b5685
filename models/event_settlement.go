package models

// EventSettlement is one user's derived result for one event: a pure fold over
// that user's predictions for the event. Unlike the other aggregates it is safe
// to recompute any number of times, so the leaderboard builder upserts it on the
// (event, user) unique index instead of guarding with a latch.
type EventSettlement struct {
	ID             string `json:"id" gorm:"primaryKey"`
	EventID        string `json:"event_id" gorm:"not null;uniqueIndex:idx_event_user"`
	ExternalUserID string `json:"external_user_id" gorm:"not null;uniqueIndex:idx_event_user"`

	TotalPoints  int64 `json:"total_points" gorm:"default:0"`
	CorrectPicks int64 `json:"correct_picks" gorm:"default:0"`
	TotalPicks   int64 `json:"total_picks" gorm:"default:0"`

	// PerfectCard: every single prediction the user made for the event had the
	// correct winner. Flipping false→true grants the one-time card bonus.
	PerfectCard bool `json:"perfect_card" gorm:"default:false"`

	Timestamps
}
