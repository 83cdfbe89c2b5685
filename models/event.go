package models

import (
	"time"
)

// Event lifecycle: open → settling → closed. The transition to "settling" happens
// fight by fight as results land; "closed" only after every fight is finished and
// event-level settlement (leaderboard, duels, leagues) has committed.
const (
	EventStatusOpen     = "open"
	EventStatusSettling = "settling"
	EventStatusClosed   = "closed"
)

const (
	FightStatusScheduled = "scheduled"
	FightStatusFinished  = "finished"
)

// Bout placement on the card. Only main events advance the main-event streak.
const (
	BoutMainEvent = "main_event"
	BoutCoMain    = "co_main"
	BoutMainCard  = "main_card"
	BoutPrelim    = "prelim"
)

// Recognized finish methods. Anything else coming from the results feed is scored
// as a winner-only hit and logged.
const (
	MethodKO         = "ko_tko"
	MethodSubmission = "submission"
	MethodDecision   = "decision"
)

// Event represents one fight card
type Event struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"not null"`
	Slug      string     `json:"slug" gorm:"uniqueIndex"`
	Promotion string     `json:"promotion"`
	StartTime time.Time  `json:"start_time" gorm:"not null"`
	Status    string     `json:"status" gorm:"type:varchar(16);default:'open';index"`
	SettledAt *time.Time `json:"settled_at,omitempty"`

	Fights []Fight `json:"fights,omitempty" gorm:"foreignKey:EventID"`

	Timestamps
}

// Fight is the unit of outcome. Created by the ingestion collaborator; transitions
// to "finished" exactly once when the results feed records a winner, then immutable
// except for the ScoredAt settlement marker.
type Fight struct {
	ID           string `json:"id" gorm:"primaryKey"`
	EventID      string `json:"event_id" gorm:"not null;index"`
	ExternalID   *string `json:"external_id,omitempty" gorm:"uniqueIndex"` // results feed identifier
	Fighter1     string `json:"fighter1" gorm:"not null"`
	Fighter2     string `json:"fighter2" gorm:"not null"`
	WeightClass  string `json:"weight_class"`
	Rounds       int    `json:"rounds" gorm:"default:3"`
	IsTitleFight bool   `json:"is_title_fight" gorm:"default:false"`
	BoutType     string `json:"bout_type" gorm:"type:varchar(16);default:'main_card'"`
	Status       string `json:"status" gorm:"type:varchar(16);default:'scheduled';index"`

	// Outcome — read-only facts once Status is "finished"
	Winner      *string `json:"winner,omitempty"`
	Method      *string `json:"method,omitempty"`
	EndingRound *int    `json:"ending_round,omitempty"`

	// Settlement marker: set once all predictions for this fight are scored
	ScoredAt *time.Time `json:"scored_at,omitempty" gorm:"index"`

	StartTime time.Time `json:"start_time"`

	Timestamps
}

// Finished reports whether the fight has a recorded outcome. Draws and no-contests
// never reach this state; they carry no winner and are never scored.
func (f *Fight) Finished() bool {
	return f.Status == FightStatusFinished && f.Winner != nil
}
