package models

import (
	"time"
)

// League is a persistent group of users competing on cumulative season points,
// with a standing champion defending the top spot across events.
type League struct {
	ID     string `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"not null"`
	Slug   string `json:"slug" gorm:"uniqueIndex"`
	Season int    `json:"season" gorm:"default:1"`

	ChampionID    *string `json:"champion_id,omitempty"`
	TitleDefenses int     `json:"title_defenses" gorm:"default:0"`

	Members []LeagueMembership `json:"members,omitempty" gorm:"foreignKey:LeagueID"`

	Timestamps
}

// LeagueMembership accumulates one member's season points and rank.
type LeagueMembership struct {
	ID             string `json:"id" gorm:"primaryKey"`
	LeagueID       string `json:"league_id" gorm:"not null;uniqueIndex:idx_league_member"`
	ExternalUserID string `json:"external_user_id" gorm:"not null;uniqueIndex:idx_league_member"`

	SeasonPoints int64     `json:"season_points" gorm:"default:0"`
	EventsPlayed int64     `json:"events_played" gorm:"default:0"`
	Rank         int       `json:"rank" gorm:"default:0"`
	JoinedAt     time.Time `json:"joined_at" gorm:"autoCreateTime"`

	Timestamps
}

// LeagueEventResult marks that one event's points were folded into one member's
// season total. Season accumulation is `total += delta`, the one additive update a
// uniqueness constraint alone cannot make idempotent, so this row is created first
// (insert-or-ignore on the composite index) and the add only happens when the
// insert actually landed.
type LeagueEventResult struct {
	ID             string `json:"id" gorm:"primaryKey"`
	LeagueID       string `json:"league_id" gorm:"not null;uniqueIndex:idx_league_member_event"`
	ExternalUserID string `json:"external_user_id" gorm:"not null;uniqueIndex:idx_league_member_event"`
	EventID        string `json:"event_id" gorm:"not null;uniqueIndex:idx_league_member_event"`

	PointsApplied int64 `json:"points_applied" gorm:"default:0"`

	Timestamps
}
