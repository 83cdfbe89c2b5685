package models

import (
	"time"
)

// AchievementRule: static rule table — adding an achievement is a data change,
// not a new code path. Threshold keys are profile stats; all keys must be met.
type AchievementRule struct {
	Code        string
	Name        string
	Description string
	Rarity      string // common, rare, epic, legendary
	Threshold   map[string]int64
}

// UserAchievement is an awarded instance. The (user, code) unique index is the
// idempotency guard: a duplicate insert is an expected no-op, never an error, and
// an unlock is never revoked even if the triggering stat later regresses.
type UserAchievement struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	ExternalUserID string    `json:"external_user_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	Code           string    `json:"code" gorm:"not null;uniqueIndex:idx_user_achievement"`
	AwardedAt      time.Time `json:"awarded_at" gorm:"autoCreateTime"`
	Metadata       string    `json:"metadata" gorm:"type:jsonb"` // e.g. {"event_id": "..."}
}

// AchievementRules is evaluated in order after every profile update.
var AchievementRules = []AchievementRule{
	{
		Code:        "FIRST_BLOOD",
		Name:        "First Blood",
		Description: "First correct pick",
		Rarity:      "common",
		Threshold:   map[string]int64{"correct_predictions": 1},
	},
	{
		Code:        "SHARP_10",
		Name:        "Sharp",
		Description: "10 correct picks",
		Rarity:      "common",
		Threshold:   map[string]int64{"correct_predictions": 10},
	},
	{
		Code:        "SHARP_50",
		Name:        "Oddsmaker's Nightmare",
		Description: "50 correct picks",
		Rarity:      "rare",
		Threshold:   map[string]int64{"correct_predictions": 50},
	},
	{
		Code:        "CRYSTAL_BALL",
		Name:        "Crystal Ball",
		Description: "5 perfect predictions (winner, method and round)",
		Rarity:      "epic",
		Threshold:   map[string]int64{"perfect_predictions": 5},
	},
	{
		Code:        "STREAK_5",
		Name:        "Heating Up",
		Description: "5-win streak",
		Rarity:      "common",
		Threshold:   map[string]int64{"best_streak": 5},
	},
	{
		Code:        "STREAK_10",
		Name:        "On Fire",
		Description: "10-win streak",
		Rarity:      "epic",
		Threshold:   map[string]int64{"best_streak": 10},
	},
	{
		Code:        "MAIN_EVENT_5",
		Name:        "Headliner",
		Description: "5 main events called in a row",
		Rarity:      "rare",
		Threshold:   map[string]int64{"best_main_event_streak": 5},
	},
	{
		Code:        "UNDERDOG_10",
		Name:        "Dog Whisperer",
		Description: "10 underdog picks landed",
		Rarity:      "epic",
		Threshold:   map[string]int64{"underdog_hits": 10},
	},
	{
		Code:        "FINISH_READER",
		Name:        "Finish Reader",
		Description: "10 KO/TKO calls landed",
		Rarity:      "rare",
		Threshold:   map[string]int64{"ko_hits": 10},
	},
	{
		Code:        "GRAPPLER_EYE",
		Name:        "Grappler's Eye",
		Description: "10 submission calls landed",
		Rarity:      "rare",
		Threshold:   map[string]int64{"submission_hits": 10},
	},
	{
		Code:        "VETERAN_ANALYST",
		Name:        "Veteran Analyst",
		Description: "70%+ accuracy over 50+ picks",
		Rarity:      "legendary",
		Threshold:   map[string]int64{"accuracy_pct": 70, "total_predictions": 50},
	},
}
