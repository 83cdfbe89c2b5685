package models

// UserProfile owns a user's cumulative Arena statistics (denormalized for
// performance). Updated incrementally by the profile aggregator, never recomputed
// from scratch. Everything here is monotonically increasing except the two
// "current streak" fields, which reset on a miss; the "best" fields never decrease.
type UserProfile struct {
	ID             string `json:"id" gorm:"primaryKey"`
	ExternalUserID string `json:"external_user_id" gorm:"uniqueIndex;not null"`

	TotalPoints int64 `json:"total_points" gorm:"default:0"`
	TotalXP     int64 `json:"total_xp" gorm:"default:0"`

	TotalPredictions   int64 `json:"total_predictions" gorm:"default:0"`
	CorrectPredictions int64 `json:"correct_predictions" gorm:"default:0"`
	PerfectPredictions int64 `json:"perfect_predictions" gorm:"default:0"`

	CurrentStreak int64 `json:"current_streak" gorm:"default:0"`
	BestStreak    int64 `json:"best_streak" gorm:"default:0"`

	// Main-event-only streak: advances and resets only on main-event picks,
	// untouched by the rest of the card.
	CurrentMainEventStreak int64 `json:"current_main_event_streak" gorm:"default:0"`
	BestMainEventStreak    int64 `json:"best_main_event_streak" gorm:"default:0"`

	// Specialty counters: correct picks that also matched the specialty
	UnderdogHits   int64 `json:"underdog_hits" gorm:"default:0"`
	KOHits         int64 `json:"ko_hits" gorm:"default:0"`
	SubmissionHits int64 `json:"submission_hits" gorm:"default:0"`
	DecisionHits   int64 `json:"decision_hits" gorm:"default:0"`

	Timestamps
}

// Accuracy returns the correct-pick percentage over all scored predictions.
func (p *UserProfile) Accuracy() float64 {
	if p.TotalPredictions == 0 {
		return 0
	}
	return float64(p.CorrectPredictions) * 100 / float64(p.TotalPredictions)
}
