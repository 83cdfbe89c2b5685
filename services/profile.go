package services

import (
	"fmt"

	"arena-score-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileService folds scored predictions into each user's running statistics.
// The fold is incremental — profiles are never recomputed from scratch.
type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// EnsureProfile loads the user's profile under a row lock, creating it on
// first touch. The lock matters: two fights for the same user can score in
// overlapping runs, and the fold in ApplyScoredPrediction is read-modify-write.
func (s *ProfileService) EnsureProfile(tx *gorm.DB, externalUserID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := lockForUpdate(tx).Where("external_user_id = ?", externalUserID).First(&profile).Error
	if err == gorm.ErrRecordNotFound {
		profile = models.UserProfile{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ApplyScoredPrediction folds one scored prediction into the user's profile:
// totals, streaks and specialty counters. Current streaks reset on a miss; the
// best-streak fields only ever ratchet upward.
func (s *ProfileService) ApplyScoredPrediction(tx *gorm.DB, p *models.Prediction, fight *models.Fight) error {
	if !p.Processed {
		return fmt.Errorf("prediction %s is not scored yet", p.ID)
	}

	profile, err := s.EnsureProfile(tx, p.ExternalUserID)
	if err != nil {
		return err
	}

	profile.TotalPoints += p.AwardedPoints
	profile.TotalXP += p.AwardedXP
	profile.TotalPredictions++

	if p.CorrectWinner {
		profile.CorrectPredictions++
		profile.CurrentStreak++
		if profile.CurrentStreak > profile.BestStreak {
			profile.BestStreak = profile.CurrentStreak
		}
	} else {
		profile.CurrentStreak = 0
	}

	if p.Perfect() {
		profile.PerfectPredictions++
	}

	// The main-event streak only moves on main-event bouts; the rest of the
	// card leaves it untouched.
	if fight.BoutType == models.BoutMainEvent {
		if p.CorrectWinner {
			profile.CurrentMainEventStreak++
			if profile.CurrentMainEventStreak > profile.BestMainEventStreak {
				profile.BestMainEventStreak = profile.CurrentMainEventStreak
			}
		} else {
			profile.CurrentMainEventStreak = 0
		}
	}

	if p.CorrectWinner && fight.Method != nil {
		switch *fight.Method {
		case models.MethodKO:
			profile.KOHits++
		case models.MethodSubmission:
			profile.SubmissionHits++
		case models.MethodDecision:
			profile.DecisionHits++
		}
	}
	if p.CorrectWinner && p.UnderdogMultiplier > 1.0 {
		profile.UnderdogHits++
	}

	return tx.Save(profile).Error
}

// AwardBonus adds flat points/XP outside the per-prediction fold (perfect-card
// bonus, duel win, achievement XP).
func (s *ProfileService) AwardBonus(tx *gorm.DB, externalUserID string, points, xp int64) error {
	if _, err := s.EnsureProfile(tx, externalUserID); err != nil {
		return err
	}
	return tx.Model(&models.UserProfile{}).
		Where("external_user_id = ?", externalUserID).
		Updates(map[string]interface{}{
			"total_points": gorm.Expr("total_points + ?", points),
			"total_xp":     gorm.Expr("total_xp + ?", xp),
		}).Error
}
