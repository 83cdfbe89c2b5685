package services

import (
	"fmt"

	"arena-score-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementService evaluates the static rule table against a user's profile
// after every update and unlocks anything newly satisfied. Unlocks are unique
// per (user, code) and never revoked, even if the triggering stat regresses.
type AchievementService struct {
	DB       *gorm.DB
	Config   ScoringConfig
	Notifier *NotificationService
}

func NewAchievementService(db *gorm.DB, cfg ScoringConfig, notifier *NotificationService) *AchievementService {
	return &AchievementService{DB: db, Config: cfg, Notifier: notifier}
}

// EvaluateUser checks every rule against the user's current profile and returns
// the count of newly unlocked achievements. A duplicate unlock is an expected
// no-op — the unique index absorbs it — which makes this safe to call on every
// scored prediction.
func (s *AchievementService) EvaluateUser(tx *gorm.DB, externalUserID string) (int, error) {
	var profile models.UserProfile
	if err := tx.Where("external_user_id = ?", externalUserID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil // nothing scored yet for this user
		}
		return 0, err
	}

	unlocked := 0
	for _, rule := range models.AchievementRules {
		if !meetsThreshold(&profile, rule.Threshold) {
			continue
		}
		awarded, err := s.Unlock(tx, externalUserID, rule.Code, rule.Name, "")
		if err != nil {
			return unlocked, err
		}
		if awarded {
			unlocked++
		}
	}
	return unlocked, nil
}

// Unlock inserts the (user, code) pair, ignoring the insert when it already
// exists. A genuine unlock awards the flat XP bonus and emits one notification.
func (s *AchievementService) Unlock(tx *gorm.DB, externalUserID, code, name, metadata string) (bool, error) {
	achievement := models.UserAchievement{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		Code:           code,
		Metadata:       metadata,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "code"}},
		DoNothing: true,
	}).Create(&achievement)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil // already unlocked
	}

	if err := tx.Model(&models.UserProfile{}).
		Where("external_user_id = ?", externalUserID).
		Update("total_xp", gorm.Expr("total_xp + ?", s.Config.AchievementXP)).Error; err != nil {
		return false, err
	}

	s.Notifier.Notify(tx, externalUserID, models.NotificationAchievement,
		fmt.Sprintf("Achievement unlocked: %s", name),
		fmt.Sprintf("You earned %q and %d bonus XP.", name, s.Config.AchievementXP),
		map[string]interface{}{"code": code})
	return true, nil
}

func meetsThreshold(profile *models.UserProfile, required map[string]int64) bool {
	for key, min := range required {
		switch key {
		case "total_predictions":
			if profile.TotalPredictions < min {
				return false
			}
		case "correct_predictions":
			if profile.CorrectPredictions < min {
				return false
			}
		case "perfect_predictions":
			if profile.PerfectPredictions < min {
				return false
			}
		case "best_streak":
			if profile.BestStreak < min {
				return false
			}
		case "best_main_event_streak":
			if profile.BestMainEventStreak < min {
				return false
			}
		case "underdog_hits":
			if profile.UnderdogHits < min {
				return false
			}
		case "ko_hits":
			if profile.KOHits < min {
				return false
			}
		case "submission_hits":
			if profile.SubmissionHits < min {
				return false
			}
		case "decision_hits":
			if profile.DecisionHits < min {
				return false
			}
		case "accuracy_pct":
			if profile.Accuracy() < float64(min) {
				return false
			}
		default:
			return false // unknown key — rule can never fire
		}
	}
	return true
}
