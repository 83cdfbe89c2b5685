package services

import (
	"fmt"
	"log"

	"arena-score-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaderboardService recomputes per-user EventSettlement rows for a closing
// event. The recompute is a pure fold over that user's processed predictions,
// so it is safe to run any number of times; the perfect-card bonus is the one
// side effect, granted only when the flag flips from false to true.
type LeaderboardService struct {
	DB           *gorm.DB
	Config       ScoringConfig
	Profiles     *ProfileService
	Achievements *AchievementService
	Notifier     *NotificationService
}

func NewLeaderboardService(db *gorm.DB, cfg ScoringConfig, profiles *ProfileService, achievements *AchievementService, notifier *NotificationService) *LeaderboardService {
	return &LeaderboardService{DB: db, Config: cfg, Profiles: profiles, Achievements: achievements, Notifier: notifier}
}

type settlementRow struct {
	ExternalUserID string
	TotalPoints    int64
	CorrectPicks   int64
	TotalPicks     int64
}

// RebuildForEvent upserts one EventSettlement row per predicting user.
func (s *LeaderboardService) RebuildForEvent(tx *gorm.DB, event *models.Event) error {
	var rows []settlementRow
	err := tx.Model(&models.Prediction{}).
		Select("external_user_id, "+
			"COALESCE(SUM(awarded_points), 0) AS total_points, "+
			"SUM(CASE WHEN correct_winner THEN 1 ELSE 0 END) AS correct_picks, "+
			"COUNT(*) AS total_picks").
		Where("event_id = ? AND processed = ?", event.ID, true).
		Group("external_user_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate predictions for event %s: %w", event.ID, err)
	}

	for _, row := range rows {
		perfect := row.TotalPicks > 0 && row.CorrectPicks == row.TotalPicks

		var previous models.EventSettlement
		hadPrevious := true
		if err := tx.Where("event_id = ? AND external_user_id = ?", event.ID, row.ExternalUserID).
			First(&previous).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			hadPrevious = false
		}

		settlement := models.EventSettlement{
			ID:             uuid.NewString(),
			EventID:        event.ID,
			ExternalUserID: row.ExternalUserID,
			TotalPoints:    row.TotalPoints,
			CorrectPicks:   row.CorrectPicks,
			TotalPicks:     row.TotalPicks,
			PerfectCard:    perfect,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_points", "correct_picks", "total_picks", "perfect_card", "updated_at"}),
		}).Create(&settlement).Error; err != nil {
			return err
		}

		// One-time card bonus: only on the false→true flip, observed under the
		// event settlement lock, so a re-run of a closed event never re-grants.
		if perfect && (!hadPrevious || !previous.PerfectCard) {
			if err := s.grantPerfectCard(tx, event, row); err != nil {
				return err
			}
		}
	}

	log.Printf("[SETTLE] Event %s leaderboard rebuilt: %d user(s)", event.ID, len(rows))
	return nil
}

func (s *LeaderboardService) grantPerfectCard(tx *gorm.DB, event *models.Event, row settlementRow) error {
	if err := s.Profiles.AwardBonus(tx, row.ExternalUserID, s.Config.PerfectCardPoints, s.Config.PerfectCardXP); err != nil {
		return err
	}
	if _, err := s.Achievements.Unlock(tx, row.ExternalUserID, "PERFECT_CARD", "Perfect Card",
		fmt.Sprintf(`{"event_id": %q}`, event.ID)); err != nil {
		return err
	}
	s.Notifier.Notify(tx, row.ExternalUserID, models.NotificationPerfectCard,
		"Perfect card!",
		fmt.Sprintf("You called every pick on %s. Bonus: %d points, %d XP.",
			event.Name, s.Config.PerfectCardPoints, s.Config.PerfectCardXP),
		map[string]interface{}{"event_id": event.ID, "picks": row.TotalPicks})
	log.Printf("[SETTLE] 🃏 Perfect card: user %s on event %s (%d/%d)",
		row.ExternalUserID, event.ID, row.CorrectPicks, row.TotalPicks)
	return nil
}

// EventLeaderboard returns the settled rows for one event, best first.
func (s *LeaderboardService) EventLeaderboard(eventID string) ([]models.EventSettlement, error) {
	var rows []models.EventSettlement
	err := s.DB.Where("event_id = ?", eventID).
		Order("total_points DESC, correct_picks DESC").
		Find(&rows).Error
	return rows, err
}
