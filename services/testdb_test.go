package services

import (
	"fmt"
	"testing"
	"time"

	"arena-score-system/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Named shared-cache memory DB: every pooled connection sees the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Event{},
		&models.Fight{},
		&models.Prediction{},
		&models.UserProfile{},
		&models.UserAchievement{},
		&models.EventSettlement{},
		&models.Duel{},
		&models.League{},
		&models.LeagueMembership{},
		&models.LeagueEventResult{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// arena bundles the full service graph the way main wires it.
type arena struct {
	db          *gorm.DB
	cfg         ScoringConfig
	notifier    *NotificationService
	profiles    *ProfileService
	achieve     *AchievementService
	scoring     *ScoringService
	leaderboard *LeaderboardService
	duels       *DuelService
	leagues     *LeagueService
	settlement  *SettlementService
	predictions *PredictionService
	events      *EventService
}

func newArena(t *testing.T) *arena {
	t.Helper()
	db := newTestDB(t)
	cfg := DefaultScoringConfig

	notifier := NewNotificationService(db)
	profiles := NewProfileService(db)
	achieve := NewAchievementService(db, cfg, notifier)
	scoring := NewScoringService(db, cfg, profiles, achieve)
	leaderboard := NewLeaderboardService(db, cfg, profiles, achieve, notifier)
	duels := NewDuelService(db, cfg, profiles, notifier)
	leagues := NewLeagueService(db, notifier)
	settlement := NewSettlementService(db, scoring, leaderboard, duels, leagues)

	return &arena{
		db:          db,
		cfg:         cfg,
		notifier:    notifier,
		profiles:    profiles,
		achieve:     achieve,
		scoring:     scoring,
		leaderboard: leaderboard,
		duels:       duels,
		leagues:     leagues,
		settlement:  settlement,
		predictions: NewPredictionService(db),
		events:      NewEventService(db),
	}
}

func assertEqual(t *testing.T, expected, actual interface{}, msg string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func seedEventWithFight(t *testing.T, a *arena, boutType string) (*models.Event, *models.Fight) {
	t.Helper()
	event := &models.Event{
		ID:        uuid.NewString(),
		Name:      "Test Event",
		Slug:      "test-event-" + uuid.NewString()[:8],
		Promotion: "UFC",
		StartTime: time.Now().Add(2 * time.Hour),
		Status:    models.EventStatusOpen,
	}
	if err := a.db.Create(event).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	fight := seedFight(t, a, event, boutType)
	return event, fight
}

func seedFight(t *testing.T, a *arena, event *models.Event, boutType string) *models.Fight {
	t.Helper()
	fight := &models.Fight{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		Fighter1:  "Silva",
		Fighter2:  "Jones",
		Rounds:    3,
		BoutType:  boutType,
		Status:    models.FightStatusScheduled,
		StartTime: event.StartTime,
	}
	if err := a.db.Create(fight).Error; err != nil {
		t.Fatalf("failed to seed fight: %v", err)
	}
	return fight
}

func seedPrediction(t *testing.T, a *arena, userID string, fight *models.Fight, pickedWinner string, confidence int, odds *int) *models.Prediction {
	t.Helper()
	pred := &models.Prediction{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		FightID:        fight.ID,
		EventID:        fight.EventID,
		PickedWinner:   pickedWinner,
		Confidence:     confidence,
		OddsAtPick:     odds,
	}
	if err := a.db.Create(pred).Error; err != nil {
		t.Fatalf("failed to seed prediction: %v", err)
	}
	return pred
}

func finishFight(t *testing.T, a *arena, fight *models.Fight, winner, method string, round int) {
	t.Helper()
	if err := a.settlement.RecordFightResult(fight.ID, winner, method, round); err != nil {
		t.Fatalf("failed to record fight result: %v", err)
	}
}
