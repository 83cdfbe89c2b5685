package services

import (
	"fmt"
	"log"
	"time"

	"arena-score-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettlementService orchestrates the whole pipeline: per-fight scoring as
// results land (open → settling), then event-level settlement once the last
// fight finishes (settling → closed). Event settlement runs its three stages
// in a fixed order inside a single transaction holding a row lock on the event,
// so overlapping coordinator runs serialize and the loser sees "closed".
type SettlementService struct {
	DB          *gorm.DB
	Scoring     *ScoringService
	Leaderboard *LeaderboardService
	Duels       *DuelService
	Leagues     *LeagueService
}

func NewSettlementService(db *gorm.DB, scoring *ScoringService, leaderboard *LeaderboardService, duels *DuelService, leagues *LeagueService) *SettlementService {
	return &SettlementService{
		DB:          db,
		Scoring:     scoring,
		Leaderboard: leaderboard,
		Duels:       duels,
		Leagues:     leagues,
	}
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that support it. sqlite
// has no FOR UPDATE; its single-writer lock already serializes writers there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// settlementStage names one event-level settlement step. The order is a
// correctness requirement: duels and leagues read the leaderboard's per-event
// totals, so the leaderboard must be rebuilt first.
type settlementStage struct {
	name string
	run  func(tx *gorm.DB, event *models.Event) error
}

func (s *SettlementService) stages() []settlementStage {
	return []settlementStage{
		{name: "leaderboard", run: s.Leaderboard.RebuildForEvent},
		{name: "duels", run: s.Duels.ResolveForEvent},
		{name: "leagues", run: s.Leagues.ApplyEvent},
	}
}

// SettleFight runs scoring and profile aggregation for one finished fight and
// moves its event into "settling". Safe to call repeatedly: scored predictions
// are skipped by their latch and the event transition is status-guarded.
func (s *SettlementService) SettleFight(fightID string) error {
	var fight models.Fight
	if err := s.DB.First(&fight, "id = ?", fightID).Error; err != nil {
		return fmt.Errorf("fight not found: %w", err)
	}
	if !fight.Finished() {
		return nil // no winner recorded yet — skipped, not an error
	}

	if err := s.Scoring.ScoreFight(&fight); err != nil {
		// Deferred predictions stay unprocessed; leave ScoredAt unset so the
		// next cycle retries the remainder.
		return err
	}

	now := time.Now()
	if fight.ScoredAt == nil {
		if err := s.DB.Model(&models.Fight{}).
			Where("id = ? AND scored_at IS NULL", fight.ID).
			Update("scored_at", now).Error; err != nil {
			return err
		}
	}

	return s.DB.Model(&models.Event{}).
		Where("id = ? AND status = ?", fight.EventID, models.EventStatusOpen).
		Update("status", models.EventStatusSettling).Error
}

// CloseEventIfComplete closes the event and runs the three settlement stages
// once every fight is finished and scored. Committing all stages as one unit
// means no partial event-level settlement is ever visible to readers.
func (s *SettlementService) CloseEventIfComplete(eventID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := lockForUpdate(tx).First(&event, "id = ?", eventID).Error; err != nil {
			return fmt.Errorf("event not found: %w", err)
		}
		if event.Status == models.EventStatusClosed {
			return nil // settled by an earlier run
		}

		var unfinished int64
		if err := tx.Model(&models.Fight{}).
			Where("event_id = ? AND status <> ?", eventID, models.FightStatusFinished).
			Count(&unfinished).Error; err != nil {
			return err
		}
		if unfinished > 0 {
			return nil
		}

		var unscored int64
		if err := tx.Model(&models.Prediction{}).
			Where("event_id = ? AND processed = ?", eventID, false).
			Count(&unscored).Error; err != nil {
			return err
		}
		if unscored > 0 {
			log.Printf("[SETTLE] Event %s has %d unscored prediction(s) — deferring close", eventID, unscored)
			return nil
		}

		for _, stage := range s.stages() {
			log.Printf("[SETTLE] Event %s: running stage %q", eventID, stage.name)
			if err := stage.run(tx, &event); err != nil {
				return fmt.Errorf("settlement stage %q failed for event %s: %w", stage.name, eventID, err)
			}
		}

		now := time.Now()
		if err := tx.Model(&models.Event{}).
			Where("id = ?", eventID).
			Updates(map[string]interface{}{
				"status":     models.EventStatusClosed,
				"settled_at": now,
			}).Error; err != nil {
			return err
		}
		log.Printf("[SETTLE] ✅ Event %s closed", eventID)
		return nil
	})
}

// RecordFightResult applies a finished-fight fact (winner, method, ending
// round). The transition to "finished" happens exactly once; re-delivery of the
// same fact is an expected no-op.
func (s *SettlementService) RecordFightResult(fightID, winner, method string, endingRound int) error {
	var fight models.Fight
	if err := s.DB.First(&fight, "id = ?", fightID).Error; err != nil {
		return fmt.Errorf("fight not found: %w", err)
	}
	if fight.Status == models.FightStatusFinished {
		return nil
	}
	if winner != fight.Fighter1 && winner != fight.Fighter2 {
		return fmt.Errorf("winner %q is not a participant of fight %s", winner, fightID)
	}
	if !knownMethods[method] {
		log.Printf("[SETTLE] ⚠️ Unrecognized method %q for fight %s — stored as-is", method, fightID)
	}

	res := s.DB.Model(&models.Fight{}).
		Where("id = ? AND status = ?", fightID, models.FightStatusScheduled).
		Updates(map[string]interface{}{
			"status":       models.FightStatusFinished,
			"winner":       winner,
			"method":       method,
			"ending_round": endingRound,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil // raced with another delivery of the same result
	}
	return nil
}

// RunCycle is the batch reconciliation pass: score every finished-but-unscored
// fight, then try to close every settling event. Invoked by the scheduler and
// by the manual retry endpoint.
func (s *SettlementService) RunCycle() error {
	var fights []models.Fight
	if err := s.DB.Where("status = ? AND scored_at IS NULL", models.FightStatusFinished).
		Find(&fights).Error; err != nil {
		return fmt.Errorf("failed to load finished fights: %w", err)
	}
	for i := range fights {
		if err := s.SettleFight(fights[i].ID); err != nil {
			log.Printf("[SETTLE] ⚠️ Fight %s settlement incomplete: %v", fights[i].ID, err)
		}
	}

	var eventIDs []string
	if err := s.DB.Model(&models.Event{}).
		Where("status = ?", models.EventStatusSettling).
		Pluck("id", &eventIDs).Error; err != nil {
		return fmt.Errorf("failed to load settling events: %w", err)
	}
	for _, eventID := range eventIDs {
		if err := s.CloseEventIfComplete(eventID); err != nil {
			log.Printf("[SETTLE] ❌ Failed to close event %s: %v", eventID, err)
		}
	}
	return nil
}
