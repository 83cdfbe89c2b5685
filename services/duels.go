package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"arena-score-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DuelService manages head-to-head challenges scoped to one event and settles
// them from the event's leaderboard totals once the event closes.
type DuelService struct {
	DB       *gorm.DB
	Config   ScoringConfig
	Profiles *ProfileService
	Notifier *NotificationService
}

func NewDuelService(db *gorm.DB, cfg ScoringConfig, profiles *ProfileService, notifier *NotificationService) *DuelService {
	return &DuelService{DB: db, Config: cfg, Profiles: profiles, Notifier: notifier}
}

// Challenge creates a pending duel between two users for one event.
func (s *DuelService) Challenge(eventID, challengerID, opponentID string) (*models.Duel, error) {
	if challengerID == opponentID {
		return nil, errors.New("cannot duel yourself")
	}
	var event models.Event
	if err := s.DB.First(&event, "id = ?", eventID).Error; err != nil {
		return nil, fmt.Errorf("event not found: %w", err)
	}
	if event.Status == models.EventStatusClosed {
		return nil, errors.New("event is already settled")
	}

	duel := models.Duel{
		ID:           uuid.NewString(),
		EventID:      eventID,
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		Status:       models.DuelStatusPending,
	}
	if err := s.DB.Create(&duel).Error; err != nil {
		return nil, err
	}
	return &duel, nil
}

// Respond lets the challenged user accept or decline a pending duel.
func (s *DuelService) Respond(duelID, userID string, accept bool) (*models.Duel, error) {
	var duel models.Duel
	if err := s.DB.First(&duel, "id = ?", duelID).Error; err != nil {
		return nil, fmt.Errorf("duel not found: %w", err)
	}
	if duel.OpponentID != userID {
		return nil, errors.New("only the challenged user can respond")
	}

	status := models.DuelStatusDeclined
	if accept {
		status = models.DuelStatusAccepted
	}
	now := time.Now()
	updates := map[string]interface{}{"status": status}
	if accept {
		updates["accepted_at"] = now
	}
	res := s.DB.Model(&models.Duel{}).
		Where("id = ? AND status = ?", duelID, models.DuelStatusPending).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errors.New("duel is no longer pending")
	}

	duel.Status = status
	if accept {
		duel.AcceptedAt = &now
	}
	return &duel, nil
}

// ResolveForEvent settles every accepted duel on the closing event. Winner is
// the higher event point total, tie-broken by correct-pick count; a full tie
// leaves the winner unset. The accepted → finalized transition is guarded in
// the UPDATE itself, so an already-finalized duel is skipped on re-run.
func (s *DuelService) ResolveForEvent(tx *gorm.DB, event *models.Event) error {
	var duels []models.Duel
	if err := tx.Where("event_id = ? AND status = ?", event.ID, models.DuelStatusAccepted).
		Find(&duels).Error; err != nil {
		return fmt.Errorf("failed to load duels for event %s: %w", event.ID, err)
	}

	for i := range duels {
		if err := s.resolveOne(tx, event, &duels[i]); err != nil {
			return err
		}
	}
	if len(duels) > 0 {
		log.Printf("[SETTLE] Event %s: %d duel(s) resolved", event.ID, len(duels))
	}
	return nil
}

func (s *DuelService) resolveOne(tx *gorm.DB, event *models.Event, duel *models.Duel) error {
	challenger := s.settlementFor(tx, event.ID, duel.ChallengerID)
	opponent := s.settlementFor(tx, event.ID, duel.OpponentID)

	var winnerID *string
	switch {
	case challenger.TotalPoints > opponent.TotalPoints:
		winnerID = &duel.ChallengerID
	case opponent.TotalPoints > challenger.TotalPoints:
		winnerID = &duel.OpponentID
	case challenger.CorrectPicks > opponent.CorrectPicks:
		winnerID = &duel.ChallengerID
	case opponent.CorrectPicks > challenger.CorrectPicks:
		winnerID = &duel.OpponentID
	default:
		winnerID = nil // drawn duel
	}

	now := time.Now()
	res := tx.Model(&models.Duel{}).
		Where("id = ? AND status = ?", duel.ID, models.DuelStatusAccepted).
		Updates(map[string]interface{}{
			"status":             models.DuelStatusFinalized,
			"challenger_points":  challenger.TotalPoints,
			"opponent_points":    opponent.TotalPoints,
			"challenger_correct": challenger.CorrectPicks,
			"opponent_correct":   opponent.CorrectPicks,
			"winner_id":          winnerID,
			"finalized_at":       now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil // finalized by an earlier run
	}

	if winnerID != nil {
		if err := s.Profiles.AwardBonus(tx, *winnerID, 0, s.Config.DuelWinXP); err != nil {
			return err
		}
	}

	for _, participant := range []string{duel.ChallengerID, duel.OpponentID} {
		title := "Duel drawn"
		message := fmt.Sprintf("Your duel on %s ended in a draw.", event.Name)
		if winnerID != nil {
			if *winnerID == participant {
				title = "Duel won"
				message = fmt.Sprintf("You won your duel on %s and earned %d XP.", event.Name, s.Config.DuelWinXP)
			} else {
				title = "Duel lost"
				message = fmt.Sprintf("You lost your duel on %s.", event.Name)
			}
		}
		s.Notifier.Notify(tx, participant, models.NotificationDuelResolved, title, message,
			map[string]interface{}{
				"duel_id":           duel.ID,
				"event_id":          event.ID,
				"challenger_points": challenger.TotalPoints,
				"opponent_points":   opponent.TotalPoints,
			})
	}
	return nil
}

// settlementFor returns the user's settled totals for the event, zero-valued if
// the user made no picks (a duelist who skipped the card simply scores nothing).
func (s *DuelService) settlementFor(tx *gorm.DB, eventID, userID string) models.EventSettlement {
	var settlement models.EventSettlement
	err := tx.Where("event_id = ? AND external_user_id = ?", eventID, userID).
		First(&settlement).Error
	if err != nil {
		return models.EventSettlement{EventID: eventID, ExternalUserID: userID}
	}
	return settlement
}
