package services

import (
	"errors"
	"fmt"
	"time"

	"arena-score-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PredictionService handles prediction submission. The picks window proper is
// enforced upstream by the gateway; the engine only refuses picks that are
// obviously late (fight already started or finished) and enforces the one
// prediction per user per fight constraint.
type PredictionService struct {
	DB *gorm.DB
}

func NewPredictionService(db *gorm.DB) *PredictionService {
	return &PredictionService{DB: db}
}

// SubmitInput carries a user's pick for one fight. Odds are the picked side's
// american odds at submission time, snapshotted for underdog scoring.
type SubmitInput struct {
	ExternalUserID  string
	FightID         string
	PickedWinner    string
	PredictedMethod *string
	PredictedRound  *int
	Confidence      int
	OddsAtPick      *int
}

func (s *PredictionService) Submit(input SubmitInput) (*models.Prediction, error) {
	var fight models.Fight
	if err := s.DB.First(&fight, "id = ?", input.FightID).Error; err != nil {
		return nil, fmt.Errorf("fight not found: %w", err)
	}
	if fight.Status != models.FightStatusScheduled {
		return nil, errors.New("predictions are closed for this fight")
	}
	if !fight.StartTime.IsZero() && time.Now().After(fight.StartTime) {
		return nil, errors.New("this fight has already started")
	}
	if input.PickedWinner != fight.Fighter1 && input.PickedWinner != fight.Fighter2 {
		return nil, fmt.Errorf("%q is not fighting on this bout", input.PickedWinner)
	}
	if input.PredictedMethod != nil && !knownMethods[*input.PredictedMethod] {
		return nil, fmt.Errorf("unknown method %q", *input.PredictedMethod)
	}
	if input.PredictedRound != nil && (*input.PredictedRound < 1 || *input.PredictedRound > fight.Rounds) {
		return nil, fmt.Errorf("round must be between 1 and %d", fight.Rounds)
	}

	var existing int64
	if err := s.DB.Model(&models.Prediction{}).
		Where("external_user_id = ? AND fight_id = ?", input.ExternalUserID, input.FightID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, errors.New("you already predicted this fight")
	}

	prediction := models.Prediction{
		ID:              uuid.NewString(),
		ExternalUserID:  input.ExternalUserID,
		FightID:         input.FightID,
		EventID:         fight.EventID,
		PickedWinner:    input.PickedWinner,
		PredictedMethod: input.PredictedMethod,
		PredictedRound:  input.PredictedRound,
		Confidence:      clampConfidence(input.Confidence),
		OddsAtPick:      input.OddsAtPick,
	}
	if err := s.DB.Create(&prediction).Error; err != nil {
		// Unique index backstops the check above under concurrent submissions.
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}
	return &prediction, nil
}

// ListForUser returns a user's predictions, optionally filtered to one event.
func (s *PredictionService) ListForUser(externalUserID, eventID string) ([]models.Prediction, error) {
	query := s.DB.Where("external_user_id = ?", externalUserID)
	if eventID != "" {
		query = query.Where("event_id = ?", eventID)
	}
	var predictions []models.Prediction
	err := query.Order("created_at DESC").Find(&predictions).Error
	return predictions, err
}
