package services

import (
	"errors"
	"fmt"
	"time"

	"arena-score-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// EventService is the ingestion edge: the external content collaborator creates
// events and bouts through it. Everything downstream (scoring, settlement) only
// ever reads these rows.
type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// FightInput describes one bout on a card being created.
type FightInput struct {
	ExternalID   *string `json:"external_id,omitempty"`
	Fighter1     string  `json:"fighter1"`
	Fighter2     string  `json:"fighter2"`
	WeightClass  string  `json:"weight_class"`
	Rounds       int     `json:"rounds"`
	IsTitleFight bool    `json:"is_title_fight"`
	BoutType     string  `json:"bout_type"`
}

var validBoutTypes = map[string]bool{
	models.BoutMainEvent: true,
	models.BoutCoMain:    true,
	models.BoutMainCard:  true,
	models.BoutPrelim:    true,
}

func (s *EventService) CreateEvent(name, promotion string, startTime time.Time, fights []FightInput) (*models.Event, error) {
	if name == "" {
		return nil, errors.New("event name is required")
	}

	event := models.Event{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug.Make(name),
		Promotion: promotion,
		StartTime: startTime,
		Status:    models.EventStatusOpen,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		for i, input := range fights {
			if input.Fighter1 == "" || input.Fighter2 == "" {
				return fmt.Errorf("fight %d: both fighters are required", i+1)
			}
			boutType := input.BoutType
			if boutType == "" {
				boutType = models.BoutMainCard
			}
			if !validBoutTypes[boutType] {
				return fmt.Errorf("fight %d: unknown bout type %q", i+1, input.BoutType)
			}
			rounds := input.Rounds
			if rounds == 0 {
				rounds = 3
			}
			fight := models.Fight{
				ID:           uuid.NewString(),
				EventID:      event.ID,
				ExternalID:   input.ExternalID,
				Fighter1:     input.Fighter1,
				Fighter2:     input.Fighter2,
				WeightClass:  input.WeightClass,
				Rounds:       rounds,
				IsTitleFight: input.IsTitleFight,
				BoutType:     boutType,
				Status:       models.FightStatusScheduled,
				StartTime:    startTime,
			}
			if err := tx.Create(&fight).Error; err != nil {
				return err
			}
			event.Fights = append(event.Fights, fight)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEvent returns one event with its card.
func (s *EventService) GetEvent(eventID string) (*models.Event, error) {
	var event models.Event
	err := s.DB.Preload("Fights").First(&event, "id = ?", eventID).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents returns events newest first, optionally filtered by status.
func (s *EventService) ListEvents(status string, limit int) ([]models.Event, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	query := s.DB.Order("start_time DESC").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var events []models.Event
	err := query.Find(&events).Error
	return events, err
}
