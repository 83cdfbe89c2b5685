package services

import (
	"errors"
	"fmt"
	"log"

	"arena-score-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeagueService maintains season standings and championship ownership for every
// league touched by a settled event.
type LeagueService struct {
	DB       *gorm.DB
	Notifier *NotificationService
}

func NewLeagueService(db *gorm.DB, notifier *NotificationService) *LeagueService {
	return &LeagueService{DB: db, Notifier: notifier}
}

// CreateLeague creates a league with a URL slug derived from its name.
func (s *LeagueService) CreateLeague(name string) (*models.League, error) {
	if name == "" {
		return nil, errors.New("league name is required")
	}
	league := models.League{
		ID:     uuid.NewString(),
		Name:   name,
		Slug:   slug.Make(name),
		Season: 1,
	}
	if err := s.DB.Create(&league).Error; err != nil {
		return nil, err
	}
	return &league, nil
}

// Join adds a user to a league; rejoining is a no-op on the unique index.
func (s *LeagueService) Join(leagueID, externalUserID string) (*models.LeagueMembership, error) {
	var league models.League
	if err := s.DB.First(&league, "id = ?", leagueID).Error; err != nil {
		return nil, fmt.Errorf("league not found: %w", err)
	}
	membership := models.LeagueMembership{
		ID:             uuid.NewString(),
		LeagueID:       leagueID,
		ExternalUserID: externalUserID,
	}
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "league_id"}, {Name: "external_user_id"}},
		DoNothing: true,
	}).Create(&membership)
	if res.Error != nil {
		return nil, res.Error
	}
	return &membership, nil
}

// ApplyEvent folds the closing event's settled points into season totals for
// every league with a member who predicted in the event, then re-ranks and
// re-evaluates the champion. The additive step is the one update a constraint
// alone cannot make idempotent, so each (league, member, event) contribution
// is recorded first and the add happens only when that insert actually landed.
func (s *LeagueService) ApplyEvent(tx *gorm.DB, event *models.Event) error {
	var settlements []models.EventSettlement
	if err := tx.Where("event_id = ?", event.ID).Find(&settlements).Error; err != nil {
		return fmt.Errorf("failed to load settlements for event %s: %w", event.ID, err)
	}
	if len(settlements) == 0 {
		return nil // nobody predicted — nothing to fold
	}

	pointsByUser := make(map[string]models.EventSettlement, len(settlements))
	userIDs := make([]string, 0, len(settlements))
	for _, settlement := range settlements {
		pointsByUser[settlement.ExternalUserID] = settlement
		userIDs = append(userIDs, settlement.ExternalUserID)
	}

	var leagueIDs []string
	if err := tx.Model(&models.LeagueMembership{}).
		Distinct("league_id").
		Where("external_user_id IN ?", userIDs).
		Pluck("league_id", &leagueIDs).Error; err != nil {
		return err
	}

	for _, leagueID := range leagueIDs {
		if err := s.applyEventToLeague(tx, event, leagueID, pointsByUser); err != nil {
			return err
		}
	}
	return nil
}

func (s *LeagueService) applyEventToLeague(tx *gorm.DB, event *models.Event, leagueID string, pointsByUser map[string]models.EventSettlement) error {
	var league models.League
	if err := tx.First(&league, "id = ?", leagueID).Error; err != nil {
		return err
	}

	var members []models.LeagueMembership
	if err := tx.Where("league_id = ?", leagueID).Find(&members).Error; err != nil {
		return err
	}

	applied := 0
	for _, member := range members {
		settlement, predicted := pointsByUser[member.ExternalUserID]
		if !predicted {
			continue
		}

		marker := models.LeagueEventResult{
			ID:             uuid.NewString(),
			LeagueID:       leagueID,
			ExternalUserID: member.ExternalUserID,
			EventID:        event.ID,
			PointsApplied:  settlement.TotalPoints,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "league_id"}, {Name: "external_user_id"}, {Name: "event_id"}},
			DoNothing: true,
		}).Create(&marker)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			continue // this contribution was already folded in
		}

		if err := tx.Model(&models.LeagueMembership{}).
			Where("id = ?", member.ID).
			Updates(map[string]interface{}{
				"season_points": gorm.Expr("season_points + ?", settlement.TotalPoints),
				"events_played": gorm.Expr("events_played + 1"),
			}).Error; err != nil {
			return err
		}
		applied++
	}

	if err := s.rebuildRanks(tx, leagueID); err != nil {
		return err
	}

	// Champion bookkeeping only when this event actually moved the league —
	// a re-run that applied nothing must not count a phantom title defense.
	if applied > 0 {
		if err := s.updateChampion(tx, &league, event); err != nil {
			return err
		}
	}

	log.Printf("[SETTLE] League %s: %d contribution(s) from event %s", league.Name, applied, event.ID)
	return nil
}

// rebuildRanks re-ranks all members by season points. Re-running it is a no-op
// by construction: it orders current totals instead of accumulating a delta.
// Tie-break: fewer events played ranks higher on equal points, then earlier
// join time — deterministic across re-runs.
func (s *LeagueService) rebuildRanks(tx *gorm.DB, leagueID string) error {
	var members []models.LeagueMembership
	if err := tx.Where("league_id = ?", leagueID).
		Order("season_points DESC, events_played ASC, joined_at ASC").
		Find(&members).Error; err != nil {
		return err
	}
	for i := range members {
		rank := i + 1
		if members[i].Rank == rank {
			continue
		}
		if err := tx.Model(&models.LeagueMembership{}).
			Where("id = ?", members[i].ID).
			Update("rank", rank).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *LeagueService) updateChampion(tx *gorm.DB, league *models.League, event *models.Event) error {
	var top models.LeagueMembership
	err := tx.Where("league_id = ? AND rank = 1", league.ID).First(&top).Error
	if err == gorm.ErrRecordNotFound {
		return nil // league has no ranked members yet
	}
	if err != nil {
		return err
	}

	if league.ChampionID != nil && *league.ChampionID == top.ExternalUserID {
		return tx.Model(&models.League{}).
			Where("id = ?", league.ID).
			Update("title_defenses", gorm.Expr("title_defenses + 1")).Error
	}

	if err := tx.Model(&models.League{}).
		Where("id = ?", league.ID).
		Updates(map[string]interface{}{
			"champion_id":    top.ExternalUserID,
			"title_defenses": 0,
		}).Error; err != nil {
		return err
	}
	s.Notifier.Notify(tx, top.ExternalUserID, models.NotificationLeagueChampion,
		fmt.Sprintf("You are the %s champion!", league.Name),
		fmt.Sprintf("You took the top spot in %s after %s.", league.Name, event.Name),
		map[string]interface{}{"league_id": league.ID, "event_id": event.ID})
	log.Printf("[SETTLE] 🏆 New champion in league %s: %s", league.Name, top.ExternalUserID)
	return nil
}

// Standings returns a league with its members in rank order.
func (s *LeagueService) Standings(leagueID string) (*models.League, []models.LeagueMembership, error) {
	var league models.League
	if err := s.DB.First(&league, "id = ?", leagueID).Error; err != nil {
		return nil, nil, err
	}
	var members []models.LeagueMembership
	if err := s.DB.Where("league_id = ?", leagueID).
		Order("rank ASC").
		Find(&members).Error; err != nil {
		return nil, nil, err
	}
	return &league, members, nil
}
