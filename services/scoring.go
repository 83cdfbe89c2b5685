package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"arena-score-system/models"

	"gorm.io/gorm"
)

// UnderdogTier amplifies a winning pick by how unfavored the picked side's odds
// were at submission time. Tiers are ordered by ascending MinOdds; the highest
// tier at or below the recorded odds applies.
type UnderdogTier struct {
	MinOdds    int
	Multiplier float64
}

// ScoringConfig holds the fixed point-award constants. Static configuration,
// not derived state; tests construct their own.
type ScoringConfig struct {
	BaseWinnerPoints int64
	MethodBonus      int64
	RoundBonus       int64

	// Reporting multipliers stored on the prediction when the matching bonus
	// applied. Not re-applied to the total — the bonuses above already are.
	MethodMultiplier float64
	RoundMultiplier  float64

	UnderdogTiers []UnderdogTier

	CorrectPickXP int64
	MethodXP      int64
	RoundXP       int64

	AchievementXP     int64
	PerfectCardPoints int64
	PerfectCardXP     int64
	DuelWinXP         int64
}

var DefaultScoringConfig = ScoringConfig{
	BaseWinnerPoints: 100,
	MethodBonus:      50,
	RoundBonus:       25,
	MethodMultiplier: 1.5,
	RoundMultiplier:  1.25,
	UnderdogTiers: []UnderdogTier{
		{MinOdds: 150, Multiplier: 1.25},
		{MinOdds: 250, Multiplier: 1.5},
		{MinOdds: 400, Multiplier: 2.0},
	},
	CorrectPickXP:     25,
	MethodXP:          10,
	RoundXP:           10,
	AchievementXP:     50,
	PerfectCardPoints: 100,
	PerfectCardXP:     100,
	DuelWinXP:         50,
}

var knownMethods = map[string]bool{
	models.MethodKO:         true,
	models.MethodSubmission: true,
	models.MethodDecision:   true,
}

// PickScore is the computed outcome of scoring one prediction against a
// finished fight.
type PickScore struct {
	CorrectWinner      bool
	CorrectMethod      bool
	CorrectRound       bool
	MethodMultiplier   float64
	RoundMultiplier    float64
	UnderdogMultiplier float64
	BasePoints         int64
	Points             int64
	XP                 int64
}

// ScorePick computes correctness flags and awards for one prediction. Method and
// round can only be correct if the winner was: a wrong-winner/right-method guess
// never scores a method bonus. Method and round bonuses are folded into the base
// before the confidence and underdog multipliers, so a correct-method-and-round
// underdog pick compounds all three effects.
func ScorePick(p *models.Prediction, fight *models.Fight, cfg ScoringConfig) PickScore {
	// The multipliers are reporting values; 1.0 is the neutral reading even
	// when the pick missed entirely.
	score := PickScore{MethodMultiplier: 1.0, RoundMultiplier: 1.0, UnderdogMultiplier: 1.0}
	if fight.Winner == nil {
		return score
	}

	score.CorrectWinner = p.PickedWinner == *fight.Winner
	if !score.CorrectWinner {
		return score
	}

	methodKnown := fight.Method != nil && knownMethods[*fight.Method]
	if fight.Method != nil && !methodKnown {
		log.Printf("[SCORE] ⚠️ Unrecognized method %q on fight %s — scoring winner only", *fight.Method, fight.ID)
	}

	score.CorrectMethod = methodKnown && p.PredictedMethod != nil && *p.PredictedMethod == *fight.Method
	score.CorrectRound = fight.EndingRound != nil && p.PredictedRound != nil && *p.PredictedRound == *fight.EndingRound

	base := cfg.BaseWinnerPoints
	if score.CorrectMethod {
		base += cfg.MethodBonus
		score.MethodMultiplier = cfg.MethodMultiplier
	}
	if score.CorrectRound {
		base += cfg.RoundBonus
		score.RoundMultiplier = cfg.RoundMultiplier
	}
	score.BasePoints = base

	if p.OddsAtPick != nil {
		for _, tier := range cfg.UnderdogTiers {
			if *p.OddsAtPick >= tier.MinOdds {
				score.UnderdogMultiplier = tier.Multiplier
			}
		}
	}

	confidence := float64(clampConfidence(p.Confidence)) / 100.0
	score.Points = int64(math.Round(float64(base) * confidence * score.UnderdogMultiplier))

	score.XP = cfg.CorrectPickXP
	if score.CorrectMethod {
		score.XP += cfg.MethodXP
	}
	if score.CorrectRound {
		score.XP += cfg.RoundXP
	}
	return score
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// ScoringService scores every outstanding prediction for a finished fight and
// folds each result into the predictor's profile.
type ScoringService struct {
	DB           *gorm.DB
	Config       ScoringConfig
	Profiles     *ProfileService
	Achievements *AchievementService
}

func NewScoringService(db *gorm.DB, cfg ScoringConfig, profiles *ProfileService, achievements *AchievementService) *ScoringService {
	return &ScoringService{DB: db, Config: cfg, Profiles: profiles, Achievements: achievements}
}

// ScoreFight processes all unprocessed predictions for one finished fight. Each
// prediction commits in its own transaction: a failure is logged, that one row is
// left unprocessed for the next cycle, and the batch continues. The processed
// flag is the idempotency latch — the guarded UPDATE below makes a concurrent or
// repeated run skip the row entirely.
func (s *ScoringService) ScoreFight(fight *models.Fight) error {
	if !fight.Finished() {
		return nil // no outcome yet — not an error, just nothing to do
	}

	var predictions []models.Prediction
	if err := s.DB.Where("fight_id = ? AND processed = ?", fight.ID, false).
		Order("created_at ASC").
		Find(&predictions).Error; err != nil {
		return fmt.Errorf("failed to load predictions for fight %s: %w", fight.ID, err)
	}

	var scored, failed int
	for i := range predictions {
		if err := s.scoreOne(&predictions[i], fight); err != nil {
			failed++
			log.Printf("[SCORE] ⚠️ Prediction %s left unprocessed: %v", predictions[i].ID, err)
			continue
		}
		scored++
	}

	if len(predictions) > 0 {
		log.Printf("[SCORE] Fight %s (%s vs %s): %d scored, %d deferred",
			fight.ID, fight.Fighter1, fight.Fighter2, scored, failed)
	}
	if failed > 0 {
		return fmt.Errorf("fight %s: %d prediction(s) failed scoring", fight.ID, failed)
	}
	return nil
}

func (s *ScoringService) scoreOne(p *models.Prediction, fight *models.Fight) error {
	score := ScorePick(p, fight, s.Config)
	now := time.Now()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		// Latch and score in one guarded write. RowsAffected == 0 means another
		// run got here first; skip without touching the profile.
		res := tx.Model(&models.Prediction{}).
			Where("id = ? AND processed = ?", p.ID, false).
			Updates(map[string]interface{}{
				"correct_winner":      score.CorrectWinner,
				"correct_method":      score.CorrectMethod,
				"correct_round":       score.CorrectRound,
				"method_multiplier":   score.MethodMultiplier,
				"round_multiplier":    score.RoundMultiplier,
				"underdog_multiplier": score.UnderdogMultiplier,
				"awarded_points":      score.Points,
				"awarded_xp":          score.XP,
				"processed":           true,
				"processed_at":        now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		p.CorrectWinner = score.CorrectWinner
		p.CorrectMethod = score.CorrectMethod
		p.CorrectRound = score.CorrectRound
		p.UnderdogMultiplier = score.UnderdogMultiplier
		p.AwardedPoints = score.Points
		p.AwardedXP = score.XP
		p.Processed = true
		p.ProcessedAt = &now

		if err := s.Profiles.ApplyScoredPrediction(tx, p, fight); err != nil {
			return err
		}
		_, err := s.Achievements.EvaluateUser(tx, p.ExternalUserID)
		return err
	})
}
