package services

import (
	"testing"
	"time"

	"arena-score-system/models"

	"github.com/google/uuid"
)

// scoredPick fabricates an already-scored prediction for fold tests. The fold
// only reads the scoring output, so no event or fight rows are needed beyond
// the fight passed alongside.
func scoredPick(userID string, correct, method, round bool, points, xp int64, underdog float64) *models.Prediction {
	now := time.Now()
	return &models.Prediction{
		ID:                 uuid.NewString(),
		ExternalUserID:     userID,
		FightID:            uuid.NewString(),
		EventID:            uuid.NewString(),
		PickedWinner:       "Silva",
		Confidence:         100,
		CorrectWinner:      correct,
		CorrectMethod:      method,
		CorrectRound:       round,
		UnderdogMultiplier: underdog,
		AwardedPoints:      points,
		AwardedXP:          xp,
		Processed:          true,
		ProcessedAt:        &now,
	}
}

func boutFight(boutType string, method *string) *models.Fight {
	return &models.Fight{
		ID:       uuid.NewString(),
		BoutType: boutType,
		Status:   models.FightStatusFinished,
		Method:   method,
	}
}

func loadProfile(t *testing.T, a *arena, userID string) *models.UserProfile {
	t.Helper()
	var profile models.UserProfile
	if err := a.db.First(&profile, "external_user_id = ?", userID).Error; err != nil {
		t.Fatalf("failed to load profile for %s: %v", userID, err)
	}
	return &profile
}

func TestApplyScoredPrediction_Totals(t *testing.T) {
	a := newArena(t)

	pick := scoredPick("user-1", true, true, false, 150, 35, 1.0)
	fight := boutFight(models.BoutMainCard, strPtr(models.MethodKO))
	if err := a.profiles.ApplyScoredPrediction(a.db, pick, fight); err != nil {
		t.Fatalf("fold failed: %v", err)
	}

	profile := loadProfile(t, a, "user-1")
	assertEqual(t, int64(150), profile.TotalPoints, "total points")
	assertEqual(t, int64(35), profile.TotalXP, "total XP")
	assertEqual(t, int64(1), profile.TotalPredictions, "total predictions")
	assertEqual(t, int64(1), profile.CorrectPredictions, "correct predictions")
	assertEqual(t, int64(0), profile.PerfectPredictions, "perfect predictions")
	assertEqual(t, int64(1), profile.KOHits, "KO hits")
	assertEqual(t, int64(0), profile.UnderdogHits, "underdog hits at 1.0 multiplier")
}

func TestApplyScoredPrediction_RejectsUnscored(t *testing.T) {
	a := newArena(t)

	pick := scoredPick("user-1", true, false, false, 100, 25, 1.0)
	pick.Processed = false
	err := a.profiles.ApplyScoredPrediction(a.db, pick, boutFight(models.BoutMainCard, nil))
	if err == nil {
		t.Fatal("expected an error folding an unscored prediction")
	}
}

func TestApplyScoredPrediction_StreakResetAndRatchet(t *testing.T) {
	a := newArena(t)

	// win, win, win, miss, win, win: best streak pinned at 3 while the
	// current streak rebuilds from zero.
	sequence := []bool{true, true, true, false, true, true}
	for _, correct := range sequence {
		points := int64(0)
		if correct {
			points = 100
		}
		pick := scoredPick("user-1", correct, false, false, points, 0, 1.0)
		if err := a.profiles.ApplyScoredPrediction(a.db, pick, boutFight(models.BoutMainCard, strPtr(models.MethodDecision))); err != nil {
			t.Fatalf("fold failed: %v", err)
		}
	}

	profile := loadProfile(t, a, "user-1")
	assertEqual(t, int64(2), profile.CurrentStreak, "current streak after rebuild")
	assertEqual(t, int64(3), profile.BestStreak, "best streak never decreases")
	assertEqual(t, int64(5), profile.CorrectPredictions, "correct predictions")
	assertEqual(t, int64(6), profile.TotalPredictions, "total predictions")
}

func TestApplyScoredPrediction_MainEventStreakIsolated(t *testing.T) {
	a := newArena(t)

	steps := []struct {
		boutType string
		correct  bool
	}{
		{models.BoutMainEvent, true},
		{models.BoutPrelim, false}, // prelim miss must not reset the main-event streak
		{models.BoutMainEvent, true},
		{models.BoutMainCard, true},
		{models.BoutMainEvent, false}, // only a main-event miss resets it
		{models.BoutMainEvent, true},
	}
	for _, step := range steps {
		pick := scoredPick("user-1", step.correct, false, false, 0, 0, 1.0)
		if err := a.profiles.ApplyScoredPrediction(a.db, pick, boutFight(step.boutType, strPtr(models.MethodDecision))); err != nil {
			t.Fatalf("fold failed: %v", err)
		}
	}

	profile := loadProfile(t, a, "user-1")
	assertEqual(t, int64(1), profile.CurrentMainEventStreak, "main-event streak after reset")
	assertEqual(t, int64(2), profile.BestMainEventStreak, "best main-event streak")
}

func TestApplyScoredPrediction_SpecialtyCounters(t *testing.T) {
	a := newArena(t)

	folds := []struct {
		method   string
		correct  bool
		underdog float64
	}{
		{models.MethodKO, true, 1.0},
		{models.MethodSubmission, true, 1.5},
		{models.MethodDecision, true, 1.0},
		{models.MethodKO, false, 2.0}, // misses never feed specialty counters
	}
	for _, f := range folds {
		pick := scoredPick("user-1", f.correct, false, false, 0, 0, f.underdog)
		if err := a.profiles.ApplyScoredPrediction(a.db, pick, boutFight(models.BoutMainCard, strPtr(f.method))); err != nil {
			t.Fatalf("fold failed: %v", err)
		}
	}

	profile := loadProfile(t, a, "user-1")
	assertEqual(t, int64(1), profile.KOHits, "KO hits")
	assertEqual(t, int64(1), profile.SubmissionHits, "submission hits")
	assertEqual(t, int64(1), profile.DecisionHits, "decision hits")
	assertEqual(t, int64(1), profile.UnderdogHits, "underdog hits")
}

func TestApplyScoredPrediction_PerfectCount(t *testing.T) {
	a := newArena(t)

	perfect := scoredPick("user-1", true, true, true, 175, 45, 1.0)
	if err := a.profiles.ApplyScoredPrediction(a.db, perfect, boutFight(models.BoutMainEvent, strPtr(models.MethodSubmission))); err != nil {
		t.Fatalf("fold failed: %v", err)
	}

	profile := loadProfile(t, a, "user-1")
	assertEqual(t, int64(1), profile.PerfectPredictions, "perfect predictions")
}

func TestAwardBonus(t *testing.T) {
	a := newArena(t)

	// Creates the profile on first touch, then increments in place.
	if err := a.profiles.AwardBonus(a.db, "user-1", 100, 50); err != nil {
		t.Fatalf("bonus failed: %v", err)
	}
	if err := a.profiles.AwardBonus(a.db, "user-1", 25, 0); err != nil {
		t.Fatalf("bonus failed: %v", err)
	}

	profile := loadProfile(t, a, "user-1")
	assertEqual(t, int64(125), profile.TotalPoints, "total points after bonuses")
	assertEqual(t, int64(50), profile.TotalXP, "total XP after bonuses")
}

func TestAccuracy(t *testing.T) {
	empty := &models.UserProfile{}
	assertEqual(t, float64(0), empty.Accuracy(), "accuracy with no predictions")

	p := &models.UserProfile{TotalPredictions: 50, CorrectPredictions: 35}
	assertEqual(t, float64(70), p.Accuracy(), "accuracy percentage")
}
