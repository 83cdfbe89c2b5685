package services

import (
	"testing"

	"arena-score-system/models"
)

func finishedFight(winner, method string, round int) *models.Fight {
	return &models.Fight{
		ID:          "fight-1",
		EventID:     "event-1",
		Fighter1:    "Silva",
		Fighter2:    "Jones",
		Status:      models.FightStatusFinished,
		Winner:      &winner,
		Method:      &method,
		EndingRound: &round,
	}
}

func TestScorePick(t *testing.T) {
	cfg := DefaultScoringConfig

	tests := []struct {
		name             string
		pick             models.Prediction
		fight            *models.Fight
		expectedWinner   bool
		expectedMethod   bool
		expectedRound    bool
		expectedUnderdog float64
		expectedPoints   int64
		expectedXP       int64
		scenario         string
	}{
		{
			name: "Correct winner and method, wrong round, full confidence, no odds",
			pick: models.Prediction{
				PickedWinner:    "Silva",
				PredictedMethod: strPtr(models.MethodKO),
				PredictedRound:  intPtr(1),
				Confidence:      100,
			},
			fight:            finishedFight("Silva", models.MethodKO, 3),
			expectedWinner:   true,
			expectedMethod:   true,
			expectedRound:    false,
			expectedUnderdog: 1.0,
			expectedPoints:   150,
			expectedXP:       35,
			scenario:         "base + method bonus, underdog multiplier stays 1.0",
		},
		{
			name: "Correct winner at +550 with 50% confidence",
			pick: models.Prediction{
				PickedWinner: "Silva",
				Confidence:   50,
				OddsAtPick:   intPtr(550),
			},
			fight:            finishedFight("Silva", models.MethodDecision, 3),
			expectedWinner:   true,
			expectedUnderdog: 2.0,
			expectedPoints:   100,
			expectedXP:       25,
			scenario:         "round(100 × 0.5 × 2.0) = 100, top underdog tier",
		},
		{
			name: "Wrong winner, right method scores nothing",
			pick: models.Prediction{
				PickedWinner:    "Jones",
				PredictedMethod: strPtr(models.MethodKO),
				PredictedRound:  intPtr(3),
				Confidence:      100,
			},
			fight:            finishedFight("Silva", models.MethodKO, 3),
			expectedWinner:   false,
			expectedUnderdog: 1.0,
			scenario:         "method correctness depends on winner correctness",
		},
		{
			name: "Perfect pick compounds method and round bonuses",
			pick: models.Prediction{
				PickedWinner:    "Silva",
				PredictedMethod: strPtr(models.MethodSubmission),
				PredictedRound:  intPtr(2),
				Confidence:      100,
			},
			fight:            finishedFight("Silva", models.MethodSubmission, 2),
			expectedWinner:   true,
			expectedMethod:   true,
			expectedRound:    true,
			expectedUnderdog: 1.0,
			expectedPoints:   175,
			expectedXP:       45,
			scenario:         "base 100 + method 50 + round 25",
		},
		{
			name: "Perfect underdog pick compounds all three effects",
			pick: models.Prediction{
				PickedWinner:    "Jones",
				PredictedMethod: strPtr(models.MethodKO),
				PredictedRound:  intPtr(1),
				Confidence:      100,
				OddsAtPick:      intPtr(400),
			},
			fight:            finishedFight("Jones", models.MethodKO, 1),
			expectedWinner:   true,
			expectedMethod:   true,
			expectedRound:    true,
			expectedUnderdog: 2.0,
			expectedPoints:   350,
			expectedXP:       45,
			scenario:         "(100+50+25) × 1.0 × 2.0",
		},
		{
			name: "Odds below the first tier stay at 1.0",
			pick: models.Prediction{
				PickedWinner: "Silva",
				Confidence:   100,
				OddsAtPick:   intPtr(149),
			},
			fight:            finishedFight("Silva", models.MethodDecision, 3),
			expectedWinner:   true,
			expectedUnderdog: 1.0,
			expectedPoints:   100,
			expectedXP:       25,
			scenario:         "+149 is under the +150 threshold",
		},
		{
			name: "First tier boundary",
			pick: models.Prediction{
				PickedWinner: "Silva",
				Confidence:   100,
				OddsAtPick:   intPtr(150),
			},
			fight:            finishedFight("Silva", models.MethodDecision, 3),
			expectedWinner:   true,
			expectedUnderdog: 1.25,
			expectedPoints:   125,
			expectedXP:       25,
			scenario:         "exactly +150 lands in the first tier",
		},
		{
			name: "Middle tier",
			pick: models.Prediction{
				PickedWinner: "Silva",
				Confidence:   100,
				OddsAtPick:   intPtr(250),
			},
			fight:            finishedFight("Silva", models.MethodDecision, 3),
			expectedWinner:   true,
			expectedUnderdog: 1.5,
			expectedPoints:   150,
			expectedXP:       25,
			scenario:         "+250 lands in the second tier",
		},
		{
			name: "Unrecognized method scores winner only",
			pick: models.Prediction{
				PickedWinner:    "Silva",
				PredictedMethod: strPtr(models.MethodKO),
				Confidence:      100,
			},
			fight:            finishedFight("Silva", "dq", 2),
			expectedWinner:   true,
			expectedMethod:   false,
			expectedUnderdog: 1.0,
			expectedPoints:   100,
			expectedXP:       25,
			scenario:         "bad feed data degrades to a plain winner hit",
		},
		{
			name: "Confidence above 100 is clamped",
			pick: models.Prediction{
				PickedWinner: "Silva",
				Confidence:   250,
			},
			fight:            finishedFight("Silva", models.MethodDecision, 3),
			expectedWinner:   true,
			expectedUnderdog: 1.0,
			expectedPoints:   100,
			expectedXP:       25,
			scenario:         "clamp keeps the multiplier at 1.0",
		},
		{
			name: "Zero confidence scores zero points but full XP",
			pick: models.Prediction{
				PickedWinner: "Silva",
				Confidence:   0,
			},
			fight:            finishedFight("Silva", models.MethodDecision, 3),
			expectedWinner:   true,
			expectedUnderdog: 1.0,
			expectedPoints:   0,
			expectedXP:       25,
			scenario:         "XP is flat per correct pick, points scale with confidence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScorePick(&tt.pick, tt.fight, cfg)

			assertEqual(t, tt.expectedWinner, score.CorrectWinner, "correct winner")
			assertEqual(t, tt.expectedMethod, score.CorrectMethod, "correct method")
			assertEqual(t, tt.expectedRound, score.CorrectRound, "correct round")
			assertEqual(t, tt.expectedPoints, score.Points, "awarded points")
			assertEqual(t, tt.expectedXP, score.XP, "awarded XP")
			assertEqual(t, tt.expectedUnderdog, score.UnderdogMultiplier, "underdog multiplier")

			// Implication invariants hold for every case
			if score.MethodMultiplier < 1.0 || score.RoundMultiplier < 1.0 || score.UnderdogMultiplier < 1.0 {
				t.Error("multipliers are reporting values, never below the neutral 1.0")
			}
			if score.CorrectMethod && !score.CorrectWinner {
				t.Error("correct method without correct winner")
			}
			if score.CorrectRound && !score.CorrectWinner {
				t.Error("correct round without correct winner")
			}
			if !score.CorrectWinner && (score.Points != 0 || score.XP != 0) {
				t.Error("wrong winner must award nothing")
			}
		})
	}
}

func TestScorePick_FullConfidenceIsExact(t *testing.T) {
	// awardedPoints(confidence=100%) == basePoints × underdogMultiplier
	cfg := DefaultScoringConfig
	for _, odds := range []int{0, 150, 250, 400, 550} {
		pick := models.Prediction{PickedWinner: "Silva", Confidence: 100}
		if odds > 0 {
			pick.OddsAtPick = intPtr(odds)
		}
		score := ScorePick(&pick, finishedFight("Silva", models.MethodDecision, 3), cfg)
		expected := int64(float64(score.BasePoints) * score.UnderdogMultiplier)
		if score.Points != expected {
			t.Errorf("odds %+d: expected %d points, got %d", odds, expected, score.Points)
		}
	}
}

func TestScoreFight_ProcessedLatch(t *testing.T) {
	a := newArena(t)

	_, fight := seedEventWithFight(t, a, models.BoutMainCard)
	pred := seedPrediction(t, a, "user-1", fight, "Silva", 100, nil)

	finishFight(t, a, fight, "Silva", models.MethodKO, 2)

	var loaded models.Fight
	if err := a.db.First(&loaded, "id = ?", fight.ID).Error; err != nil {
		t.Fatalf("failed to reload fight: %v", err)
	}
	if err := a.scoring.ScoreFight(&loaded); err != nil {
		t.Fatalf("first scoring run failed: %v", err)
	}

	var once models.Prediction
	a.db.First(&once, "id = ?", pred.ID)
	assertEqual(t, true, once.Processed, "processed after first run")
	assertEqual(t, int64(100), once.AwardedPoints, "points after first run")

	var profileOnce models.UserProfile
	a.db.First(&profileOnce, "external_user_id = ?", "user-1")
	assertEqual(t, int64(100), profileOnce.TotalPoints, "profile points after first run")
	assertEqual(t, int64(1), profileOnce.TotalPredictions, "profile count after first run")

	// Second run is a no-op: identical stored fields, nothing double-counted
	if err := a.scoring.ScoreFight(&loaded); err != nil {
		t.Fatalf("second scoring run failed: %v", err)
	}

	var twice models.Prediction
	a.db.First(&twice, "id = ?", pred.ID)
	assertEqual(t, once.AwardedPoints, twice.AwardedPoints, "points unchanged on re-run")
	assertEqual(t, once.AwardedXP, twice.AwardedXP, "XP unchanged on re-run")

	var profileTwice models.UserProfile
	a.db.First(&profileTwice, "external_user_id = ?", "user-1")
	assertEqual(t, profileOnce.TotalPoints, profileTwice.TotalPoints, "profile points unchanged on re-run")
	assertEqual(t, profileOnce.TotalPredictions, profileTwice.TotalPredictions, "profile count unchanged on re-run")
}

func TestScoreFight_MissStoresNeutralMultipliers(t *testing.T) {
	a := newArena(t)

	_, fight := seedEventWithFight(t, a, models.BoutMainCard)
	pred := seedPrediction(t, a, "user-1", fight, "Jones", 100, intPtr(300))

	finishFight(t, a, fight, "Silva", models.MethodKO, 2)
	var loaded models.Fight
	a.db.First(&loaded, "id = ?", fight.ID)
	if err := a.scoring.ScoreFight(&loaded); err != nil {
		t.Fatalf("scoring failed: %v", err)
	}

	var scored models.Prediction
	a.db.First(&scored, "id = ?", pred.ID)
	assertEqual(t, true, scored.Processed, "miss still latches")
	assertEqual(t, int64(0), scored.AwardedPoints, "miss awards nothing")
	assertEqual(t, 1.0, scored.MethodMultiplier, "neutral method multiplier on a miss")
	assertEqual(t, 1.0, scored.RoundMultiplier, "neutral round multiplier on a miss")
	assertEqual(t, 1.0, scored.UnderdogMultiplier, "neutral underdog multiplier on a miss")
}

func TestScoreFight_UnfinishedIsSkipped(t *testing.T) {
	a := newArena(t)

	_, fight := seedEventWithFight(t, a, models.BoutMainCard)
	seedPrediction(t, a, "user-1", fight, "Silva", 100, nil)

	var loaded models.Fight
	a.db.First(&loaded, "id = ?", fight.ID)
	if err := a.scoring.ScoreFight(&loaded); err != nil {
		t.Fatalf("scoring an unfinished fight must not error: %v", err)
	}

	var pred models.Prediction
	a.db.First(&pred, "fight_id = ?", fight.ID)
	assertEqual(t, false, pred.Processed, "prediction untouched for unfinished fight")
}
