package feedback

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/soulbond-app/soulbond-backend/internal/config"
	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
)

// Weighting of the observed-success composite. Stage progress dominates
// because reaching later stages is the behavior the prediction is
// meant to forecast.
const (
	stageWeight      = 40.0
	completionWeight = 30.0
	messageWeight    = 30.0

	// expectedMessagesPerDay saturates the engagement component.
	expectedMessagesPerDay = 5.0

	// satisfactionBlend is how much an explicit mutual-satisfaction
	// rating shifts the composite when provided.
	satisfactionBlend = 0.3
)

type FeedbackUseCase struct {
	connRepo     repository.ConnectionRepository
	revRepo      repository.RevelationRepository
	messageRepo  repository.MessageRepository
	accuracyRepo repository.AccuracyRepository
	pacing       config.PacingConfig
	log          zerolog.Logger
}

func NewFeedbackUseCase(
	connRepo repository.ConnectionRepository,
	revRepo repository.RevelationRepository,
	messageRepo repository.MessageRepository,
	accuracyRepo repository.AccuracyRepository,
	pacing config.PacingConfig,
	log zerolog.Logger,
) *FeedbackUseCase {
	return &FeedbackUseCase{
		connRepo:     connRepo,
		revRepo:      revRepo,
		messageRepo:  messageRepo,
		accuracyRepo: accuracyRepo,
		pacing:       pacing,
		log:          log,
	}
}

type OutcomeRequest struct {
	// MutualSatisfaction is an optional 0-10 rating collected from the
	// participants after the connection resolves.
	MutualSatisfaction *float64 `json:"mutual_satisfaction" binding:"omitempty,min=0,max=10"`
}

// RecordOutcome fills the connection's accuracy record with observed
// outcome metrics and the resulting prediction error. Terminal
// connections get their final evaluation; active ones an interim one
// that later calls overwrite. The predicted score itself is never
// touched.
func (uc *FeedbackUseCase) RecordOutcome(ctx context.Context, connectionID, userID int, req *OutcomeRequest) (*domain.CompatibilityAccuracyRecord, error) {
	conn, err := uc.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasUser(userID) {
		return nil, domain.ErrNotParticipant
	}

	record, err := uc.accuracyRepo.GetByConnectionID(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	messageCount, err := uc.messageRepo.CountByConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	revelationCount, err := uc.revRepo.CountByConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	daysSurvived := conn.RevealDay
	if daysSurvived < 1 {
		daysSurvived = 1
	}

	perDay := uc.pacing.RevelationsPerDay
	if perDay < 1 {
		perDay = 1
	}
	expected := float64(2 * perDay * daysSurvived)
	completionRate := 0.0
	if expected > 0 {
		completionRate = math.Min(float64(revelationCount)/expected, 1)
	}

	reachedPhotoReveal := conn.Stage.AtLeast(domain.StagePhotoRevealed)
	actual := uc.actualSuccessScore(conn, completionRate, messageCount, daysSurvived, req.MutualSatisfaction)

	accuracy := 100 - math.Abs(record.PredictedScore-actual)
	// Signed: positive means the scorer overestimated this pairing.
	predictionError := record.PredictedScore - actual

	now := time.Now().UTC()
	record.MessageCount = &messageCount
	record.RevelationCompletionRate = &completionRate
	record.DaysSurvived = &daysSurvived
	record.ReachedPhotoReveal = &reachedPhotoReveal
	record.MutualSatisfaction = req.MutualSatisfaction
	record.ActualSuccessScore = &actual
	record.PredictionAccuracy = &accuracy
	record.PredictionError = &predictionError
	record.EvaluatedAt = &now

	if err := uc.accuracyRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	uc.log.Info().
		Int("connection_id", connectionID).
		Float64("predicted", record.PredictedScore).
		Float64("actual", actual).
		Float64("error", predictionError).
		Str("algorithm_version", record.AlgorithmVersion).
		Msg("outcome recorded")

	return record, nil
}

// ListForCalibration returns evaluated records for weight
// recalibration; the recalibration itself happens elsewhere.
func (uc *FeedbackUseCase) ListForCalibration(ctx context.Context, algorithmVersion string, limit, offset int) ([]*domain.CompatibilityAccuracyRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	return uc.accuracyRepo.ListEvaluated(ctx, algorithmVersion, limit, offset)
}

// actualSuccessScore maps observed behavior onto the same 0-100 scale
// as predictions: stage progress, revelation completion and message
// engagement, optionally blended with an explicit satisfaction rating.
func (uc *FeedbackUseCase) actualSuccessScore(conn *domain.SoulConnection, completionRate float64, messageCount, daysSurvived int, satisfaction *float64) float64 {
	stageProgress := float64(conn.Stage.Index()) / 5.0

	engagement := math.Min(float64(messageCount)/(expectedMessagesPerDay*float64(daysSurvived)), 1)

	score := stageProgress*stageWeight + completionRate*completionWeight + engagement*messageWeight
	if satisfaction != nil {
		score = score*(1-satisfactionBlend) + (*satisfaction * 10 * satisfactionBlend)
	}
	return math.Max(0, math.Min(score, 100))
}
