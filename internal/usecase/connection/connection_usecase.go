package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/infrastructure/gemini"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
	"github.com/soulbond-app/soulbond-backend/internal/scoring"
)

type ConnectionUseCase struct {
	connRepo     repository.ConnectionRepository
	profileRepo  repository.ProfileRepository
	accuracyRepo repository.AccuracyRepository
	scorer       *scoring.Scorer
	gemini       *gemini.Client
	log          zerolog.Logger
}

func NewConnectionUseCase(
	connRepo repository.ConnectionRepository,
	profileRepo repository.ProfileRepository,
	accuracyRepo repository.AccuracyRepository,
	scorer *scoring.Scorer,
	geminiClient *gemini.Client,
	log zerolog.Logger,
) *ConnectionUseCase {
	return &ConnectionUseCase{
		connRepo:     connRepo,
		profileRepo:  profileRepo,
		accuracyRepo: accuracyRepo,
		scorer:       scorer,
		gemini:       geminiClient,
		log:          log,
	}
}

// Create opens a connection between the initiator and a candidate. The
// compatibility score and breakdown are computed once here and frozen
// on the record: they are the prediction the feedback loop later
// measures, not a live value.
func (uc *ConnectionUseCase) Create(ctx context.Context, userID, candidateUserID int) (*domain.SoulConnection, error) {
	if userID == candidateUserID {
		return nil, domain.ErrCannotConnectSelf
	}

	if _, err := uc.connRepo.GetActiveByUsers(ctx, userID, candidateUserID); err == nil {
		return nil, domain.ErrDuplicateConnection
	} else if !errors.Is(err, domain.ErrConnectionNotFound) {
		return nil, err
	}

	me, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get initiator profile: %w", err)
	}
	other, err := uc.profileRepo.GetByUserID(ctx, candidateUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate profile: %w", err)
	}

	score := uc.scorer.Score(me, other)

	conn := &domain.SoulConnection{
		User1ID:                userID,
		User2ID:                candidateUserID,
		InitiatedBy:            userID,
		Stage:                  domain.StageSoulDiscovery,
		Status:                 domain.StatusActive,
		CompatibilityScore:     score.Total,
		CompatibilityBreakdown: score.Breakdown,
		RevealDay:              1,
	}
	if err := uc.connRepo.Create(ctx, conn); err != nil {
		return nil, err
	}

	record := &domain.CompatibilityAccuracyRecord{
		ConnectionID:         conn.ID,
		PredictedScore:       score.Total,
		PredictionConfidence: score.Confidence,
		AlgorithmVersion:     score.Version,
	}
	if err := uc.accuracyRepo.Create(ctx, record); err != nil {
		// The connection exists; a missing prediction snapshot only
		// degrades later accuracy reporting.
		uc.log.Error().Err(err).Int("connection_id", conn.ID).Msg("failed to create accuracy record")
	}

	uc.log.Info().
		Int("connection_id", conn.ID).
		Int("initiated_by", userID).
		Float64("predicted_score", score.Total).
		Msg("connection created")

	return conn, nil
}

// Get returns the connection, participants only.
func (uc *ConnectionUseCase) Get(ctx context.Context, connectionID, userID int) (*domain.SoulConnection, error) {
	conn, err := uc.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasUser(userID) {
		return nil, domain.ErrNotParticipant
	}
	return conn, nil
}

// List returns the user's connections, newest first, ended included.
func (uc *ConnectionUseCase) List(ctx context.Context, userID, limit, offset int) ([]*domain.SoulConnection, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.connRepo.ListForUser(ctx, userID, limit, offset)
}

// SetConsent records one side's photo-reveal consent. Repeating the
// same value is a no-op, so retried deliveries are harmless.
func (uc *ConnectionUseCase) SetConsent(ctx context.Context, connectionID, userID int, consent bool) (*domain.SoulConnection, error) {
	conn, err := uc.connRepo.Mutate(ctx, connectionID, func(_ context.Context, c *domain.SoulConnection) error {
		return c.SetConsent(userID, consent)
	})
	if err != nil {
		return nil, err
	}
	if conn.Stage == domain.StagePhotoRevealed {
		uc.log.Info().Int("connection_id", conn.ID).Msg("mutual consent reached, photos revealed")
	}
	return conn, nil
}

func (uc *ConnectionUseCase) Pause(ctx context.Context, connectionID, userID int) (*domain.SoulConnection, error) {
	return uc.mutateAsParticipant(ctx, connectionID, userID, func(c *domain.SoulConnection) error {
		return c.Pause()
	})
}

func (uc *ConnectionUseCase) Resume(ctx context.Context, connectionID, userID int) (*domain.SoulConnection, error) {
	return uc.mutateAsParticipant(ctx, connectionID, userID, func(c *domain.SoulConnection) error {
		return c.Resume()
	})
}

// End terminates the connection unilaterally. The record stays for the
// feedback loop; nothing is deleted.
func (uc *ConnectionUseCase) End(ctx context.Context, connectionID, userID int) (*domain.SoulConnection, error) {
	return uc.mutateAsParticipant(ctx, connectionID, userID, func(c *domain.SoulConnection) error {
		c.End(time.Now().UTC())
		return nil
	})
}

func (uc *ConnectionUseCase) ScheduleDinner(ctx context.Context, connectionID, userID int) (*domain.SoulConnection, error) {
	return uc.mutateAsParticipant(ctx, connectionID, userID, func(c *domain.SoulConnection) error {
		return c.ScheduleDinner()
	})
}

func (uc *ConnectionUseCase) CompleteDinner(ctx context.Context, connectionID, userID int) (*domain.SoulConnection, error) {
	return uc.mutateAsParticipant(ctx, connectionID, userID, func(c *domain.SoulConnection) error {
		return c.CompleteDinner()
	})
}

// Insight generates a short note on the pairing once photos are
// revealed. Returns empty text when the model is not configured.
func (uc *ConnectionUseCase) Insight(ctx context.Context, connectionID, userID int) (string, error) {
	conn, err := uc.Get(ctx, connectionID, userID)
	if err != nil {
		return "", err
	}
	if !conn.Stage.AtLeast(domain.StagePhotoRevealed) {
		return "", &domain.TransitionError{Stage: conn.Stage, Reason: "insight unlocks with the photo reveal"}
	}
	if uc.gemini == nil {
		return "", nil
	}

	p1, err := uc.profileRepo.GetByUserID(ctx, conn.User1ID)
	if err != nil {
		return "", err
	}
	p2, err := uc.profileRepo.GetByUserID(ctx, conn.User2ID)
	if err != nil {
		return "", err
	}

	shared := sharedValues(p1.CoreValues, p2.CoreValues)
	insight, err := uc.gemini.GenerateConnectionInsight(ctx, p1.Interests, p2.Interests, shared)
	if err != nil {
		uc.log.Warn().Err(err).Int("connection_id", conn.ID).Msg("insight generation failed")
		return "", nil
	}
	return insight, nil
}

func (uc *ConnectionUseCase) mutateAsParticipant(ctx context.Context, connectionID, userID int, fn func(*domain.SoulConnection) error) (*domain.SoulConnection, error) {
	return uc.connRepo.Mutate(ctx, connectionID, func(_ context.Context, c *domain.SoulConnection) error {
		if !c.HasUser(userID) {
			return domain.ErrNotParticipant
		}
		return fn(c)
	})
}

func sharedValues(a, b domain.ValueMap) []string {
	set := make(map[string]struct{})
	for _, v := range a.Flatten() {
		set[v] = struct{}{}
	}
	var out []string
	for _, v := range b.Flatten() {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
