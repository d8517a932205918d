package feedback

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soulbond-app/soulbond-backend/internal/config"
	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
	"github.com/soulbond-app/soulbond-backend/internal/repository/memory"
)

const (
	alice = 1
	bob   = 2
	eve   = 99
)

type fixture struct {
	uc          *FeedbackUseCase
	connRepo    repository.ConnectionRepository
	revRepo     repository.RevelationRepository
	messageRepo repository.MessageRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		connRepo:    memory.NewConnectionRepository(store),
		revRepo:     memory.NewRevelationRepository(store),
		messageRepo: memory.NewMessageRepository(store),
	}
	f.uc = NewFeedbackUseCase(
		f.connRepo, f.revRepo, f.messageRepo, memory.NewAccuracyRepository(store),
		config.PacingConfig{ConsentDay: 7, RevelationsPerDay: 1}, zerolog.Nop(),
	)
	return f
}

// seed creates a connection with its frozen prediction record.
func (f *fixture) seed(t *testing.T, predicted float64, stage domain.ConnectionStage, revealDay int) *domain.SoulConnection {
	t.Helper()
	conn := &domain.SoulConnection{
		User1ID:   alice,
		User2ID:   bob,
		Stage:     stage,
		Status:    domain.StatusActive,
		RevealDay: revealDay,
	}
	require.NoError(t, f.connRepo.Create(context.Background(), conn))

	accuracyRepo := f.uc.accuracyRepo
	require.NoError(t, accuracyRepo.Create(context.Background(), &domain.CompatibilityAccuracyRecord{
		ConnectionID:     conn.ID,
		PredictedScore:   predicted,
		AlgorithmVersion: "v1",
	}))
	return conn
}

func TestRecordOutcomeOverestimation(t *testing.T) {
	f := newFixture(t)

	// Predicted a near-perfect match; the pair stalled on day two with
	// no revelations and no messages.
	conn := f.seed(t, 95, domain.StageSoulDiscovery, 2)

	record, err := f.uc.RecordOutcome(context.Background(), conn.ID, alice, &OutcomeRequest{})
	require.NoError(t, err)
	require.True(t, record.Evaluated())

	require.NotNil(t, record.ActualSuccessScore)
	assert.Equal(t, 0.0, *record.ActualSuccessScore)
	require.NotNil(t, record.PredictionError)
	assert.Equal(t, 95.0, *record.PredictionError)
	require.NotNil(t, record.PredictionAccuracy)
	assert.Equal(t, 5.0, *record.PredictionAccuracy)
	require.NotNil(t, record.ReachedPhotoReveal)
	assert.False(t, *record.ReachedPhotoReveal)
	assert.Equal(t, 95.0, record.PredictedScore)
}

func TestRecordOutcomeSuccessfulConnection(t *testing.T) {
	f := newFixture(t)

	conn := f.seed(t, 80, domain.StageFirstDinnerCompleted, 8)

	// Full revelation schedule plus lively messaging.
	for day := 1; day <= 8; day++ {
		for _, sender := range []int{alice, bob} {
			require.NoError(t, f.revRepo.Create(context.Background(), &domain.DailyRevelation{
				ConnectionID:   conn.ID,
				SenderID:       sender,
				DayNumber:      day,
				RevelationType: domain.RevelationPersonalValue,
				Content:        "shared",
			}))
		}
	}
	for i := 0; i < 40; i++ {
		require.NoError(t, f.messageRepo.Create(context.Background(), &domain.Message{
			ConnectionID: conn.ID,
			SenderID:     alice,
			Content:      "hi",
		}))
	}

	record, err := f.uc.RecordOutcome(context.Background(), conn.ID, bob, &OutcomeRequest{})
	require.NoError(t, err)

	// Final stage, full completion, saturated engagement.
	require.NotNil(t, record.ActualSuccessScore)
	assert.InDelta(t, 100, *record.ActualSuccessScore, 0.001)
	require.NotNil(t, record.PredictionError)
	assert.InDelta(t, -20, *record.PredictionError, 0.001)
	require.NotNil(t, record.RevelationCompletionRate)
	assert.InDelta(t, 1.0, *record.RevelationCompletionRate, 0.001)
	require.NotNil(t, record.ReachedPhotoReveal)
	assert.True(t, *record.ReachedPhotoReveal)
}

func TestRecordOutcomeSatisfactionBlend(t *testing.T) {
	f := newFixture(t)

	conn := f.seed(t, 50, domain.StageSoulDiscovery, 1)

	satisfaction := 10.0
	record, err := f.uc.RecordOutcome(context.Background(), conn.ID, alice, &OutcomeRequest{MutualSatisfaction: &satisfaction})
	require.NoError(t, err)

	// Behavior says 0, the explicit rating pulls the blend up.
	require.NotNil(t, record.ActualSuccessScore)
	assert.InDelta(t, 30, *record.ActualSuccessScore, 0.001)
	require.NotNil(t, record.MutualSatisfaction)
	assert.Equal(t, 10.0, *record.MutualSatisfaction)
}

func TestRecordOutcomeInterimOverwrite(t *testing.T) {
	f := newFixture(t)

	conn := f.seed(t, 60, domain.StageRevelationExchange, 3)

	first, err := f.uc.RecordOutcome(context.Background(), conn.ID, alice, &OutcomeRequest{})
	require.NoError(t, err)

	require.NoError(t, f.messageRepo.Create(context.Background(), &domain.Message{
		ConnectionID: conn.ID,
		SenderID:     bob,
		Content:      "still here",
	}))

	second, err := f.uc.RecordOutcome(context.Background(), conn.ID, bob, &OutcomeRequest{})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Greater(t, *second.ActualSuccessScore, *first.ActualSuccessScore)
	// The frozen prediction never moves.
	assert.Equal(t, first.PredictedScore, second.PredictedScore)
}

func TestRecordOutcomeGuards(t *testing.T) {
	f := newFixture(t)

	conn := f.seed(t, 70, domain.StageSoulDiscovery, 1)

	_, err := f.uc.RecordOutcome(context.Background(), conn.ID, eve, &OutcomeRequest{})
	assert.ErrorIs(t, err, domain.ErrNotParticipant)

	_, err = f.uc.RecordOutcome(context.Background(), 12345, alice, &OutcomeRequest{})
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
}

func TestListForCalibration(t *testing.T) {
	f := newFixture(t)

	evaluated := f.seed(t, 85, domain.StagePhotoRevealed, 8)

	// A second, never-evaluated prediction for an unrelated pair.
	other := &domain.SoulConnection{
		User1ID:   3,
		User2ID:   4,
		Stage:     domain.StageSoulDiscovery,
		Status:    domain.StatusActive,
		RevealDay: 1,
	}
	require.NoError(t, f.connRepo.Create(context.Background(), other))
	require.NoError(t, f.uc.accuracyRepo.Create(context.Background(), &domain.CompatibilityAccuracyRecord{
		ConnectionID:     other.ID,
		PredictedScore:   40,
		AlgorithmVersion: "v1",
	}))

	_, err := f.uc.RecordOutcome(context.Background(), evaluated.ID, alice, &OutcomeRequest{})
	require.NoError(t, err)

	records, err := f.uc.ListForCalibration(context.Background(), "v1", 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, evaluated.ID, records[0].ConnectionID)

	records, err = f.uc.ListForCalibration(context.Background(), "v2", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
