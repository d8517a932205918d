package connection

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
	"github.com/soulbond-app/soulbond-backend/internal/repository/memory"
	"github.com/soulbond-app/soulbond-backend/internal/scoring"
)

const (
	alice = 1
	bob   = 2
	eve   = 99
)

type fixture struct {
	uc           *ConnectionUseCase
	connRepo     repository.ConnectionRepository
	accuracyRepo repository.AccuracyRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	profileRepo := memory.NewProfileRepository(store)
	connRepo := memory.NewConnectionRepository(store)
	accuracyRepo := memory.NewAccuracyRepository(store)

	style := "direct"
	for _, userID := range []int{alice, bob} {
		p := &domain.Profile{
			UserID:               userID,
			DisplayName:          "someone",
			Interests:            []string{"hiking", "jazz"},
			CoreValues:           domain.ValueMap{"family": {"loyalty"}},
			PersonalityTraits:    domain.ScoreMap{"openness": 0.7},
			CommunicationStyle:   &style,
			IsOnboardingComplete: true,
		}
		require.NoError(t, profileRepo.Create(context.Background(), p))
	}

	scorer := scoring.New("v1", nil)
	return &fixture{
		uc:           NewConnectionUseCase(connRepo, profileRepo, accuracyRepo, scorer, nil, zerolog.Nop()),
		connRepo:     connRepo,
		accuracyRepo: accuracyRepo,
	}
}

func TestCreateFreezesPrediction(t *testing.T) {
	f := newFixture(t)

	conn, err := f.uc.Create(context.Background(), alice, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.StageSoulDiscovery, conn.Stage)
	assert.Equal(t, domain.StatusActive, conn.Status)
	assert.Equal(t, alice, conn.InitiatedBy)
	assert.Equal(t, 1, conn.RevealDay)
	assert.Greater(t, conn.CompatibilityScore, 0.0)
	assert.NotEmpty(t, conn.CompatibilityBreakdown)

	record, err := f.accuracyRepo.GetByConnectionID(context.Background(), conn.ID)
	require.NoError(t, err)
	assert.Equal(t, conn.CompatibilityScore, record.PredictedScore)
	assert.Equal(t, "v1", record.AlgorithmVersion)
	assert.False(t, record.Evaluated())
}

func TestCreateGuards(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), alice, alice)
	assert.ErrorIs(t, err, domain.ErrCannotConnectSelf)

	_, err = f.uc.Create(context.Background(), alice, bob)
	require.NoError(t, err)

	// Only one live connection per pair, regardless of direction.
	_, err = f.uc.Create(context.Background(), alice, bob)
	assert.ErrorIs(t, err, domain.ErrDuplicateConnection)
	_, err = f.uc.Create(context.Background(), bob, alice)
	assert.ErrorIs(t, err, domain.ErrDuplicateConnection)

	_, err = f.uc.Create(context.Background(), alice, eve)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestCreateAllowedAfterEnd(t *testing.T) {
	f := newFixture(t)

	conn, err := f.uc.Create(context.Background(), alice, bob)
	require.NoError(t, err)

	_, err = f.uc.End(context.Background(), conn.ID, alice)
	require.NoError(t, err)

	// The ended record stays behind and does not block a fresh start.
	again, err := f.uc.Create(context.Background(), bob, alice)
	require.NoError(t, err)
	assert.NotEqual(t, conn.ID, again.ID)

	ended, err := f.uc.Get(context.Background(), conn.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, ended.Status)
}

func TestGetParticipantsOnly(t *testing.T) {
	f := newFixture(t)

	conn, err := f.uc.Create(context.Background(), alice, bob)
	require.NoError(t, err)

	_, err = f.uc.Get(context.Background(), conn.ID, eve)
	assert.ErrorIs(t, err, domain.ErrNotParticipant)

	_, err = f.uc.Get(context.Background(), 12345, alice)
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
}

func TestSetConsentFlow(t *testing.T) {
	f := newFixture(t)

	conn, err := f.uc.Create(context.Background(), alice, bob)
	require.NoError(t, err)

	// Walk to the consent gate.
	_, err = f.connRepo.Mutate(context.Background(), conn.ID, func(_ context.Context, c *domain.SoulConnection) error {
		if err := c.BeginRevelations(); err != nil {
			return err
		}
		for i := 0; i < 7; i++ {
			if err := c.AdvanceRevealDay(7, c.UpdatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	got, err := f.uc.SetConsent(context.Background(), conn.ID, alice, true)
	require.NoError(t, err)
	assert.Equal(t, domain.StageMutualConsentPending, got.Stage)

	// Repeating the same consent is harmless.
	_, err = f.uc.SetConsent(context.Background(), conn.ID, alice, true)
	require.NoError(t, err)

	got, err = f.uc.SetConsent(context.Background(), conn.ID, bob, true)
	require.NoError(t, err)
	assert.Equal(t, domain.StagePhotoRevealed, got.Stage)
	assert.True(t, got.MutualRevealConsent)

	_, err = f.uc.SetConsent(context.Background(), conn.ID, eve, true)
	assert.ErrorIs(t, err, domain.ErrNotParticipant)
}

func TestPauseResumeEnd(t *testing.T) {
	f := newFixture(t)

	conn, err := f.uc.Create(context.Background(), alice, bob)
	require.NoError(t, err)

	got, err := f.uc.Pause(context.Background(), conn.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaused, got.Status)

	got, err = f.uc.Resume(context.Background(), conn.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)

	got, err = f.uc.End(context.Background(), conn.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, got.Status)
	require.NotNil(t, got.EndedAt)

	// Ending again is a no-op, but other mutations are refused.
	_, err = f.uc.End(context.Background(), conn.ID, bob)
	require.NoError(t, err)
	_, err = f.uc.Pause(context.Background(), conn.ID, alice)
	assert.ErrorIs(t, err, domain.ErrConnectionEnded)
}

func TestDinnerRequiresPhotoReveal(t *testing.T) {
	f := newFixture(t)

	conn, err := f.uc.Create(context.Background(), alice, bob)
	require.NoError(t, err)

	_, err = f.uc.ScheduleDinner(context.Background(), conn.ID, alice)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestInsightRequiresPhotoReveal(t *testing.T) {
	f := newFixture(t)

	conn, err := f.uc.Create(context.Background(), alice, bob)
	require.NoError(t, err)

	_, err = f.uc.Insight(context.Background(), conn.ID, alice)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestList(t *testing.T) {
	f := newFixture(t)

	conn, err := f.uc.Create(context.Background(), alice, bob)
	require.NoError(t, err)

	conns, err := f.uc.List(context.Background(), alice, 0, 0)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, conn.ID, conns[0].ID)

	conns, err = f.uc.List(context.Background(), eve, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, conns)
}
