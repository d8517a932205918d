package revelation

import (
	"context"
	"testing"
	"time"

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

func newTestUseCase(t *testing.T) (*RevelationUseCase, repository.ConnectionRepository, int) {
	t.Helper()
	store := memory.NewStore()
	connRepo := memory.NewConnectionRepository(store)
	revRepo := memory.NewRevelationRepository(store)

	conn := &domain.SoulConnection{
		User1ID:   alice,
		User2ID:   bob,
		Stage:     domain.StageSoulDiscovery,
		Status:    domain.StatusActive,
		RevealDay: 1,
	}
	require.NoError(t, connRepo.Create(context.Background(), conn))

	uc := NewRevelationUseCase(connRepo, revRepo, config.PacingConfig{ConsentDay: 7, RevelationsPerDay: 1}, nil, zerolog.Nop())
	return uc, connRepo, conn.ID
}

func submitReq(revType domain.RevelationType) *SubmitRequest {
	return &SubmitRequest{RevelationType: revType, Content: "something true about me"}
}

func TestSubmitFirstRevelationStartsExchange(t *testing.T) {
	uc, connRepo, connID := newTestUseCase(t)

	rev, err := uc.Submit(context.Background(), connID, alice, submitReq(domain.RevelationPersonalValue))
	require.NoError(t, err)
	assert.Equal(t, 1, rev.DayNumber)
	assert.Equal(t, alice, rev.SenderID)

	conn, err := connRepo.GetByID(context.Background(), connID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageRevelationExchange, conn.Stage)
}

func TestSubmitOnePerSenderPerDay(t *testing.T) {
	uc, _, connID := newTestUseCase(t)

	_, err := uc.Submit(context.Background(), connID, alice, submitReq(domain.RevelationPersonalValue))
	require.NoError(t, err)

	// A second written revelation from the same sender on the same day
	// is rejected, even with a different type.
	_, err = uc.Submit(context.Background(), connID, alice, submitReq(domain.RevelationHumor))
	assert.ErrorIs(t, err, domain.ErrOutOfSequence)

	// The other participant still has their slot.
	_, err = uc.Submit(context.Background(), connID, bob, submitReq(domain.RevelationHopeDream))
	assert.NoError(t, err)
}

func TestSubmitNextDayAfterAdvance(t *testing.T) {
	uc, _, connID := newTestUseCase(t)

	_, err := uc.Submit(context.Background(), connID, alice, submitReq(domain.RevelationPersonalValue))
	require.NoError(t, err)

	_, err = uc.AdvanceDay(context.Background(), connID, alice)
	require.NoError(t, err)

	rev, err := uc.Submit(context.Background(), connID, alice, submitReq(domain.RevelationHumor))
	require.NoError(t, err)
	assert.Equal(t, 2, rev.DayNumber)
}

func TestSubmitExplicitDayMustMatch(t *testing.T) {
	uc, _, connID := newTestUseCase(t)

	_, err := uc.Submit(context.Background(), connID, alice, &SubmitRequest{
		RevelationType: domain.RevelationPersonalValue,
		Content:        "early bird",
		DayNumber:      3,
	})
	assert.ErrorIs(t, err, domain.ErrOutOfSequence)
}

func TestSubmitValidation(t *testing.T) {
	uc, _, connID := newTestUseCase(t)

	_, err := uc.Submit(context.Background(), connID, alice, &SubmitRequest{RevelationType: "palm_reading", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Submit(context.Background(), connID, alice, &SubmitRequest{RevelationType: domain.RevelationHumor, Content: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Submit(context.Background(), connID, eve, submitReq(domain.RevelationHumor))
	assert.ErrorIs(t, err, domain.ErrNotParticipant)
}

func TestSubmitPhotoRequiresMutualConsent(t *testing.T) {
	uc, connRepo, connID := newTestUseCase(t)

	_, err := uc.Submit(context.Background(), connID, alice, submitReq(domain.RevelationPhotoReveal))
	assert.ErrorIs(t, err, domain.ErrConsentRequired)

	// Grant consent on both sides, then the photo goes through.
	_, err = connRepo.Mutate(context.Background(), connID, func(_ context.Context, c *domain.SoulConnection) error {
		if err := c.SetConsent(alice, true); err != nil {
			return err
		}
		return c.SetConsent(bob, true)
	})
	require.NoError(t, err)

	rev, err := uc.Submit(context.Background(), connID, alice, submitReq(domain.RevelationPhotoReveal))
	require.NoError(t, err)
	assert.True(t, rev.RevelationType.IsPhoto())
}

func TestSubmitBlockedWhenPaused(t *testing.T) {
	uc, connRepo, connID := newTestUseCase(t)

	_, err := connRepo.Mutate(context.Background(), connID, func(_ context.Context, c *domain.SoulConnection) error {
		return c.Pause()
	})
	require.NoError(t, err)

	_, err = uc.Submit(context.Background(), connID, alice, submitReq(domain.RevelationHumor))
	assert.ErrorIs(t, err, domain.ErrConnectionPaused)
}

func TestAdvanceDayOncePerCalendarDay(t *testing.T) {
	uc, _, connID := newTestUseCase(t)

	day := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return day }

	conn, err := uc.AdvanceDay(context.Background(), connID, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, conn.RevealDay)

	// Same calendar day, even hours later and by the other participant.
	uc.now = func() time.Time { return day.Add(10 * time.Hour) }
	_, err = uc.AdvanceDay(context.Background(), connID, bob)
	assert.ErrorIs(t, err, domain.ErrAlreadyAdvancedToday)

	// Next day it works again.
	uc.now = func() time.Time { return day.Add(24 * time.Hour) }
	conn, err = uc.AdvanceDay(context.Background(), connID, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, conn.RevealDay)
}

func TestAdvanceDayOpensConsentGateOnSeventhDay(t *testing.T) {
	uc, _, connID := newTestUseCase(t)

	_, err := uc.Submit(context.Background(), connID, alice, submitReq(domain.RevelationPersonalValue))
	require.NoError(t, err)

	day := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var conn *domain.SoulConnection
	for i := 0; i < 7; i++ {
		uc.now = func() time.Time { return day.AddDate(0, 0, i+1) }
		conn, err = uc.AdvanceDay(context.Background(), connID, alice)
		require.NoError(t, err)
		if i < 6 {
			assert.Equal(t, domain.StageRevelationExchange, conn.Stage, "day %d", conn.RevealDay)
		}
	}
	assert.Equal(t, 8, conn.RevealDay)
	assert.Equal(t, domain.StageMutualConsentPending, conn.Stage)
}

func TestAdvanceDayParticipantsOnly(t *testing.T) {
	uc, _, connID := newTestUseCase(t)

	_, err := uc.AdvanceDay(context.Background(), connID, eve)
	assert.ErrorIs(t, err, domain.ErrNotParticipant)
}

func TestListAndMarkRead(t *testing.T) {
	uc, _, connID := newTestUseCase(t)

	rev, err := uc.Submit(context.Background(), connID, alice, submitReq(domain.RevelationPersonalValue))
	require.NoError(t, err)

	revs, err := uc.List(context.Background(), connID, bob)
	require.NoError(t, err)
	require.Len(t, revs, 1)

	// The sender cannot mark their own revelation as read.
	err = uc.MarkRead(context.Background(), connID, rev.ID, alice)
	assert.ErrorIs(t, err, domain.ErrRevelationNotFound)

	require.NoError(t, uc.MarkRead(context.Background(), connID, rev.ID, bob))

	revs, err = uc.List(context.Background(), connID, alice)
	require.NoError(t, err)
	assert.True(t, revs[0].IsRead)

	_, err = uc.List(context.Background(), connID, eve)
	assert.ErrorIs(t, err, domain.ErrNotParticipant)
}

func TestPromptWrittenTypesOnly(t *testing.T) {
	uc, _, connID := newTestUseCase(t)

	_, err := uc.Prompt(context.Background(), connID, alice, domain.RevelationPhotoReveal)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Without a model configured the prompt is empty but not an error.
	prompt, err := uc.Prompt(context.Background(), connID, alice, domain.RevelationHumor)
	require.NoError(t, err)
	assert.Empty(t, prompt)
}
