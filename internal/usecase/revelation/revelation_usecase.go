package revelation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/soulbond-app/soulbond-backend/internal/config"
	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/infrastructure/gemini"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
)

type RevelationUseCase struct {
	connRepo repository.ConnectionRepository
	revRepo  repository.RevelationRepository
	pacing   config.PacingConfig
	gemini   *gemini.Client
	log      zerolog.Logger

	// now is swappable in tests to cross calendar-day boundaries.
	now func() time.Time
}

func NewRevelationUseCase(
	connRepo repository.ConnectionRepository,
	revRepo repository.RevelationRepository,
	pacing config.PacingConfig,
	geminiClient *gemini.Client,
	log zerolog.Logger,
) *RevelationUseCase {
	return &RevelationUseCase{
		connRepo: connRepo,
		revRepo:  revRepo,
		pacing:   pacing,
		gemini:   geminiClient,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitRequest is one disclosure. DayNumber is optional; when set it
// must equal the connection's current reveal day — the schedule is not
// caller-chosen.
type SubmitRequest struct {
	RevelationType domain.RevelationType `json:"revelation_type" binding:"required"`
	Content        string                `json:"content" binding:"required,max=4000"`
	DayNumber      int                   `json:"day_number" binding:"omitempty,min=1"`
}

// Submit records a revelation for the connection's current day. The
// first revelation from either side moves the connection out of
// soul_discovery. Photo reveals require mutual consent; written types
// are limited to one per sender per day.
func (uc *RevelationUseCase) Submit(ctx context.Context, connectionID, senderID int, req *SubmitRequest) (*domain.DailyRevelation, error) {
	if !req.RevelationType.Valid() {
		return nil, fmt.Errorf("%w: unknown revelation type %q", domain.ErrInvalidInput, req.RevelationType)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
	}

	var rev *domain.DailyRevelation
	_, err := uc.connRepo.Mutate(ctx, connectionID, func(txCtx context.Context, conn *domain.SoulConnection) error {
		if !conn.HasUser(senderID) {
			return domain.ErrNotParticipant
		}
		if req.DayNumber != 0 && req.DayNumber != conn.RevealDay {
			return domain.ErrOutOfSequence
		}

		if req.RevelationType.IsPhoto() {
			if !conn.MutualRevealConsent {
				return domain.ErrConsentRequired
			}
			// Status guards still apply to photo reveals.
			if err := conn.BeginRevelations(); err != nil {
				return err
			}
		} else {
			if err := conn.BeginRevelations(); err != nil {
				return err
			}
			_, err := uc.revRepo.GetBySenderAndDay(txCtx, connectionID, senderID, conn.RevealDay)
			if err == nil {
				return domain.ErrOutOfSequence
			}
			if !errors.Is(err, domain.ErrRevelationNotFound) {
				return err
			}
		}

		rev = &domain.DailyRevelation{
			ConnectionID:   connectionID,
			SenderID:       senderID,
			DayNumber:      conn.RevealDay,
			RevelationType: req.RevelationType,
			Content:        req.Content,
		}
		return uc.revRepo.Create(txCtx, rev)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// AdvanceDay moves the connection to the next reveal day, at most once
// per UTC calendar day. Crossing the configured threshold opens the
// consent gate.
func (uc *RevelationUseCase) AdvanceDay(ctx context.Context, connectionID, userID int) (*domain.SoulConnection, error) {
	now := uc.now()
	conn, err := uc.connRepo.Mutate(ctx, connectionID, func(_ context.Context, c *domain.SoulConnection) error {
		if !c.HasUser(userID) {
			return domain.ErrNotParticipant
		}
		if c.LastAdvancedAt != nil && sameDay(*c.LastAdvancedAt, now) {
			return domain.ErrAlreadyAdvancedToday
		}
		return c.AdvanceRevealDay(uc.pacing.ConsentDay, now)
	})
	if err != nil {
		return nil, err
	}
	if conn.Stage == domain.StageMutualConsentPending {
		uc.log.Info().Int("connection_id", conn.ID).Int("reveal_day", conn.RevealDay).
			Msg("revelation days completed, awaiting mutual consent")
	}
	return conn, nil
}

// List returns the connection's revelations in day order, participants only.
func (uc *RevelationUseCase) List(ctx context.Context, connectionID, userID int) ([]*domain.DailyRevelation, error) {
	conn, err := uc.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasUser(userID) {
		return nil, domain.ErrNotParticipant
	}
	return uc.revRepo.ListByConnection(ctx, connectionID)
}

// MarkRead flags a revelation as read by its recipient.
func (uc *RevelationUseCase) MarkRead(ctx context.Context, connectionID, revelationID, userID int) error {
	conn, err := uc.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	if !conn.HasUser(userID) {
		return domain.ErrNotParticipant
	}
	rev, err := uc.revRepo.GetByID(ctx, revelationID)
	if err != nil {
		return err
	}
	if rev.ConnectionID != connectionID || rev.SenderID == userID {
		return domain.ErrRevelationNotFound
	}
	return uc.revRepo.MarkRead(ctx, revelationID)
}

// Prompt suggests what to write for the given type on the connection's
// current day. Empty when no model is configured.
func (uc *RevelationUseCase) Prompt(ctx context.Context, connectionID, userID int, revType domain.RevelationType) (string, error) {
	if !revType.Valid() || revType.IsPhoto() {
		return "", fmt.Errorf("%w: prompts exist for written revelation types only", domain.ErrInvalidInput)
	}
	conn, err := uc.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return "", err
	}
	if !conn.HasUser(userID) {
		return "", domain.ErrNotParticipant
	}
	if uc.gemini == nil {
		return "", nil
	}
	return uc.gemini.GenerateRevelationPrompt(ctx, revType, conn.RevealDay)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
