package domain

import "time"

// ConnectionStage is the position of a connection in the staged
// disclosure lifecycle. Stages only move forward; pausing and ending
// are tracked separately in ConnectionStatus.
type ConnectionStage string

const (
	StageSoulDiscovery        ConnectionStage = "soul_discovery"
	StageRevelationExchange   ConnectionStage = "revelation_exchange"
	StageMutualConsentPending ConnectionStage = "mutual_consent_pending"
	StagePhotoRevealed        ConnectionStage = "photo_revealed"
	StageFirstDinnerScheduled ConnectionStage = "first_dinner_scheduled"
	StageFirstDinnerCompleted ConnectionStage = "first_dinner_completed"
)

func (s ConnectionStage) Valid() bool {
	switch s {
	case StageSoulDiscovery, StageRevelationExchange, StageMutualConsentPending,
		StagePhotoRevealed, StageFirstDinnerScheduled, StageFirstDinnerCompleted:
		return true
	}
	return false
}

// AtLeast reports whether the stage has reached want in lifecycle order.
func (s ConnectionStage) AtLeast(want ConnectionStage) bool {
	return s.Index() >= want.Index()
}

// Index is the stage position in lifecycle order, -1 for unknown.
func (s ConnectionStage) Index() int {
	switch s {
	case StageSoulDiscovery:
		return 0
	case StageRevelationExchange:
		return 1
	case StageMutualConsentPending:
		return 2
	case StagePhotoRevealed:
		return 3
	case StageFirstDinnerScheduled:
		return 4
	case StageFirstDinnerCompleted:
		return 5
	}
	return -1
}

type ConnectionStatus string

const (
	StatusActive ConnectionStatus = "active"
	StatusPaused ConnectionStatus = "paused"
	StatusEnded  ConnectionStatus = "ended"
)

func (s ConnectionStatus) Valid() bool {
	return s == StatusActive || s == StatusPaused || s == StatusEnded
}

type SoulConnection struct {
	ID                     int              `json:"id" db:"id"`
	User1ID                int              `json:"user1_id" db:"user1_id"`
	User2ID                int              `json:"user2_id" db:"user2_id"`
	InitiatedBy            int              `json:"initiated_by" db:"initiated_by"`
	Stage                  ConnectionStage  `json:"connection_stage" db:"connection_stage"`
	Status                 ConnectionStatus `json:"status" db:"status"`
	CompatibilityScore     float64          `json:"compatibility_score" db:"compatibility_score"`
	CompatibilityBreakdown ScoreMap         `json:"compatibility_breakdown" db:"compatibility_breakdown"`
	RevealDay              int              `json:"reveal_day" db:"reveal_day"`
	User1Consent           bool             `json:"user1_consent" db:"user1_consent"`
	User2Consent           bool             `json:"user2_consent" db:"user2_consent"`
	MutualRevealConsent    bool             `json:"mutual_reveal_consent" db:"mutual_reveal_consent"`
	FirstDinnerCompleted   bool             `json:"first_dinner_completed" db:"first_dinner_completed"`
	LastAdvancedAt         *time.Time       `json:"last_advanced_at" db:"last_advanced_at"`
	EndedAt                *time.Time       `json:"ended_at" db:"ended_at"`
	CreatedAt              time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at" db:"updated_at"`
}

func (c *SoulConnection) HasUser(userID int) bool {
	return c.User1ID == userID || c.User2ID == userID
}

func (c *SoulConnection) OtherUserID(userID int) (int, bool) {
	if c.User1ID == userID {
		return c.User2ID, true
	}
	if c.User2ID == userID {
		return c.User1ID, true
	}
	return 0, false
}

// IsTerminal reports whether no further stage or status change is possible.
func (c *SoulConnection) IsTerminal() bool {
	return c.Status == StatusEnded || c.Stage == StageFirstDinnerCompleted
}

// guardMutable rejects mutations on paused or terminal connections.
func (c *SoulConnection) guardMutable() error {
	if c.Status == StatusEnded {
		return ErrConnectionEnded
	}
	if c.Stage == StageFirstDinnerCompleted {
		return &TransitionError{Stage: c.Stage, Reason: "connection already completed"}
	}
	if c.Status == StatusPaused {
		return ErrConnectionPaused
	}
	return nil
}

// BeginRevelations moves a fresh connection into revelation_exchange.
// The first revelation from either side triggers it; once past
// soul_discovery it is a no-op.
func (c *SoulConnection) BeginRevelations() error {
	if err := c.guardMutable(); err != nil {
		return err
	}
	if c.Stage == StageSoulDiscovery {
		c.Stage = StageRevelationExchange
	}
	return nil
}

// AdvanceRevealDay increments the day counter and, when the counter
// moves past threshold, opens the consent gate. Consent granted by both
// sides ahead of the gate completes the reveal immediately. The caller
// is responsible for the once-per-real-day check.
func (c *SoulConnection) AdvanceRevealDay(threshold int, now time.Time) error {
	if err := c.guardMutable(); err != nil {
		return err
	}
	c.RevealDay++
	c.LastAdvancedAt = &now
	if c.Stage == StageRevelationExchange && c.RevealDay > threshold {
		if c.MutualRevealConsent {
			c.Stage = StagePhotoRevealed
		} else {
			c.Stage = StageMutualConsentPending
		}
	}
	return nil
}

// SetConsent records one participant's photo-reveal consent. Repeating
// the current value is a no-op. Revoking is only possible while consent
// is not yet mutual; once both sides have consented the reveal stands.
func (c *SoulConnection) SetConsent(userID int, consent bool) error {
	if !c.HasUser(userID) {
		return ErrNotParticipant
	}
	if err := c.guardMutable(); err != nil {
		return err
	}
	if !consent && c.MutualRevealConsent {
		return &TransitionError{Stage: c.Stage, Reason: "consent cannot be revoked after mutual reveal"}
	}
	if c.User1ID == userID {
		c.User1Consent = consent
	} else {
		c.User2Consent = consent
	}
	c.MutualRevealConsent = c.User1Consent && c.User2Consent
	if c.MutualRevealConsent && c.Stage == StageMutualConsentPending {
		c.Stage = StagePhotoRevealed
	}
	return nil
}

func (c *SoulConnection) ScheduleDinner() error {
	if err := c.guardMutable(); err != nil {
		return err
	}
	if c.Stage != StagePhotoRevealed {
		return &TransitionError{Stage: c.Stage, Reason: "dinner can be scheduled only after photos are revealed"}
	}
	c.Stage = StageFirstDinnerScheduled
	return nil
}

func (c *SoulConnection) CompleteDinner() error {
	if err := c.guardMutable(); err != nil {
		return err
	}
	if c.Stage != StageFirstDinnerScheduled {
		return &TransitionError{Stage: c.Stage, Reason: "no dinner scheduled"}
	}
	c.Stage = StageFirstDinnerCompleted
	c.FirstDinnerCompleted = true
	return nil
}

// Pause suspends the connection. Pausing a paused connection is a no-op.
func (c *SoulConnection) Pause() error {
	if c.Status == StatusEnded {
		return ErrConnectionEnded
	}
	if c.Stage == StageFirstDinnerCompleted {
		return &TransitionError{Stage: c.Stage, Reason: "completed connection cannot be paused"}
	}
	c.Status = StatusPaused
	return nil
}

// Resume reactivates a paused connection. Resuming an active one is a no-op.
func (c *SoulConnection) Resume() error {
	if c.Status == StatusEnded {
		return ErrConnectionEnded
	}
	c.Status = StatusActive
	return nil
}

// End terminates the connection from any state. Ending twice is a no-op;
// the record is kept for outcome analysis, never deleted.
func (c *SoulConnection) End(now time.Time) {
	if c.Status == StatusEnded {
		return
	}
	c.Status = StatusEnded
	c.EndedAt = &now
}
