package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserAlreadyExists      = errors.New("user already exists")
	ErrProfileNotFound        = errors.New("profile not found")
	ErrProfileAlreadyExists   = errors.New("profile already exists")
	ErrSessionNotFound        = errors.New("session not found")
	ErrConnectionNotFound     = errors.New("connection not found")
	ErrRevelationNotFound     = errors.New("revelation not found")
	ErrAccuracyRecordNotFound = errors.New("accuracy record not found")

	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotParticipant       = errors.New("user is not a participant of this connection")
	ErrDuplicateConnection  = errors.New("active connection already exists for this pair")
	ErrCannotConnectSelf    = errors.New("cannot create a connection with yourself")
	ErrConnectionPaused     = errors.New("connection is paused")
	ErrConnectionEnded      = errors.New("connection has ended")
	ErrOutOfSequence        = errors.New("revelation out of sequence")
	ErrConsentRequired      = errors.New("mutual reveal consent required")
	ErrAlreadyAdvancedToday = errors.New("reveal day already advanced today")
	ErrInvalidTransition    = errors.New("invalid stage transition")
	ErrOutcomeNotEvaluable  = errors.New("connection has no evaluable outcome yet")

	// ErrUnavailable marks persistence-layer failures that survived a
	// retry, so callers can tell "try again" from "your request was bad".
	ErrUnavailable = errors.New("storage temporarily unavailable")
)

// TransitionError is a rejected stage transition with the reason the
// guard gave. It wraps ErrInvalidTransition for errors.Is checks.
type TransitionError struct {
	Stage  ConnectionStage
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s: %s", e.Stage, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
