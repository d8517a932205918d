package domain

import "time"

// RevelationType is the kind of disclosure a participant shares on a
// given day. Written types come first; photo_reveal is only reachable
// after mutual consent.
type RevelationType string

const (
	RevelationPersonalValue        RevelationType = "personal_value"
	RevelationMeaningfulExperience RevelationType = "meaningful_experience"
	RevelationHopeDream            RevelationType = "hope_dream"
	RevelationHumor                RevelationType = "humor"
	RevelationChallengeOvercome    RevelationType = "challenge_overcome"
	RevelationIdealConnection      RevelationType = "ideal_connection"
	RevelationPhotoReveal          RevelationType = "photo_reveal"
)

func (t RevelationType) Valid() bool {
	switch t {
	case RevelationPersonalValue, RevelationMeaningfulExperience, RevelationHopeDream,
		RevelationHumor, RevelationChallengeOvercome, RevelationIdealConnection,
		RevelationPhotoReveal:
		return true
	}
	return false
}

func (t RevelationType) IsPhoto() bool {
	return t == RevelationPhotoReveal
}

type DailyRevelation struct {
	ID             int            `json:"id" db:"id"`
	ConnectionID   int            `json:"connection_id" db:"connection_id"`
	SenderID       int            `json:"sender_id" db:"sender_id"`
	DayNumber      int            `json:"day_number" db:"day_number"`
	RevelationType RevelationType `json:"revelation_type" db:"revelation_type"`
	Content        string         `json:"content" db:"content"`
	IsRead         bool           `json:"is_read" db:"is_read"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}
