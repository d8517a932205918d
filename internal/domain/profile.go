package domain

import "time"

type Profile struct {
	ID                   int        `json:"id" db:"id"`
	UserID               int        `json:"user_id" db:"user_id"`
	DisplayName          string     `json:"display_name" db:"display_name"`
	Bio                  *string    `json:"bio" db:"bio"`
	City                 *string    `json:"city" db:"city"`
	Interests            []string   `json:"interests" db:"interests"`
	CoreValues           ValueMap   `json:"core_values" db:"core_values"`
	PersonalityTraits    ScoreMap   `json:"personality_traits" db:"personality_traits"`
	CommunicationStyle   *string    `json:"communication_style" db:"communication_style"`
	EmotionalDepth       *float64   `json:"emotional_depth" db:"emotional_depth"`
	PhotoRef             *string    `json:"photo_ref,omitempty" db:"photo_ref"`
	LocationLat          *float64   `json:"location_lat" db:"location_lat"`
	LocationLon          *float64   `json:"location_lon" db:"location_lon"`
	LocationUpdatedAt    *time.Time `json:"location_updated_at" db:"location_updated_at"`
	PrefMinAge           *int       `json:"pref_min_age" db:"pref_min_age"`
	PrefMaxAge           *int       `json:"pref_max_age" db:"pref_max_age"`
	PrefMaxDistanceKm    *int       `json:"pref_max_distance_km" db:"pref_max_distance_km"`
	IsOnboardingComplete bool       `json:"is_onboarding_complete" db:"is_onboarding_complete"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}
