package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `
	id, user_id, display_name, bio, city, interests, core_values,
	personality_traits, communication_style, emotional_depth, photo_ref,
	location_lat, location_lon, location_updated_at,
	pref_min_age, pref_max_age, pref_max_distance_km,
	is_onboarding_complete, created_at, updated_at
`

func scanProfile(row *sql.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.Bio, &p.City,
		pq.Array(&p.Interests), &p.CoreValues,
		&p.PersonalityTraits, &p.CommunicationStyle, &p.EmotionalDepth, &p.PhotoRef,
		&p.LocationLat, &p.LocationLon, &p.LocationUpdatedAt,
		&p.PrefMinAge, &p.PrefMaxAge, &p.PrefMaxDistanceKm,
		&p.IsOnboardingComplete, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (
			user_id, display_name, bio, city, interests, core_values,
			personality_traits, communication_style, emotional_depth, photo_ref,
			location_lat, location_lon, location_updated_at,
			pref_min_age, pref_max_age, pref_max_distance_km, is_onboarding_complete
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at
	`
	err := q(ctx, r.db).QueryRowContext(ctx, query,
		profile.UserID, profile.DisplayName, profile.Bio, profile.City,
		pq.Array(profile.Interests), profile.CoreValues,
		profile.PersonalityTraits, profile.CommunicationStyle, profile.EmotionalDepth, profile.PhotoRef,
		profile.LocationLat, profile.LocationLon, profile.LocationUpdatedAt,
		profile.PrefMinAge, profile.PrefMaxAge, profile.PrefMaxDistanceKm,
		profile.IsOnboardingComplete,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrProfileAlreadyExists
		}
		return err
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id int) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(q(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID int) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return scanProfile(q(ctx, r.db).QueryRowContext(ctx, query, userID))
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $1, bio = $2, city = $3, interests = $4,
		    core_values = $5, personality_traits = $6, communication_style = $7,
		    emotional_depth = $8, photo_ref = $9,
		    location_lat = $10, location_lon = $11, location_updated_at = $12,
		    pref_min_age = $13, pref_max_age = $14, pref_max_distance_km = $15,
		    is_onboarding_complete = $16,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $17
		RETURNING updated_at
	`
	err := q(ctx, r.db).QueryRowContext(ctx, query,
		profile.DisplayName, profile.Bio, profile.City, pq.Array(profile.Interests),
		profile.CoreValues, profile.PersonalityTraits, profile.CommunicationStyle,
		profile.EmotionalDepth, profile.PhotoRef,
		profile.LocationLat, profile.LocationLon, profile.LocationUpdatedAt,
		profile.PrefMinAge, profile.PrefMaxAge, profile.PrefMaxDistanceKm,
		profile.IsOnboardingComplete,
		profile.ID,
	).Scan(&profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProfileNotFound
	}
	return err
}

func (r *profileRepository) ListEligible(ctx context.Context, excludeUserID, limit, offset int) ([]*domain.Profile, error) {
	query := `
		SELECT p.id, p.user_id, p.display_name, p.bio, p.city, p.interests, p.core_values,
		       p.personality_traits, p.communication_style, p.emotional_depth, p.photo_ref,
		       p.location_lat, p.location_lon, p.location_updated_at,
		       p.pref_min_age, p.pref_max_age, p.pref_max_distance_km,
		       p.is_onboarding_complete, p.created_at, p.updated_at
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE u.is_active = true
		  AND p.is_onboarding_complete = true
		  AND p.user_id <> $1
		ORDER BY p.updated_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, excludeUserID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.DisplayName, &p.Bio, &p.City,
			pq.Array(&p.Interests), &p.CoreValues,
			&p.PersonalityTraits, &p.CommunicationStyle, &p.EmotionalDepth, &p.PhotoRef,
			&p.LocationLat, &p.LocationLon, &p.LocationUpdatedAt,
			&p.PrefMinAge, &p.PrefMaxAge, &p.PrefMaxDistanceKm,
			&p.IsOnboardingComplete, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}
