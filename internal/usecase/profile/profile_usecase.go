package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
)

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	connRepo    repository.ConnectionRepository
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	connRepo repository.ConnectionRepository,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		connRepo:    connRepo,
	}
}

// CreateProfileRequest represents the onboarding payload.
type CreateProfileRequest struct {
	DisplayName        string              `json:"display_name" binding:"required,min=2,max=100"`
	Bio                *string             `json:"bio" binding:"omitempty,max=500"`
	City               *string             `json:"city" binding:"omitempty,max=100"`
	Interests          []string            `json:"interests" binding:"omitempty,max=15"`
	CoreValues         map[string][]string `json:"core_values" binding:"omitempty"`
	PersonalityTraits  map[string]float64  `json:"personality_traits" binding:"omitempty"`
	CommunicationStyle *string             `json:"communication_style" binding:"omitempty,communication_style"`
	EmotionalDepth     *float64            `json:"emotional_depth" binding:"omitempty,min=0,max=10"`
	PrefMinAge         *int                `json:"pref_min_age" binding:"omitempty,min=18,max=100"`
	PrefMaxAge         *int                `json:"pref_max_age" binding:"omitempty,min=18,max=100"`
	PrefMaxDistanceKm  *int                `json:"pref_max_distance_km" binding:"omitempty,min=1,max=1000"`
}

// UpdateProfileRequest carries partial updates; nil fields are untouched.
type UpdateProfileRequest struct {
	DisplayName        *string              `json:"display_name" binding:"omitempty,min=2,max=100"`
	Bio                *string              `json:"bio" binding:"omitempty,max=500"`
	City               *string              `json:"city" binding:"omitempty,max=100"`
	Interests          *[]string            `json:"interests" binding:"omitempty,max=15"`
	CoreValues         *map[string][]string `json:"core_values" binding:"omitempty"`
	PersonalityTraits  *map[string]float64  `json:"personality_traits" binding:"omitempty"`
	CommunicationStyle *string              `json:"communication_style" binding:"omitempty,communication_style"`
	EmotionalDepth     *float64             `json:"emotional_depth" binding:"omitempty,min=0,max=10"`
	PhotoRef           *string              `json:"photo_ref" binding:"omitempty,url"`
	LocationLat        *float64             `json:"location_lat" binding:"omitempty,min=-90,max=90"`
	LocationLon        *float64             `json:"location_lon" binding:"omitempty,min=-180,max=180"`
	PrefMinAge         *int                 `json:"pref_min_age" binding:"omitempty,min=18,max=100"`
	PrefMaxAge         *int                 `json:"pref_max_age" binding:"omitempty,min=18,max=100"`
	PrefMaxDistanceKm  *int                 `json:"pref_max_distance_km" binding:"omitempty,min=1,max=1000"`
}

// ProfileResponse is another user's profile as the viewer may see it.
// The photo reference is withheld until a shared connection has reached
// the photo-reveal stage.
type ProfileResponse struct {
	*domain.Profile
	Age           int  `json:"age,omitempty"`
	IsPhotoHidden bool `json:"is_photo_hidden"`
}

// GetMyProfile returns the caller's own profile, photo included.
func (uc *ProfileUseCase) GetMyProfile(ctx context.Context, userID int) (*domain.Profile, error) {
	return uc.profileRepo.GetByUserID(ctx, userID)
}

// GetProfileByUserID returns a profile as seen by viewerID. The photo
// reference is cleared unless an active connection between the two has
// reached photo_revealed — this guard lives here, not in the handler.
func (uc *ProfileUseCase) GetProfileByUserID(ctx context.Context, targetUserID, viewerID int) (*ProfileResponse, error) {
	p, err := uc.profileRepo.GetByUserID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	photoHidden := true
	if viewerID == targetUserID {
		photoHidden = false
	} else {
		conn, err := uc.connRepo.GetActiveByUsers(ctx, viewerID, targetUserID)
		if err == nil && conn.Stage.AtLeast(domain.StagePhotoRevealed) {
			photoHidden = false
		} else if err != nil && !errors.Is(err, domain.ErrConnectionNotFound) {
			return nil, err
		}
	}
	if photoHidden {
		p.PhotoRef = nil
	}

	return &ProfileResponse{
		Profile:       p,
		Age:           user.Age(),
		IsPhotoHidden: photoHidden,
	}, nil
}

// CreateProfile creates the profile during onboarding.
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, userID int, req *CreateProfileRequest) (*domain.Profile, error) {
	existing, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err == nil && existing != nil {
		return nil, domain.ErrProfileAlreadyExists
	}

	p := &domain.Profile{
		UserID:               userID,
		DisplayName:          req.DisplayName,
		Bio:                  req.Bio,
		City:                 req.City,
		Interests:            req.Interests,
		CoreValues:           req.CoreValues,
		PersonalityTraits:    req.PersonalityTraits,
		CommunicationStyle:   req.CommunicationStyle,
		EmotionalDepth:       req.EmotionalDepth,
		PrefMinAge:           req.PrefMinAge,
		PrefMaxAge:           req.PrefMaxAge,
		PrefMaxDistanceKm:    req.PrefMaxDistanceKm,
		IsOnboardingComplete: true,
	}

	if err := uc.profileRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of req.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID int, req *UpdateProfileRequest) (*domain.Profile, error) {
	p, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		p.Bio = req.Bio
	}
	if req.City != nil {
		p.City = req.City
	}
	if req.Interests != nil {
		p.Interests = *req.Interests
	}
	if req.CoreValues != nil {
		p.CoreValues = *req.CoreValues
	}
	if req.PersonalityTraits != nil {
		p.PersonalityTraits = *req.PersonalityTraits
	}
	if req.CommunicationStyle != nil {
		p.CommunicationStyle = req.CommunicationStyle
	}
	if req.EmotionalDepth != nil {
		p.EmotionalDepth = req.EmotionalDepth
	}
	if req.PhotoRef != nil {
		p.PhotoRef = req.PhotoRef
	}
	if req.LocationLat != nil || req.LocationLon != nil {
		if req.LocationLat != nil {
			p.LocationLat = req.LocationLat
		}
		if req.LocationLon != nil {
			p.LocationLon = req.LocationLon
		}
		now := time.Now().UTC()
		p.LocationUpdatedAt = &now
	}
	if req.PrefMinAge != nil {
		p.PrefMinAge = req.PrefMinAge
	}
	if req.PrefMaxAge != nil {
		p.PrefMaxAge = req.PrefMaxAge
	}
	if req.PrefMaxDistanceKm != nil {
		p.PrefMaxDistanceKm = req.PrefMaxDistanceKm
	}

	if err := uc.profileRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}
