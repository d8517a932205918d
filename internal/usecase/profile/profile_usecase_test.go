package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
	"github.com/soulbond-app/soulbond-backend/internal/repository/memory"
)

type fixture struct {
	uc       *ProfileUseCase
	userRepo repository.UserRepository
	connRepo repository.ConnectionRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		userRepo: memory.NewUserRepository(store),
		connRepo: memory.NewConnectionRepository(store),
	}
	f.uc = NewProfileUseCase(memory.NewProfileRepository(store), f.userRepo, f.connRepo)
	return f
}

func (f *fixture) addUser(t *testing.T, email string) int {
	t.Helper()
	user := &domain.User{
		Email:       email,
		DateOfBirth: time.Now().AddDate(-32, 0, -1),
		IsActive:    true,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user.ID
}

func TestCreateProfileOnce(t *testing.T) {
	f := newFixture(t)
	userID := f.addUser(t, "a@example.com")

	p, err := f.uc.CreateProfile(context.Background(), userID, &CreateProfileRequest{DisplayName: "Ada"})
	require.NoError(t, err)
	assert.True(t, p.IsOnboardingComplete)

	_, err = f.uc.CreateProfile(context.Background(), userID, &CreateProfileRequest{DisplayName: "Ada"})
	assert.ErrorIs(t, err, domain.ErrProfileAlreadyExists)
}

func TestUpdateProfilePartial(t *testing.T) {
	f := newFixture(t)
	userID := f.addUser(t, "a@example.com")

	bio := "likes rain"
	_, err := f.uc.CreateProfile(context.Background(), userID, &CreateProfileRequest{DisplayName: "Ada", Bio: &bio})
	require.NoError(t, err)

	newName := "Ada L."
	lat, lon := 52.52, 13.405
	updated, err := f.uc.UpdateProfile(context.Background(), userID, &UpdateProfileRequest{
		DisplayName: &newName,
		LocationLat: &lat,
		LocationLon: &lon,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.DisplayName)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "likes rain", *updated.Bio)
	assert.NotNil(t, updated.LocationUpdatedAt)
}

func TestGetProfileHidesPhotoFromStrangers(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner@example.com")
	viewer := f.addUser(t, "viewer@example.com")

	photo := "https://cdn.example.com/owner.jpg"
	_, err := f.uc.CreateProfile(context.Background(), owner, &CreateProfileRequest{DisplayName: "O"})
	require.NoError(t, err)
	_, err = f.uc.UpdateProfile(context.Background(), owner, &UpdateProfileRequest{PhotoRef: &photo})
	require.NoError(t, err)

	resp, err := f.uc.GetProfileByUserID(context.Background(), owner, viewer)
	require.NoError(t, err)
	assert.True(t, resp.IsPhotoHidden)
	assert.Nil(t, resp.PhotoRef)
	assert.Equal(t, 32, resp.Age)

	// The owner always sees their own photo.
	resp, err = f.uc.GetProfileByUserID(context.Background(), owner, owner)
	require.NoError(t, err)
	assert.False(t, resp.IsPhotoHidden)
	require.NotNil(t, resp.PhotoRef)
}

func TestGetProfileRevealsPhotoAfterMutualConsent(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner@example.com")
	viewer := f.addUser(t, "viewer@example.com")

	photo := "https://cdn.example.com/owner.jpg"
	_, err := f.uc.CreateProfile(context.Background(), owner, &CreateProfileRequest{DisplayName: "O"})
	require.NoError(t, err)
	_, err = f.uc.UpdateProfile(context.Background(), owner, &UpdateProfileRequest{PhotoRef: &photo})
	require.NoError(t, err)

	conn := &domain.SoulConnection{
		User1ID:   owner,
		User2ID:   viewer,
		Stage:     domain.StageRevelationExchange,
		Status:    domain.StatusActive,
		RevealDay: 5,
	}
	require.NoError(t, f.connRepo.Create(context.Background(), conn))

	// Mid-exchange the photo is still hidden.
	resp, err := f.uc.GetProfileByUserID(context.Background(), owner, viewer)
	require.NoError(t, err)
	assert.True(t, resp.IsPhotoHidden)

	_, err = f.connRepo.Mutate(context.Background(), conn.ID, func(_ context.Context, c *domain.SoulConnection) error {
		c.Stage = domain.StageMutualConsentPending
		if err := c.SetConsent(owner, true); err != nil {
			return err
		}
		return c.SetConsent(viewer, true)
	})
	require.NoError(t, err)

	resp, err = f.uc.GetProfileByUserID(context.Background(), owner, viewer)
	require.NoError(t, err)
	assert.False(t, resp.IsPhotoHidden)
	require.NotNil(t, resp.PhotoRef)
	assert.Equal(t, photo, *resp.PhotoRef)
}

func TestGetProfileNotFound(t *testing.T) {
	f := newFixture(t)
	viewer := f.addUser(t, "viewer@example.com")

	_, err := f.uc.GetProfileByUserID(context.Background(), 12345, viewer)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
