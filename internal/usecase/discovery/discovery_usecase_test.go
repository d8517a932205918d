package discovery

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
	"github.com/soulbond-app/soulbond-backend/internal/scoring"
)

type fixture struct {
	uc          *DiscoveryUseCase
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	connRepo    repository.ConnectionRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	userRepo := memory.NewUserRepository(store)
	profileRepo := memory.NewProfileRepository(store)
	connRepo := memory.NewConnectionRepository(store)

	cfg := config.DiscoveryConfig{DefaultMaxResults: 20, MaxResults: 100}
	uc := NewDiscoveryUseCase(profileRepo, userRepo, connRepo, scoring.New("v1", nil), nil, cfg, zerolog.Nop())
	return &fixture{uc: uc, userRepo: userRepo, profileRepo: profileRepo, connRepo: connRepo}
}

// addUser creates a user plus onboarded profile and returns the user id.
func (f *fixture) addUser(t *testing.T, email string, age int, interests []string) int {
	t.Helper()
	user := &domain.User{
		Email:       email,
		DateOfBirth: time.Now().AddDate(-age, 0, -1),
		IsActive:    true,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))

	photo := "https://cdn.example.com/" + email + ".jpg"
	p := &domain.Profile{
		UserID:               user.ID,
		DisplayName:          email,
		Interests:            interests,
		CoreValues:           domain.ValueMap{"growth": {"curiosity"}},
		IsOnboardingComplete: true,
		PhotoRef:             &photo,
	}
	require.NoError(t, f.profileRepo.Create(context.Background(), p))
	return user.ID
}

func TestDiscoverRanksByCompatibility(t *testing.T) {
	f := newFixture(t)

	me := f.addUser(t, "me@example.com", 30, []string{"hiking", "jazz", "cooking"})
	twin := f.addUser(t, "twin@example.com", 31, []string{"hiking", "jazz", "cooking"})
	partial := f.addUser(t, "partial@example.com", 29, []string{"hiking", "chess"})
	stranger := f.addUser(t, "stranger@example.com", 32, []string{"opera"})

	results, err := f.uc.Discover(context.Background(), me, Filters{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, twin, results[0].CandidateUserID)
	assert.Equal(t, partial, results[1].CandidateUserID)
	assert.Equal(t, stranger, results[2].CandidateUserID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Compatibility.Total, results[i].Compatibility.Total)
	}
}

func TestDiscoverNeverExposesPhotos(t *testing.T) {
	f := newFixture(t)

	me := f.addUser(t, "me@example.com", 30, []string{"hiking"})
	f.addUser(t, "other@example.com", 30, []string{"hiking"})

	results, err := f.uc.Discover(context.Background(), me, Filters{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.True(t, r.IsPhotoHidden)
	}
}

func TestDiscoverExcludesSelfAndConnected(t *testing.T) {
	f := newFixture(t)

	me := f.addUser(t, "me@example.com", 30, []string{"hiking"})
	connected := f.addUser(t, "connected@example.com", 30, []string{"hiking"})
	free := f.addUser(t, "free@example.com", 30, []string{"hiking"})

	require.NoError(t, f.connRepo.Create(context.Background(), &domain.SoulConnection{
		User1ID: me,
		User2ID: connected,
		Stage:   domain.StageRevelationExchange,
		Status:  domain.StatusActive,
	}))

	results, err := f.uc.Discover(context.Background(), me, Filters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, free, results[0].CandidateUserID)
}

func TestDiscoverEndedConnectionDoesNotExclude(t *testing.T) {
	f := newFixture(t)

	me := f.addUser(t, "me@example.com", 30, []string{"hiking"})
	former := f.addUser(t, "former@example.com", 30, []string{"hiking"})

	conn := &domain.SoulConnection{
		User1ID: me,
		User2ID: former,
		Stage:   domain.StageRevelationExchange,
		Status:  domain.StatusActive,
	}
	require.NoError(t, f.connRepo.Create(context.Background(), conn))
	_, err := f.connRepo.Mutate(context.Background(), conn.ID, func(_ context.Context, c *domain.SoulConnection) error {
		c.End(time.Now())
		return nil
	})
	require.NoError(t, err)

	results, err := f.uc.Discover(context.Background(), me, Filters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, former, results[0].CandidateUserID)
}

func TestDiscoverMinCompatibilityFilter(t *testing.T) {
	f := newFixture(t)

	me := f.addUser(t, "me@example.com", 30, []string{"hiking", "jazz"})
	f.addUser(t, "twin@example.com", 30, []string{"hiking", "jazz"})
	f.addUser(t, "stranger@example.com", 30, []string{"opera"})

	results, err := f.uc.Discover(context.Background(), me, Filters{MinCompatibility: 90})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.GreaterOrEqual(t, results[0].Compatibility.Total, 90.0)
}

func TestDiscoverAgeFilters(t *testing.T) {
	f := newFixture(t)

	me := f.addUser(t, "me@example.com", 30, []string{"hiking"})
	f.addUser(t, "young@example.com", 21, []string{"hiking"})
	old := f.addUser(t, "old@example.com", 45, []string{"hiking"})

	minAge := 40
	results, err := f.uc.Discover(context.Background(), me, Filters{MinAge: &minAge})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, old, results[0].CandidateUserID)

	minAge, maxAge := 50, 20
	_, err = f.uc.Discover(context.Background(), me, Filters{MinAge: &minAge, MaxAge: &maxAge})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDiscoverMaxResults(t *testing.T) {
	f := newFixture(t)

	me := f.addUser(t, "me@example.com", 30, []string{"hiking"})
	f.addUser(t, "a@example.com", 30, []string{"hiking"})
	f.addUser(t, "b@example.com", 30, []string{"hiking"})
	f.addUser(t, "c@example.com", 30, []string{"hiking"})

	results, err := f.uc.Discover(context.Background(), me, Filters{MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestDiscoverRequiresProfile(t *testing.T) {
	f := newFixture(t)

	user := &domain.User{Email: "noprofile@example.com", DateOfBirth: time.Now().AddDate(-25, 0, 0), IsActive: true}
	require.NoError(t, f.userRepo.Create(context.Background(), user))

	_, err := f.uc.Discover(context.Background(), user.ID, Filters{})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestHaversine(t *testing.T) {
	// Paris to London is roughly 344 km.
	d := haversineKm(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344, d, 10)

	assert.InDelta(t, 0, haversineKm(48.8566, 2.3522, 48.8566, 2.3522), 0.001)
}
