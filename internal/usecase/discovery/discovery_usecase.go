package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/soulbond-app/soulbond-backend/internal/config"
	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
	"github.com/soulbond-app/soulbond-backend/internal/scoring"
)

// poolLimit bounds how many eligible profiles one scan considers.
const poolLimit = 500

// scoreConcurrency bounds the scoring fan-out per request.
const scoreConcurrency = 8

type DiscoveryUseCase struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	connRepo    repository.ConnectionRepository
	scorer      *scoring.Scorer
	cache       *redis.Client
	cfg         config.DiscoveryConfig
	log         zerolog.Logger
}

func NewDiscoveryUseCase(
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	connRepo repository.ConnectionRepository,
	scorer *scoring.Scorer,
	cache *redis.Client,
	cfg config.DiscoveryConfig,
	log zerolog.Logger,
) *DiscoveryUseCase {
	return &DiscoveryUseCase{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		connRepo:    connRepo,
		scorer:      scorer,
		cache:       cache,
		cfg:         cfg,
		log:         log,
	}
}

type Filters struct {
	MinCompatibility float64  `form:"min_compatibility" binding:"omitempty,min=0,max=100"`
	MinAge           *int     `form:"min_age" binding:"omitempty,min=18,max=100"`
	MaxAge           *int     `form:"max_age" binding:"omitempty,min=18,max=100"`
	MaxDistanceKm    *float64 `form:"max_distance_km" binding:"omitempty,min=1"`
	MaxResults       int      `form:"max_results" binding:"omitempty,min=1"`
}

// Result is a candidate preview. Identity-revealing photo fields are
// never present here: the photo stays hidden until the corresponding
// connection reaches its reveal stage.
type Result struct {
	CandidateUserID int             `json:"candidate_user_id"`
	DisplayName     string          `json:"display_name"`
	Bio             *string         `json:"bio"`
	City            *string         `json:"city"`
	Age             int             `json:"age"`
	Interests       []string        `json:"interests"`
	DistanceKm      *float64        `json:"distance_km,omitempty"`
	Compatibility   scoring.Result  `json:"compatibility"`
	IsPhotoHidden   bool            `json:"is_photo_hidden"`
}

// Discover scores the eligible pool against the requester and returns
// the ranked candidate previews. Each call re-queries the current pool;
// a short-lived cache absorbs repeat calls and staleness is acceptable
// (a just-connected candidate is dropped by the exclusion filter on the
// next scan).
func (uc *DiscoveryUseCase) Discover(ctx context.Context, userID int, filters Filters) ([]Result, error) {
	if err := uc.normalize(&filters); err != nil {
		return nil, err
	}

	if cached, ok := uc.fromCache(ctx, userID, filters); ok {
		return cached, nil
	}

	me, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get requester profile: %w", err)
	}

	connected, err := uc.connectedUserIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	pool, err := uc.profileRepo.ListEligible(ctx, userID, poolLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible profiles: %w", err)
	}

	// Score candidates independently; ordering comes from the sort
	// below, not from completion order.
	results := make([]*Result, len(pool))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)
	var mu sync.Mutex
	for i, candidate := range pool {
		i, candidate := i, candidate
		g.Go(func() error {
			r, err := uc.evaluate(gctx, me, candidate, filters, connected)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = r
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Result
	order := make(map[int]int, len(pool)) // candidate -> pool index, recency tie-break
	for i, r := range results {
		if r == nil || r.Compatibility.Total < filters.MinCompatibility {
			continue
		}
		order[r.CandidateUserID] = i
		out = append(out, *r)
	}

	// Pool order is recency; reuse it as the stable secondary key so
	// identical inputs always rank identically.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Compatibility.Total != out[j].Compatibility.Total {
			return out[i].Compatibility.Total > out[j].Compatibility.Total
		}
		return order[out[i].CandidateUserID] < order[out[j].CandidateUserID]
	})

	if len(out) > filters.MaxResults {
		out = out[:filters.MaxResults]
	}

	uc.toCache(ctx, userID, filters, out)
	return out, nil
}

func (uc *DiscoveryUseCase) normalize(filters *Filters) error {
	if filters.MaxResults <= 0 {
		filters.MaxResults = uc.cfg.DefaultMaxResults
	}
	if filters.MaxResults > uc.cfg.MaxResults {
		filters.MaxResults = uc.cfg.MaxResults
	}
	if filters.MinCompatibility < 0 || filters.MinCompatibility > 100 {
		return fmt.Errorf("%w: min_compatibility must be within [0,100]", domain.ErrInvalidInput)
	}
	if filters.MinAge != nil && filters.MaxAge != nil && *filters.MinAge > *filters.MaxAge {
		return fmt.Errorf("%w: min_age exceeds max_age", domain.ErrInvalidInput)
	}
	return nil
}

// evaluate returns nil, nil when the candidate is filtered out.
func (uc *DiscoveryUseCase) evaluate(ctx context.Context, me, candidate *domain.Profile, filters Filters, connected map[int]bool) (*Result, error) {
	if connected[candidate.UserID] {
		return nil, nil
	}

	user, err := uc.userRepo.GetByID(ctx, candidate.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	age := user.Age()
	if filters.MinAge != nil && age < *filters.MinAge {
		return nil, nil
	}
	if filters.MaxAge != nil && age > *filters.MaxAge {
		return nil, nil
	}
	if me.PrefMinAge != nil && age < *me.PrefMinAge {
		return nil, nil
	}
	if me.PrefMaxAge != nil && age > *me.PrefMaxAge {
		return nil, nil
	}

	var distanceKm *float64
	if me.LocationLat != nil && me.LocationLon != nil &&
		candidate.LocationLat != nil && candidate.LocationLon != nil {
		d := haversineKm(*me.LocationLat, *me.LocationLon, *candidate.LocationLat, *candidate.LocationLon)
		maxDist := filters.MaxDistanceKm
		if maxDist == nil && me.PrefMaxDistanceKm != nil {
			f := float64(*me.PrefMaxDistanceKm)
			maxDist = &f
		}
		if maxDist != nil && d > *maxDist {
			return nil, nil
		}
		distanceKm = &d
	}

	score := uc.scorer.Score(me, candidate)

	return &Result{
		CandidateUserID: candidate.UserID,
		DisplayName:     candidate.DisplayName,
		Bio:             candidate.Bio,
		City:            candidate.City,
		Age:             age,
		Interests:       candidate.Interests,
		DistanceKm:      distanceKm,
		Compatibility:   score,
		IsPhotoHidden:   true,
	}, nil
}

func (uc *DiscoveryUseCase) connectedUserIDs(ctx context.Context, userID int) (map[int]bool, error) {
	conns, err := uc.connRepo.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[int]bool, len(conns))
	for _, c := range conns {
		if other, ok := c.OtherUserID(userID); ok {
			out[other] = true
		}
	}
	return out, nil
}

func (uc *DiscoveryUseCase) cacheKey(userID int, filters Filters) string {
	return fmt.Sprintf("discovery:%d:%v:%v:%v:%v:%d",
		userID, filters.MinCompatibility, ptrStr(filters.MinAge), ptrStr(filters.MaxAge),
		ptrFloatStr(filters.MaxDistanceKm), filters.MaxResults)
}

func (uc *DiscoveryUseCase) fromCache(ctx context.Context, userID int, filters Filters) ([]Result, bool) {
	if uc.cache == nil || uc.cfg.CacheTTL <= 0 {
		return nil, false
	}
	raw, err := uc.cache.Get(ctx, uc.cacheKey(userID, filters)).Bytes()
	if err != nil {
		return nil, false
	}
	var out []Result
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (uc *DiscoveryUseCase) toCache(ctx context.Context, userID int, filters Filters, results []Result) {
	if uc.cache == nil || uc.cfg.CacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, uc.cacheKey(userID, filters), raw, uc.cfg.CacheTTL).Err(); err != nil {
		uc.log.Debug().Err(err).Msg("discovery cache write failed")
	}
}

func ptrStr(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func ptrFloatStr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

// haversineKm is the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371.0
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)
	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
