package scoring

import (
	"math"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
)

// Dimension names used in weights and breakdowns.
const (
	DimSharedInterests = "shared_interests"
	DimSharedValues    = "shared_values"
	DimPersonality     = "personality_complementarity"
	DimCommunication   = "communication_style"
	DimEmotionalDepth  = "emotional_depth"
)

// Weights maps a dimension to its share of the total. Each dimension is
// normalized to [0,100] before weighting, so the weights are comparable
// and only their ratios matter.
type Weights map[string]float64

// DefaultWeights is the v1 dimension weighting.
func DefaultWeights() Weights {
	return Weights{
		DimSharedInterests: 0.25,
		DimSharedValues:    0.30,
		DimPersonality:     0.20,
		DimCommunication:   0.10,
		DimEmotionalDepth:  0.15,
	}
}

// Result is a compatibility prediction for a pair of profiles.
type Result struct {
	Total      float64         `json:"total"`
	Breakdown  domain.ScoreMap `json:"breakdown"`
	Confidence float64         `json:"confidence"`
	Version    string          `json:"algorithm_version"`
}

// Scorer computes compatibility scores. It is pure and safe for
// concurrent use; swapping weights means constructing a new Scorer
// under a new version string.
type Scorer struct {
	version string
	weights Weights
}

func New(version string, weights Weights) *Scorer {
	if len(weights) == 0 {
		weights = DefaultWeights()
	}
	return &Scorer{version: version, weights: weights}
}

func (s *Scorer) Version() string {
	return s.version
}

// Score computes the weighted compatibility of two profiles. Dimensions
// whose inputs are absent on either side are dropped and the remaining
// weights renormalized; empty interest or value sets score 0 rather
// than being dropped. Score(a, b) == Score(b, a).
func (s *Scorer) Score(a, b *domain.Profile) Result {
	breakdown := domain.ScoreMap{}
	present := 0
	total := len(s.weights)

	if v, ok := s.sharedInterests(a, b); ok {
		breakdown[DimSharedInterests] = v
		present++
	}
	if v, ok := s.sharedValues(a, b); ok {
		breakdown[DimSharedValues] = v
		present++
	}
	if v, ok := s.personality(a, b); ok {
		breakdown[DimPersonality] = v
		present++
	}
	if v, ok := s.communication(a, b); ok {
		breakdown[DimCommunication] = v
		present++
	}
	if v, ok := s.emotionalDepth(a, b); ok {
		breakdown[DimEmotionalDepth] = v
		present++
	}

	var weightSum, sum float64
	for dim, score := range breakdown {
		w := s.weights[dim]
		weightSum += w
		sum += w * score
	}

	var totalScore float64
	if weightSum > 0 {
		totalScore = clamp(sum/weightSum, 0, 100)
	}

	confidence := 0.0
	if total > 0 {
		confidence = float64(present) / float64(total)
	}

	return Result{
		Total:      totalScore,
		Breakdown:  breakdown,
		Confidence: confidence,
		Version:    s.version,
	}
}

// sharedInterests is Jaccard overlap of interest sets, scaled to 100.
// An empty set on either side scores 0; the dimension is never dropped.
func (s *Scorer) sharedInterests(a, b *domain.Profile) (float64, bool) {
	if _, ok := s.weights[DimSharedInterests]; !ok {
		return 0, false
	}
	return jaccard(a.Interests, b.Interests) * 100, true
}

// sharedValues is Jaccard overlap of category-qualified value tags.
func (s *Scorer) sharedValues(a, b *domain.Profile) (float64, bool) {
	if _, ok := s.weights[DimSharedValues]; !ok {
		return 0, false
	}
	return jaccard(a.CoreValues.Flatten(), b.CoreValues.Flatten()) * 100, true
}

// personality scores trait proximity over the traits both profiles
// report, on the 0-1 trait scale. Dropped when either side has none.
func (s *Scorer) personality(a, b *domain.Profile) (float64, bool) {
	if _, ok := s.weights[DimPersonality]; !ok {
		return 0, false
	}
	if len(a.PersonalityTraits) == 0 || len(b.PersonalityTraits) == 0 {
		return 0, false
	}
	var dist float64
	common := 0
	for trait, av := range a.PersonalityTraits {
		bv, ok := b.PersonalityTraits[trait]
		if !ok {
			continue
		}
		dist += math.Abs(av - bv)
		common++
	}
	if common == 0 {
		return 0, false
	}
	return clamp((1-dist/float64(common))*100, 0, 100), true
}

// CommunicationStyles is the vocabulary profiles may declare.
var CommunicationStyles = []string{
	"direct", "thoughtful", "expressive", "listener", "analytical", "intuitive",
}

// complementaryStyles pairs that work well together despite differing.
var complementaryStyles = map[[2]string]bool{
	{"direct", "thoughtful"}:    true,
	{"expressive", "listener"}:  true,
	{"analytical", "intuitive"}: true,
}

// communication scores style match: identical styles score 100,
// complementary pairs 70, everything else 40. Dropped when either side
// has not set a style.
func (s *Scorer) communication(a, b *domain.Profile) (float64, bool) {
	if _, ok := s.weights[DimCommunication]; !ok {
		return 0, false
	}
	if a.CommunicationStyle == nil || b.CommunicationStyle == nil {
		return 0, false
	}
	sa, sb := *a.CommunicationStyle, *b.CommunicationStyle
	if sa == sb {
		return 100, true
	}
	if complementaryStyles[[2]string{sa, sb}] || complementaryStyles[[2]string{sb, sa}] {
		return 70, true
	}
	return 40, true
}

// emotionalDepth is inverse distance on the 0-10 depth scale. Dropped
// when either side is missing the score.
func (s *Scorer) emotionalDepth(a, b *domain.Profile) (float64, bool) {
	if _, ok := s.weights[DimEmotionalDepth]; !ok {
		return 0, false
	}
	if a.EmotionalDepth == nil || b.EmotionalDepth == nil {
		return 0, false
	}
	return clamp((1-math.Abs(*a.EmotionalDepth-*b.EmotionalDepth)/10)*100, 0, 100), true
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	seen := make(map[string]struct{}, len(b))
	common := 0
	for _, v := range b {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := set[v]; ok {
			common++
		}
	}
	union := len(set) + len(seen) - common
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
