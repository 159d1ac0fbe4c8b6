package ranking

import (
	"math"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sells-group/directory-cli/internal/config"
)

const day = 24 * time.Hour

// Input is the read-only view of a listing that drives its score.
type Input struct {
	Tier       Tier      `json:"tier"`
	UpdatedAt  time.Time `json:"updated_at"`
	PhotoCount int       `json:"photo_count"`
	Ratings    []float64 `json:"ratings,omitempty"`
}

// Breakdown holds the individual score components and their sum.
type Breakdown struct {
	Tier    float64 `json:"tier" yaml:"tier"`
	Reviews float64 `json:"reviews" yaml:"reviews"`
	Photos  float64 `json:"photos" yaml:"photos"`
	Recency float64 `json:"recency" yaml:"recency"`
	Total   float64 `json:"total" yaml:"total"`
}

// ScoreAt computes the score of in as of now. It is a pure function.
// An unknown tier contributes nothing.
func ScoreAt(in Input, c config.RankingConfig, now time.Time) Breakdown {
	var b Breakdown

	b.Tier = tierWeight(c, in.Tier) * c.TierPoints

	if len(in.Ratings) > 0 {
		var sum float64
		for _, r := range in.Ratings {
			sum += r
		}
		b.Reviews = sum / float64(len(in.Ratings)) * c.ReviewMultiplier
	}

	photos := min(max(in.PhotoCount, 0), c.PhotoCap)
	b.Photos = float64(photos) * c.PhotoPoints

	b.Recency = math.Max(0, float64(c.RecencyWindowDays-daysSince(in.UpdatedAt, now)))

	b.Total = b.Tier + b.Reviews + b.Photos + b.Recency
	return b
}

// daysSince counts whole days elapsed between t and now. Timestamps in the
// future count as zero days.
func daysSince(t, now time.Time) int {
	d := now.Sub(t)
	if d <= 0 {
		return 0
	}
	return int(d / day)
}

// Scorer scores listings against an injected clock.
type Scorer struct {
	cfg   config.RankingConfig
	clock clockwork.Clock
}

// NewScorer creates a Scorer. A nil clock uses wall-clock time.
func NewScorer(cfg config.RankingConfig, clock clockwork.Clock) *Scorer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scorer{cfg: cfg, clock: clock}
}

// Now returns the scorer's current time.
func (s *Scorer) Now() time.Time {
	return s.clock.Now()
}

// Score returns the total score of in as of the scorer's current time.
func (s *Scorer) Score(in Input) float64 {
	return s.Breakdown(in).Total
}

// Breakdown returns the component scores of in as of the scorer's current time.
func (s *Scorer) Breakdown(in Input) Breakdown {
	return ScoreAt(in, s.cfg, s.clock.Now())
}

// Ranked pairs an item with its score.
type Ranked[T any] struct {
	Item  T         `json:"item" yaml:"item"`
	Score Breakdown `json:"score" yaml:"score"`
}

// Rank scores every item against a single instant and returns them ordered
// by total score, highest first. Items with equal scores keep their input
// order.
func Rank[T any](s *Scorer, items []T, input func(T) Input) []Ranked[T] {
	now := s.clock.Now()
	out := make([]Ranked[T], len(items))
	for i, it := range items {
		out[i] = Ranked[T]{Item: it, Score: ScoreAt(input(it), s.cfg, now)}
	}
	slices.SortStableFunc(out, func(a, b Ranked[T]) int {
		switch {
		case a.Score.Total > b.Score.Total:
			return -1
		case a.Score.Total < b.Score.Total:
			return 1
		default:
			return 0
		}
	})
	return out
}
