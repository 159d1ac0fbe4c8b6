package ranking

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func TestScoreAt_WorkedExample(t *testing.T) {
	in := Input{
		Tier:       TierGold,
		UpdatedAt:  fixedNow,
		PhotoCount: 3,
		Ratings:    []float64{4, 5},
	}

	b := ScoreAt(in, DefaultConfig(), fixedNow)
	assert.Equal(t, 300.0, b.Tier)
	assert.Equal(t, 90.0, b.Reviews)
	assert.Equal(t, 15.0, b.Photos)
	assert.Equal(t, 30.0, b.Recency)
	assert.Equal(t, 435.0, b.Total)
}

func TestScoreAt_TierMonotonic(t *testing.T) {
	base := Input{UpdatedAt: fixedNow.Add(-5 * day), PhotoCount: 4, Ratings: []float64{3}}
	cfg := DefaultConfig()

	var prev float64
	for i, tier := range Tiers {
		in := base
		in.Tier = tier
		got := ScoreAt(in, cfg, fixedNow).Total
		if i > 0 {
			assert.Greater(t, got, prev, "%s should outrank the tier below it", tier)
		}
		prev = got
	}
}

func TestScoreAt_ReviewBounds(t *testing.T) {
	cfg := DefaultConfig()

	none := ScoreAt(Input{Tier: TierBronze, UpdatedAt: fixedNow}, cfg, fixedNow)
	assert.Equal(t, 0.0, none.Reviews)

	allOnes := ScoreAt(Input{Tier: TierBronze, Ratings: []float64{1, 1, 1}}, cfg, fixedNow)
	assert.Equal(t, 20.0, allOnes.Reviews)

	allFives := ScoreAt(Input{Tier: TierBronze, Ratings: []float64{5, 5}}, cfg, fixedNow)
	assert.Equal(t, 100.0, allFives.Reviews)

	mixed := ScoreAt(Input{Tier: TierBronze, Ratings: []float64{1, 2, 3, 4, 5}}, cfg, fixedNow)
	assert.GreaterOrEqual(t, mixed.Reviews, 20.0)
	assert.LessOrEqual(t, mixed.Reviews, 100.0)
	assert.Equal(t, 60.0, mixed.Reviews)
}

func TestScoreAt_PhotoCap(t *testing.T) {
	cfg := DefaultConfig()
	in := Input{Tier: TierSilver, UpdatedAt: fixedNow}

	in.PhotoCount = 8
	eight := ScoreAt(in, cfg, fixedNow)
	in.PhotoCount = 20
	twenty := ScoreAt(in, cfg, fixedNow)

	assert.Equal(t, eight.Total, twenty.Total)
	assert.Equal(t, 40.0, twenty.Photos)

	in.PhotoCount = 0
	assert.Equal(t, 0.0, ScoreAt(in, cfg, fixedNow).Photos)
	in.PhotoCount = -2
	assert.Equal(t, 0.0, ScoreAt(in, cfg, fixedNow).Photos)
}

func TestScoreAt_RecencyDecay(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name    string
		updated time.Time
		want    float64
	}{
		{"updated now", fixedNow, 30},
		{"updated earlier today", fixedNow.Add(-10 * time.Hour), 30},
		{"one day ago", fixedNow.Add(-day), 29},
		{"ten and a half days ago", fixedNow.Add(-10*day - 12*time.Hour), 20},
		{"exactly thirty days ago", fixedNow.Add(-30 * day), 0},
		{"a year ago", fixedNow.Add(-365 * day), 0},
		{"future timestamp", fixedNow.Add(48 * time.Hour), 30},
		{"zero time", time.Time{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ScoreAt(Input{Tier: TierBronze, UpdatedAt: tt.updated}, cfg, fixedNow)
			assert.Equal(t, tt.want, b.Recency)
		})
	}
}

func TestScoreAt_UnknownTierContributesNothing(t *testing.T) {
	b := ScoreAt(Input{Tier: "DIAMOND", UpdatedAt: fixedNow}, DefaultConfig(), fixedNow)
	assert.Equal(t, 0.0, b.Tier)
	assert.Equal(t, 30.0, b.Total)
}

func TestScorer_UsesInjectedClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(fixedNow)
	s := NewScorer(DefaultConfig(), clock)

	in := Input{Tier: TierBronze, UpdatedAt: fixedNow}
	assert.Equal(t, 130.0, s.Score(in))

	// The same unmodified listing drifts as days pass.
	clock.Advance(3 * day)
	assert.Equal(t, 127.0, s.Score(in))

	clock.Advance(40 * day)
	assert.Equal(t, 100.0, s.Score(in))
	assert.Equal(t, fixedNow.Add(43*day), s.Now())
}

func TestNewScorer_NilClockUsesWallClock(t *testing.T) {
	s := NewScorer(DefaultConfig(), nil)
	assert.WithinDuration(t, time.Now(), s.Now(), time.Minute)
	assert.Equal(t, 130.0, s.Score(Input{Tier: TierBronze, UpdatedAt: time.Now()}))
}

type fakeListing struct {
	name string
	in   Input
}

func TestRank_OrdersByTotalDescending(t *testing.T) {
	s := NewScorer(DefaultConfig(), clockwork.NewFakeClockAt(fixedNow))
	items := []fakeListing{
		{"bronze", Input{Tier: TierBronze, UpdatedAt: fixedNow}},
		{"platinum", Input{Tier: TierPlatinum, UpdatedAt: fixedNow.Add(-60 * day)}},
		{"gold", Input{Tier: TierGold, UpdatedAt: fixedNow, PhotoCount: 8, Ratings: []float64{5}}},
	}

	ranked := Rank(s, items, func(l fakeListing) Input { return l.in })
	require.Len(t, ranked, 3)
	assert.Equal(t, "gold", ranked[0].Item.name)
	assert.Equal(t, 470.0, ranked[0].Score.Total)
	assert.Equal(t, "platinum", ranked[1].Item.name)
	assert.Equal(t, "bronze", ranked[2].Item.name)
}

func TestRank_EqualScoresKeepInputOrder(t *testing.T) {
	s := NewScorer(DefaultConfig(), clockwork.NewFakeClockAt(fixedNow))
	in := Input{Tier: TierSilver, UpdatedAt: fixedNow}
	items := []fakeListing{{"first", in}, {"second", in}, {"third", in}}

	ranked := Rank(s, items, func(l fakeListing) Input { return l.in })
	names := []string{ranked[0].Item.name, ranked[1].Item.name, ranked[2].Item.name}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestRank_Empty(t *testing.T) {
	s := NewScorer(DefaultConfig(), nil)
	assert.Empty(t, Rank(s, []fakeListing(nil), func(l fakeListing) Input { return l.in }))
}
