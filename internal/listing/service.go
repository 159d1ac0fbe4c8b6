package listing

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/ranking"
	"github.com/sells-group/directory-cli/internal/seo"
)

// Page size bounds for RankLocation.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Service ranks listings for location pages.
type Service struct {
	store  Store
	scorer *ranking.Scorer
	cache  Cache
	ttl    time.Duration
}

// NewService creates a Service. cache may be nil to disable caching.
func NewService(store Store, scorer *ranking.Scorer, cache Cache, ttl time.Duration) *Service {
	return &Service{store: store, scorer: scorer, cache: cache, ttl: ttl}
}

// RankLocation returns the top listings for a location, best first. A
// non-positive limit uses DefaultPageSize. Listings may come from the cache
// but are always scored against the current time. Cache faults are logged
// and the listings are read from the store.
func (s *Service) RankLocation(ctx context.Context, loc seo.Location, limit int) ([]Ranked, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)

	listings, err := s.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	ranked := ranking.Rank(s.scorer, listings, Listing.ScoreInput)
	page := make([]Ranked, len(ranked))
	for i, r := range ranked {
		page[i] = Ranked{Position: i + 1, Listing: r.Item, Score: r.Score}
	}

	zap.L().Debug("listing: ranked location",
		zap.String("state", loc.State),
		zap.String("city", loc.City),
		zap.Int("listings", len(page)),
	)
	return truncate(page, limit), nil
}

// load returns the location's listings from the cache, falling back to the
// store and populating the cache on a miss.
func (s *Service) load(ctx context.Context, loc seo.Location) ([]Listing, error) {
	key := CacheKey(loc)
	if s.cache != nil {
		listings, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			zap.L().Warn("listing: cache unavailable", zap.String("key", key), zap.Error(err))
		case ok:
			return listings, nil
		}
	}

	listings, err := s.store.ListByLocation(ctx, loc.State, loc.City)
	if err != nil {
		return nil, eris.Wrap(err, "listing: rank location")
	}

	if s.cache != nil && s.ttl > 0 && len(listings) > 0 {
		if err := s.cache.Set(ctx, key, listings, s.ttl); err != nil {
			zap.L().Warn("listing: cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return listings, nil
}

func truncate(page []Ranked, limit int) []Ranked {
	if len(page) > limit {
		return page[:limit]
	}
	return page
}
