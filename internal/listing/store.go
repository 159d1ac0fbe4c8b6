package listing

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-cli/internal/db"
	"github.com/sells-group/directory-cli/internal/ranking"
)

// Store loads listings.
type Store interface {
	// ListByLocation returns every listing in a city. City matching is
	// case-insensitive; state is a two-letter code.
	ListByLocation(ctx context.Context, state, city string) ([]Listing, error)
}

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	q db.Querier
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(q db.Querier) *PostgresStore {
	return &PostgresStore{q: q}
}

const listByLocationSQL = `
	SELECT l.id, l.slug, l.title, l.city, l.state, l.tier, l.updated_at,
		(SELECT count(*) FROM listing_photos p WHERE p.listing_id = l.id) AS photo_count,
		COALESCE((SELECT array_agg(r.rating::float8 ORDER BY r.id) FROM listing_reviews r WHERE r.listing_id = l.id), '{}') AS ratings
	FROM listings l
	WHERE l.state = $1 AND lower(l.city) = lower($2)
	ORDER BY l.id`

// ListByLocation returns every listing in a city with photo counts and
// review ratings aggregated in the same query.
func (s *PostgresStore) ListByLocation(ctx context.Context, state, city string) ([]Listing, error) {
	rows, err := s.q.Query(ctx, listByLocationSQL, state, city)
	if err != nil {
		return nil, eris.Wrapf(err, "listing: list %s/%s", state, city)
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var (
			l    Listing
			tier string
		)
		if err := rows.Scan(&l.ID, &l.Slug, &l.Title, &l.City, &l.State, &tier, &l.UpdatedAt, &l.PhotoCount, &l.Ratings); err != nil {
			return nil, eris.Wrap(err, "listing: scan")
		}
		// Unknown tiers are kept as-is and score zero.
		if l.Tier, err = ranking.ParseTier(tier); err != nil {
			l.Tier = ranking.Tier(tier)
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "listing: iterate")
}
