// Package listing loads vacation-rental listings and ranks them for
// location pages.
package listing

import (
	"time"

	"github.com/sells-group/directory-cli/internal/ranking"
)

// Listing is a rental listing with the aggregates the scorer needs.
type Listing struct {
	ID         int64        `json:"id" yaml:"id"`
	Slug       string       `json:"slug" yaml:"slug"`
	Title      string       `json:"title" yaml:"title"`
	City       string       `json:"city" yaml:"city"`
	State      string       `json:"state" yaml:"state"`
	Tier       ranking.Tier `json:"tier" yaml:"tier"`
	UpdatedAt  time.Time    `json:"updated_at" yaml:"updated_at"`
	PhotoCount int          `json:"photo_count" yaml:"photo_count"`
	Ratings    []float64    `json:"ratings,omitempty" yaml:"ratings,omitempty"`
}

// ScoreInput returns the scorer's view of the listing.
func (l Listing) ScoreInput() ranking.Input {
	return ranking.Input{
		Tier:       l.Tier,
		UpdatedAt:  l.UpdatedAt,
		PhotoCount: l.PhotoCount,
		Ratings:    l.Ratings,
	}
}

// Ranked is a listing with its position and score breakdown on a page.
type Ranked struct {
	Position int               `json:"position" yaml:"position"`
	Listing  Listing           `json:"listing" yaml:"listing"`
	Score    ranking.Breakdown `json:"score" yaml:"score"`
}
