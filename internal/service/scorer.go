package service

import (
	"math/rand/v2"

	"github.com/openmatchhq/open-match/server/internal/models"
)

// Scorer assigns a relevance score to one match hit. Implementations can be
// swapped without touching the matcher's response shape.
type Scorer interface {
	Score(issue models.Issue) float64
}

// placeholderScorer returns a value in [60, 90). It stands in until a real
// relevance function (cosine-distance-derived, label-overlap-weighted)
// replaces it.
type placeholderScorer struct{}

// NewPlaceholderScorer returns the current stand-in scorer.
func NewPlaceholderScorer() Scorer {
	return placeholderScorer{}
}

func (placeholderScorer) Score(models.Issue) float64 {
	return 60 + rand.Float64()*30
}
