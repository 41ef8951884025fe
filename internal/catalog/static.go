package catalog

import (
	"context"
	"math/rand/v2"

	"queryquest/internal/db"
	"queryquest/internal/game"
)

// Static serves content from an in-memory seed. It backs dev mode and tests.
type Static struct {
	locations []db.LocationSeed
	pick      func(n int) int
}

func NewStatic(locations []db.LocationSeed) *Static {
	return &Static{
		locations: locations,
		pick:      rand.IntN,
	}
}

func (s *Static) NextAnswerAndHints(context.Context) (string, []game.Hint, error) {
	if len(s.locations) == 0 {
		return "", nil, ErrEmptySeed
	}
	loc := s.locations[s.pick(len(s.locations))]
	return loc.Name, Hints(loc.Biome, loc.State, loc.Animals), nil
}
