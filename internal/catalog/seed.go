package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"queryquest/internal/db"
	"queryquest/internal/game"
)

//go:embed locations.json
var defaultSeed []byte

const (
	HintBiome  = "biome"
	HintState  = "state name"
	HintAnimal = "one animal's name"
)

var ErrEmptySeed = errors.New("seed has no locations")

// DefaultSeed returns the built-in location list.
func DefaultSeed() ([]db.LocationSeed, error) {
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(defaultSeed)); err != nil {
		return nil, fmt.Errorf("reading default seed: %w", err)
	}
	return decodeSeed(v)
}

// LoadSeed reads a seed file. Any format viper understands by extension is
// accepted; the document must have a top-level "locations" list.
func LoadSeed(path string) ([]db.LocationSeed, error) {
	if path == "" {
		return DefaultSeed()
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading seed %s: %w", path, err)
	}
	return decodeSeed(v)
}

func decodeSeed(v *viper.Viper) ([]db.LocationSeed, error) {
	var seeds []db.LocationSeed
	if err := v.UnmarshalKey("locations", &seeds); err != nil {
		return nil, fmt.Errorf("decoding locations: %w", err)
	}
	if len(seeds) == 0 {
		return nil, ErrEmptySeed
	}
	for i, seed := range seeds {
		if strings.TrimSpace(seed.Name) == "" || strings.TrimSpace(seed.Biome) == "" || strings.TrimSpace(seed.State) == "" {
			return nil, fmt.Errorf("location %d: name, biome and state are required", i)
		}
	}
	return seeds, nil
}

// Hints lists the clues for one location: its biome, its state and one per animal.
func Hints(biome, state string, animals []string) []game.Hint {
	hints := make([]game.Hint, 0, 2+len(animals))
	hints = append(hints,
		game.Hint{Name: HintBiome, Value: biome},
		game.Hint{Name: HintState, Value: state},
	)
	for _, animal := range animals {
		hints = append(hints, game.Hint{Name: HintAnimal, Value: animal})
	}
	return hints
}
