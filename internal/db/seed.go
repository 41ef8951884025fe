package db

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// LocationSeed is one catalog entry as it appears in a seed file.
type LocationSeed struct {
	Name    string   `json:"name" mapstructure:"name"`
	Biome   string   `json:"biome" mapstructure:"biome"`
	State   string   `json:"state" mapstructure:"state"`
	Animals []string `json:"animals" mapstructure:"animals"`
}

// SeedCatalog upserts locations, their states and animals. Rows that already
// exist are left alone, so the seed can be replayed.
func SeedCatalog(ctx context.Context, conn *gorm.DB, seeds []LocationSeed) (int, error) {
	if conn == nil {
		return 0, nil
	}
	inserted := 0
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seed := range seeds {
			state := State{Name: strings.TrimSpace(seed.State)}
			if err := tx.Where(State{Name: state.Name}).FirstOrCreate(&state).Error; err != nil {
				return fmt.Errorf("upsert state %q: %w", state.Name, err)
			}

			location := Location{
				Name:    strings.TrimSpace(seed.Name),
				Biome:   strings.TrimSpace(seed.Biome),
				StateID: state.ID,
			}
			if err := tx.Where(Location{Name: location.Name, StateID: state.ID}).FirstOrCreate(&location).Error; err != nil {
				return fmt.Errorf("upsert location %q: %w", location.Name, err)
			}

			for _, name := range seed.Animals {
				animal := Animal{Name: strings.TrimSpace(name)}
				if animal.Name == "" {
					continue
				}
				if err := tx.Where(Animal{Name: animal.Name}).FirstOrCreate(&animal).Error; err != nil {
					return fmt.Errorf("upsert animal %q: %w", animal.Name, err)
				}
				link := LocationAnimal{LocationID: location.ID, AnimalID: animal.ID}
				if err := tx.Where(link).FirstOrCreate(&link).Error; err != nil {
					return fmt.Errorf("link %q to %q: %w", animal.Name, location.Name, err)
				}
			}
			inserted++
		}
		return nil
	})
	return inserted, err
}
