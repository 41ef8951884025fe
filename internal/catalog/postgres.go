package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"queryquest/internal/db"
	"queryquest/internal/game"
)

// Store picks round content from the game schema.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

func (s *Store) NextAnswerAndHints(ctx context.Context) (string, []game.Hint, error) {
	tx := s.conn.WithContext(ctx)

	var location db.Location
	if err := tx.Order("random()").Take(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrEmptySeed
		}
		return "", nil, fmt.Errorf("picking location: %w", err)
	}

	var state db.State
	if err := tx.Take(&state, "state_id = ?", location.StateID).Error; err != nil {
		return "", nil, fmt.Errorf("loading state %d: %w", location.StateID, err)
	}

	var animals []string
	err := tx.Model(&db.Animal{}).
		Joins("JOIN "+db.LocationAnimal{}.TableName()+" la ON la.animal_id = "+db.Animal{}.TableName()+".animal_id").
		Where("la.location_id = ?", location.ID).
		Order(db.Animal{}.TableName() + ".animal_id").
		Pluck(db.Animal{}.TableName()+".animal_name", &animals).Error
	if err != nil {
		return "", nil, fmt.Errorf("loading animals for %q: %w", location.Name, err)
	}

	return location.Name, Hints(location.Biome, state.Name, animals), nil
}

// Seed loads seeds into the game schema.
func (s *Store) Seed(ctx context.Context, seeds []db.LocationSeed) (int, error) {
	return db.SeedCatalog(ctx, s.conn, seeds)
}
