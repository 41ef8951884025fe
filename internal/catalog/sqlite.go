package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"queryquest/internal/db"
)

const sqliteSchema = `
DROP TABLE IF EXISTS location_animals;
DROP TABLE IF EXISTS location;
DROP TABLE IF EXISTS animal;
DROP TABLE IF EXISTS state;
CREATE TABLE state (
	state_id INTEGER PRIMARY KEY,
	state_name TEXT NOT NULL UNIQUE
);
CREATE TABLE location (
	location_id INTEGER PRIMARY KEY,
	location_name TEXT NOT NULL,
	location_biome TEXT NOT NULL,
	state_id INTEGER NOT NULL REFERENCES state (state_id)
);
CREATE TABLE animal (
	animal_id INTEGER PRIMARY KEY,
	animal_name TEXT NOT NULL UNIQUE
);
CREATE TABLE location_animals (
	location_id INTEGER NOT NULL REFERENCES location (location_id),
	animal_id INTEGER NOT NULL REFERENCES animal (animal_id),
	PRIMARY KEY (location_id, animal_id)
);
`

// BuildSQLite writes the catalog into a fresh SQLite file at path, mirroring the
// tables of the game schema so local queries read the same as in production.
func BuildSQLite(ctx context.Context, path string, seeds []db.LocationSeed) error {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating catalog tables: %w", err)
	}

	states := make(map[string]int64)
	animals := make(map[string]int64)
	for _, seed := range seeds {
		stateName := strings.TrimSpace(seed.State)
		stateID, ok := states[stateName]
		if !ok {
			res, err := tx.ExecContext(ctx, `INSERT INTO state (state_name) VALUES (?)`, stateName)
			if err != nil {
				return fmt.Errorf("insert state %q: %w", stateName, err)
			}
			if stateID, err = res.LastInsertId(); err != nil {
				return err
			}
			states[stateName] = stateID
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO location (location_name, location_biome, state_id) VALUES (?, ?, ?)`,
			strings.TrimSpace(seed.Name), strings.TrimSpace(seed.Biome), stateID)
		if err != nil {
			return fmt.Errorf("insert location %q: %w", seed.Name, err)
		}
		locationID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for _, name := range seed.Animals {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			animalID, ok := animals[name]
			if !ok {
				res, err := tx.ExecContext(ctx, `INSERT INTO animal (animal_name) VALUES (?)`, name)
				if err != nil {
					return fmt.Errorf("insert animal %q: %w", name, err)
				}
				if animalID, err = res.LastInsertId(); err != nil {
					return err
				}
				animals[name] = animalID
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO location_animals (location_id, animal_id) VALUES (?, ?)`,
				locationID, animalID); err != nil {
				return fmt.Errorf("link %q to %q: %w", name, seed.Name, err)
			}
		}
	}
	return tx.Commit()
}
