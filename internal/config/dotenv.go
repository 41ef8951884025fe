package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads every listed env file that exists, earlier files winning.
// Variables already set in the process environment are never overwritten.
func LoadDotEnv(paths ...string) error {
	present := make([]string, 0, len(paths))
	for _, path := range paths {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			present = append(present, path)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return err
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}
