package bootstrap

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// Loadenv reads the given env files (.env when none) into the process
// environment. Variables already set are kept. Missing files are not an error.
func Loadenv(files ...string) (bool, error) {
	err := godotenv.Load(files...)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
