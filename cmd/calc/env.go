package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// loadDotEnv loads environment variables from path. Existing process
// environment variables are not overridden. The default file may be absent;
// a file named explicitly with --env-file must exist.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) && path == defaultEnvFile {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}
