// Package envfile manages the human-editable key=value defaults file kept at
// the workspace root. The dashboard and the setup wizard write remembered
// defaults here; startup loads them into the process environment so the
// gateway resolver picks them up.
package envfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultName is the defaults file name at the workspace root.
const DefaultName = ".scenedeck.env"

// TokenKey is the credential key. Save withholds it unless explicitly asked,
// so tokens are not persisted in plain text by accident.
const TokenKey = "OPENAI_API_KEY"

// Load sets process environment variables from the file at path. Variables
// already set in the environment keep their values. A missing file is fine.
func Load(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("envfile: load %s: %w", path, err)
	}

	return nil
}

// Save merges pairs into the file at path, keeping unrelated existing keys.
// The credential key is dropped unless includeToken is set.
func Save(path string, pairs map[string]string, includeToken bool) error {
	existing := map[string]string{}

	if _, err := os.Stat(path); err == nil {
		existing, err = godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("envfile: read %s: %w", path, err)
		}
	}

	for k, v := range pairs {
		if k == TokenKey && !includeToken {
			continue
		}

		existing[k] = v
	}

	if err := godotenv.Write(existing, path); err != nil {
		return fmt.Errorf("envfile: write %s: %w", path, err)
	}

	return nil
}

// Defaults builds the pair set the dashboard remembers: the base URL under
// both names the ecosystem reads, the model, and the credential. Save decides
// whether the credential is actually written.
func Defaults(baseURL, model, token string) map[string]string {
	pairs := map[string]string{
		"OPENAI_API_BASE": baseURL,
		"OPENAI_BASE_URL": baseURL,
		"SCENEDECK_MODEL": model,
	}

	if token != "" {
		pairs[TokenKey] = token
	}

	return pairs
}
