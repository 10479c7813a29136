package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a token can be found.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Env is an environment variable holding the value itself. A non-empty
	// value wins over File.
	Env string
	// File points to a file containing the secret value.
	File string
}

// Load resolves the secret, trimmed. Files written by 'vk-tinder auth' end with a newline.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	env := strings.TrimSpace(src.Env)
	if env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if env != "" {
		return "", fmt.Errorf("%s is not configured, %s is empty", name, env)
	}

	return "", fmt.Errorf("%s is not configured", name)
}
