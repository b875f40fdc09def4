// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads connection strings and credentials from a .env
// file. Variables already present in the environment always win, so a
// deployed process can override anything the file says.
//
// Recognised keys: MONGO_URI, PORT, and any OCCURRENCE_ETL_* setting.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/subosito/gotenv"
)

// DefaultFile is the .env file read when none is named.
const DefaultFile = ".env"

// Load reads the .env file at path and returns its non-empty variables.
// A missing file is not an error; Load returns an empty map.
func Load(path string) (map[string]string, error) {
	env, err := gotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	secrets := make(map[string]string, len(env))
	for k, v := range env {
		v = strings.TrimSpace(v)
		if v != "" {
			secrets[k] = v
		}
	}
	return secrets, nil
}

// Apply sets each variable that is not already set in the process
// environment and returns the names it set, sorted.
func Apply(secrets map[string]string) ([]string, error) {
	var applied []string
	for k, v := range secrets {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return nil, fmt.Errorf("setting %s: %w", k, err)
		}
		applied = append(applied, k)
	}
	sort.Strings(applied)
	return applied, nil
}
