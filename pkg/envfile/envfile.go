// Package envfile parses dotenv-style files into flat string maps.
package envfile

import (
	"fmt"
	"os"
	"strings"
)

// Load reads the env file at path into a new map. The process environment is
// never touched; callers decide how the returned map is layered.
func Load(path string) (map[string]string, error) {
	vars := make(map[string]string)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := parseEnvFile(data, vars); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return vars, nil
}

// LoadIfExists behaves like Load but returns an empty map when the file is absent.
func LoadIfExists(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	return Load(path)
}

// parseEnvFile parses KEY=VALUE lines into vars. Blank lines and lines starting
// with '#' are ignored. An optional "export " prefix is stripped, and single or
// double quotes around values are removed.
func parseEnvFile(content []byte, vars map[string]string) error {
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")

		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("invalid line (missing '='): %q", line)
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		vars[key] = value
	}
	return nil
}
