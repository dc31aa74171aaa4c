package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/relaydash/internal/types"
)

// LoadFixture loads a mock backend fixture from a file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var fixture Fixture

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fixture); err != nil {
			return nil, fmt.Errorf("failed to parse YAML fixture: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &fixture); err != nil {
			return nil, fmt.Errorf("failed to parse JSON fixture: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported fixture file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := validateFixture(&fixture); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}

	return &fixture, nil
}

// validateFixture validates the mock fixture
func validateFixture(fixture *Fixture) error {
	keyIDs := make(map[int64]bool, len(fixture.Keys))
	for i, key := range fixture.Keys {
		if key.ID <= 0 {
			return fmt.Errorf("key %d: id must be positive", i)
		}
		if keyIDs[key.ID] {
			return fmt.Errorf("key %d: duplicate id %d", i, key.ID)
		}
		if strings.TrimSpace(key.Name) == "" {
			return fmt.Errorf("key %d: name is required", i)
		}
		keyIDs[key.ID] = true
	}

	for i, email := range fixture.Emails {
		if !keyIDs[email.KeyID] {
			return fmt.Errorf("email %d: unknown keyId %d", i, email.KeyID)
		}
		if email.Recipient == "" {
			return fmt.Errorf("email %d: recipient is required", i)
		}
		switch email.Status {
		case types.StatusSent, types.StatusFailed, types.StatusPending:
		default:
			return fmt.Errorf("email %d: status must be 'sent', 'failed' or 'pending'", i)
		}
	}

	for i, route := range fixture.Routes {
		if route.Method == "" {
			return fmt.Errorf("route %d: method is required", i)
		}
		if route.Path == "" {
			return fmt.Errorf("route %d: path is required", i)
		}
		if route.PathType != "" && route.PathType != "exact" && route.PathType != "prefix" {
			return fmt.Errorf("route %d: pathType must be 'exact' or 'prefix'", i)
		}
	}

	return nil
}

// SaveFixture saves a fixture to a file
func SaveFixture(fixture *Fixture, path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(fixture)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(fixture, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported fixture file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write fixture file: %w", err)
	}

	return nil
}
