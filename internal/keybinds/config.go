package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// ConfigFileName is the keybinds file looked up in the config directory
const ConfigFileName = "keybinds.json"

// Config maps context -> action -> comma separated keys
//
//	{
//	  "dashboard": {"new_key": "n,+", "refresh": "r,f5"},
//	  "confirm":   {"confirm": "enter,y"}
//	}
//
// Actions listed for a context replace their default keys in that context.
type Config map[Context]map[Action]string

// LoadConfig loads keybinding configuration from a JSON or JSONC file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", filepath.Base(path), err)
	}
	return config, nil
}

// SaveConfig saves keybinding configuration to a JSON file
func SaveConfig(config Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// splitKeys parses "a, b,c" into its keys
func splitKeys(value string) []string {
	var keys []string
	for _, part := range strings.Split(value, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// CheckConfig reports unknown contexts, unknown actions, invalid keys and
// keys claimed by more than one action within a context
func CheckConfig(config Config) error {
	var problems []string

	contexts := make([]Context, 0, len(config))
	for context := range config {
		contexts = append(contexts, context)
	}
	sort.Slice(contexts, func(i, j int) bool { return contexts[i] < contexts[j] })

	for _, context := range contexts {
		if !IsKnownContext(context) {
			problems = append(problems, fmt.Sprintf("unknown context '%s'", context))
			continue
		}

		actions := make([]Action, 0, len(config[context]))
		for action := range config[context] {
			actions = append(actions, action)
		}
		sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

		claimed := make(map[string]Action)
		for _, action := range actions {
			if !IsKnownAction(action) {
				problems = append(problems, fmt.Sprintf("unknown action '%s' in context '%s'", action, context))
				continue
			}
			keys := splitKeys(config[context][action])
			if len(keys) == 0 {
				problems = append(problems, fmt.Sprintf("no keys for action '%s' in context '%s'", action, context))
			}
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					problems = append(problems, fmt.Sprintf("%s in context '%s'", err, context))
					continue
				}
				if other, ok := claimed[key]; ok {
					problems = append(problems, fmt.Sprintf("key '%s' bound to both '%s' and '%s' in context '%s'", key, other, action, context))
					continue
				}
				claimed[key] = action
			}
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ApplyConfig applies user configuration to a registry
// User bindings override default bindings
func ApplyConfig(registry *Registry, config Config) error {
	if err := CheckConfig(config); err != nil {
		return err
	}

	for context, actions := range config {
		for action, value := range actions {
			registry.Unbind(context, action)
			registry.RegisterMultiple(context, splitKeys(value), action)
		}
	}
	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()
	if configPath == "" {
		return registry, nil
	}

	if _, err := os.Stat(configPath); err == nil {
		config, err := LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", ConfigFileName, err)
		}
		if err := ApplyConfig(registry, config); err != nil {
			return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
		}
	}

	return registry, nil
}

// ExportConfig renders a registry as a config, useful as a starting point for users
func ExportConfig(registry *Registry) Config {
	config := make(Config)
	for _, context := range registry.contexts() {
		actions := make(map[Action]string)
		for _, binding := range registry.ListBindings(context) {
			if binding.Context != context {
				continue
			}
			if existing, ok := actions[binding.Action]; ok {
				actions[binding.Action] = existing + "," + binding.Key
			} else {
				actions[binding.Action] = binding.Key
			}
		}
		config[context] = actions
	}
	return config
}
