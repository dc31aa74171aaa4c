package keybinds

import (
	"fmt"
	"strings"
)

// ValidationError represents a keybinding validation error
type ValidationError struct {
	Type    string // "invalid" or "warning"
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if len(r.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(r.Errors)))
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("Warnings (%d):\n", len(r.Warnings)))
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn.Error()))
		}
	}

	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}

	return sb.String()
}

// Validator validates keybinding registries
type Validator struct {
	// reservedKeys are keys that should not be rebound
	reservedKeys map[string]Action
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	return &Validator{
		reservedKeys: map[string]Action{
			"ctrl+c": ActionQuitForce,
		},
	}
}

// ValidateRegistry validates an entire registry
func (v *Validator) ValidateRegistry(registry *Registry) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	for _, context := range registry.contexts() {
		for _, binding := range registry.ListBindings(context) {
			if binding.Context != context {
				continue
			}
			v.checkBinding(registry, binding, result)
		}
	}

	v.checkEssentialActions(registry, result)
	return result
}

func (v *Validator) checkBinding(registry *Registry, binding Binding, result *ValidationResult) {
	if err := ValidateKey(binding.Key); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Type: "invalid", Context: binding.Context, Key: binding.Key, Message: err.Error(),
		})
	}

	if !IsKnownAction(binding.Action) {
		result.Errors = append(result.Errors, ValidationError{
			Type: "invalid", Context: binding.Context, Key: binding.Key,
			Message: fmt.Sprintf("unknown action '%s'", binding.Action),
		})
	}

	if reserved, ok := v.reservedKeys[binding.Key]; ok && binding.Action != reserved {
		result.Warnings = append(result.Warnings, ValidationError{
			Type: "warning", Context: binding.Context, Key: binding.Key,
			Message: "reserved key rebound (may cause issues)",
		})
	}

	if binding.Context != ContextGlobal {
		if global, ok := registry.bindingIn(ContextGlobal, binding.Key); ok && global != binding.Action {
			result.Warnings = append(result.Warnings, ValidationError{
				Type: "warning", Context: binding.Context, Key: binding.Key,
				Message: fmt.Sprintf("shadows global binding (%s -> %s)", global, binding.Action),
			})
		}
	}
}

// checkEssentialActions makes sure every modal can still be left
func (v *Validator) checkEssentialActions(registry *Registry, result *ValidationResult) {
	essentials := map[Context]Action{
		ContextCreate:  ActionCloseModal,
		ContextSuccess: ActionCloseModal,
		ContextConfirm: ActionCloseModal,
	}
	for _, context := range []Context{ContextCreate, ContextSuccess, ContextConfirm} {
		action := essentials[context]
		if len(registry.GetBinding(context, action)) == 0 {
			result.Errors = append(result.Errors, ValidationError{
				Type: "invalid", Context: context,
				Message: fmt.Sprintf("no key bound to '%s'", action),
			})
		}
	}
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	for _, mod := range []string{"ctrl+", "alt+", "shift+", "super+"} {
		if key == mod {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}

	return nil
}
