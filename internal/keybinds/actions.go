package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal    Context = "global"    // Available everywhere
	ContextDashboard Context = "dashboard" // Panels with no modal open
	ContextCreate    Context = "create"    // Create key modal (text input)
	ContextSuccess   Context = "success"   // Generated key modal
	ContextConfirm   Context = "confirm"   // Revoke and logout confirmations
	ContextHelp      Context = "help"      // Help overlay
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)
	ActionHelp      Action = "help"       // Toggle help

	// Navigation
	ActionNavigateUp   Action = "navigate_up"   // Move selection up
	ActionNavigateDown Action = "navigate_down" // Move selection down
	ActionSwitchFocus  Action = "switch_focus"  // Cycle focus between panels

	// Dashboard
	ActionRefresh   Action = "refresh"    // Reload every region
	ActionNewKey    Action = "new_key"    // Open the create key modal
	ActionRevokeKey Action = "revoke_key" // Confirm revocation of the selected key
	ActionLogout    Action = "logout"     // Confirm logout

	// Modals
	ActionCloseModal Action = "close_modal" // Close current modal
	ActionConfirm    Action = "confirm"     // Accept a confirmation
	ActionCopyKey    Action = "copy_key"    // Copy the generated key
	ActionSubmit     Action = "submit"      // Submit the create key form
)

// AllContexts lists every built-in context
var AllContexts = []Context{
	ContextGlobal,
	ContextDashboard,
	ContextCreate,
	ContextSuccess,
	ContextConfirm,
	ContextHelp,
}

// knownActions is used to reject typos in user configuration
var knownActions = map[Action]bool{
	ActionQuit:         true,
	ActionQuitForce:    true,
	ActionHelp:         true,
	ActionNavigateUp:   true,
	ActionNavigateDown: true,
	ActionSwitchFocus:  true,
	ActionRefresh:      true,
	ActionNewKey:       true,
	ActionRevokeKey:    true,
	ActionLogout:       true,
	ActionCloseModal:   true,
	ActionConfirm:      true,
	ActionCopyKey:      true,
	ActionSubmit:       true,
}

// IsKnownAction reports whether the action is handled by the dashboard
func IsKnownAction(action Action) bool {
	return knownActions[action]
}

// IsKnownContext reports whether the context is built in
func IsKnownContext(context Context) bool {
	for _, c := range AllContexts {
		if c == context {
			return true
		}
	}
	return false
}

// Description returns a short help text for an action
func (a Action) Description() string {
	switch a {
	case ActionQuit:
		return "Quit"
	case ActionQuitForce:
		return "Force quit"
	case ActionHelp:
		return "Toggle help"
	case ActionNavigateUp:
		return "Move up"
	case ActionNavigateDown:
		return "Move down"
	case ActionSwitchFocus:
		return "Switch panel"
	case ActionRefresh:
		return "Refresh"
	case ActionNewKey:
		return "Create API key"
	case ActionRevokeKey:
		return "Revoke selected key"
	case ActionLogout:
		return "Log out"
	case ActionCloseModal:
		return "Close"
	case ActionConfirm:
		return "Confirm"
	case ActionCopyKey:
		return "Copy key"
	case ActionSubmit:
		return "Create"
	default:
		return string(a)
	}
}
