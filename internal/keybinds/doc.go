/*
Package keybinds provides customizable keyboard binding management.

# Overview

Bindings live in contexts. A key is first matched in the active context
and then in the global context, so a context binding shadows a global one.

Contexts:
  - global: available everywhere (ctrl+c)
  - dashboard: panels with no modal open
  - create, success, confirm: one per modal kind
  - help: the help overlay

# Configuration File Format

~/.relaydash/keybinds.json maps context -> action -> comma separated keys.
Comments are accepted (JSONC):

	{
	  // single letter shortcuts
	  "dashboard": {
	    "new_key": "n,+",
	    "refresh": "r,f5"
	  }
	}

Listing an action replaces its default keys in that context. Unknown
contexts or actions and a key claimed by two actions of one context are
rejected when the file is loaded.

# Example Usage

	registry, err := LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return err
	}

	if action, ok := registry.Match(ContextDashboard, "n"); ok {
		// Handle action
	}

# Thread Safety

The Registry is safe for concurrent use.
*/
package keybinds
