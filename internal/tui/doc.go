/*
Package tui implements the interactive terminal dashboard for RelayMail.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: dashboard data, modal state and UI state
  - Update: processes key presses and fetch/action results
  - View: renders the metrics strip, email log, key list and modals

# Key Components

  - model.go: Model struct, message types, Init and Update
  - init.go: construction and Run
  - keys.go: keyboard routing through the keybinds registry
  - actions.go: fetch commands and coordinator actions
  - effects.go: adapters turning coordinator callbacks into messages
  - render.go / modals.go: views

# Data Flow

Init starts three independent fetch commands (metrics, emails, keys).
Each result message replaces only its own region. There is no request
generation guard: a slow fetch that finishes after a newer one for the
same region still wins.

Key creation, revocation, copy and logout run through
dashboard.Coordinator inside a tea.Cmd. Alerts, refresh requests and
timers raised by the coordinator are collected and handed back to Update
as one actionDoneMsg, so every state change happens on the event loop.
*/
package tui
