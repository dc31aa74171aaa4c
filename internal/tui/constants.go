package tui

// UI Layout Constants

const (
	// Modal dimensions
	ModalWidth       = 60 // Default modal width
	ModalWidthWide   = 72 // Success modal, wide enough for a full key
	ModalHeightSmall = 9  // Confirmation dialogs
	ModalHeight      = 12 // Create and success modals
	ModalPadding     = 4  // Horizontal padding + border

	// Main view layout
	HeaderLines      = 2 // Title + blank line
	MetricsLines     = 4 // Metric boxes with border
	StatusBarLines   = 1 // Footer
	PanelBorderLines = 2 // Top + bottom border
	PanelTitleLines  = 2 // Title + blank line
	KeysPanelRatio   = 0.4
	MinPanelWidth    = 30

	// Status messages longer than this are truncated in the footer
	MaxStatusLength = 100

	// Text input
	KeyNameCharLimit = 64
)

// Shown when a key asks for a new action while a coordinator call runs
const msgActionInFlight = "Please wait for the current action to finish"
