package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/relaydash/internal/keybinds"
	"github.com/studiowebux/relaydash/internal/view"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#0000ff"} // Dark blue / Blue
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleMetricValue = lipgloss.NewStyle().
				Bold(true)
)

// badgeStyles colors the status badge by its class
var badgeStyles = map[string]lipgloss.Style{
	view.BadgeClass("sent"):      styleSuccess,
	view.BadgeClass("delivered"): styleSuccess,
	view.BadgeClass("failed"):    styleError,
	view.BadgeClass("bounced"):   styleError,
}

func badgeStyle(class string) lipgloss.Style {
	if style, ok := badgeStyles[class]; ok {
		return style
	}
	return styleWarning
}

// renderMain renders the dashboard: header, metrics strip, emails and keys panels
func (m *Model) renderMain() string {
	if m.width == 0 {
		return ""
	}

	header := m.renderHeader()
	metrics := m.renderMetrics()

	bodyHeight := m.height - HeaderLines - MetricsLines - StatusBarLines - PanelBorderLines
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	keysWidth := int(float64(m.width) * KeysPanelRatio)
	if keysWidth < MinPanelWidth {
		keysWidth = MinPanelWidth
	}
	emailsWidth := m.width - keysWidth - 4 // Account for borders
	if emailsWidth < MinPanelWidth {
		emailsWidth = MinPanelWidth
	}

	emails := m.renderEmails(emailsWidth-2, bodyHeight)
	keys := m.renderKeys(keysWidth-2, bodyHeight)

	// Highlight the focused panel
	emailsBorder := colorGray
	keysBorder := colorGray
	if m.panels.Focus() == PanelEmails {
		emailsBorder = colorGreen
	} else {
		keysBorder = colorGreen
	}

	emailsBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(emailsBorder).
		Width(emailsWidth).
		Height(bodyHeight).
		Render(emails)

	keysBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(keysBorder).
		Width(keysWidth).
		Height(bodyHeight).
		Render(keys)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		metrics,
		lipgloss.JoinHorizontal(lipgloss.Top, emailsBox, keysBox),
		m.renderStatusBar(),
	)
}

func (m *Model) renderHeader() string {
	title := styleTitle.Render("RelayMail Dashboard")
	if m.baseURL != "" {
		title += "  " + styleSubtle.Render(m.baseURL)
	}
	return title + "\n"
}

// renderMetrics renders the four metric boxes; they stay on their last values when a refresh fails
func (m *Model) renderMetrics() string {
	fields := view.MetricFields{Total: "-", Sent: "-", Failed: "-", Rate: "-"}
	if snapshot := m.panels.GetMetrics(); snapshot != nil {
		fields = view.Metrics(*snapshot)
	}

	boxWidth := m.width/4 - 2
	if boxWidth < 12 {
		boxWidth = 12
	}

	box := func(label, value string, color lipgloss.AdaptiveColor) string {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Width(boxWidth).
			Padding(0, 1).
			Render(styleSubtle.Render(label) + "\n" + styleMetricValue.Render(value))
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		box("Total", fields.Total, colorBlue),
		box("Sent", fields.Sent, colorGreen),
		box("Failed", fields.Failed, colorRed),
		box("Success rate", fields.Rate, colorCyan),
	)
}

// renderEmails renders the email log table
func (m *Model) renderEmails(width, height int) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Recent Emails") + "\n\n")
	height -= PanelTitleLines

	loaded, failed := m.panels.EmailsStatus()
	switch {
	case !loaded:
		b.WriteString(styleSubtle.Render("Loading..."))
		return b.String()
	case failed:
		b.WriteString(styleError.Render(view.EmailsErrorText))
		return b.String()
	}

	rows := view.EmailRows(m.panels.GetEmails(), m.formatter)
	if len(rows) == 0 {
		b.WriteString(styleTitle.Render(view.EmailsEmptyTitle) + "\n")
		b.WriteString(wrapText(view.EmailsEmptyBody, width) + "\n\n")
		b.WriteString(m.snippet)
		return b.String()
	}

	// Column widths: status, recipient, subject, key, time
	statusW, keyW, timeW := 10, 14, 22
	rest := width - statusW - keyW - timeW - 4
	if rest < 10 {
		rest = 10
	}
	recipientW := rest / 2
	subjectW := rest - recipientW

	b.WriteString(styleSubtle.Render(joinColumns(
		[]string{"STATUS", "RECIPIENT", "SUBJECT", "KEY", "TIME"},
		[]int{statusW, recipientW, subjectW, keyW, timeW},
	)) + "\n")
	height--

	start := m.panels.EmailWindow(height)
	end := start + height
	if end > len(rows) {
		end = len(rows)
	}
	selected := m.panels.EmailIndex()
	focused := m.panels.Focus() == PanelEmails

	for i := start; i < end; i++ {
		row := rows[i]
		badge := badgeStyle(row.BadgeClass).Render(fit(row.Status, statusW))
		line := badge + " " + joinColumns(
			[]string{row.Recipient, row.Subject, row.KeyName, row.Timestamp},
			[]int{recipientW, subjectW, keyW, timeW},
		)
		if focused && i == selected {
			line = styleSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// renderKeys renders the API key list
func (m *Model) renderKeys(width, height int) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("API Keys") + "\n\n")

	loaded, failed := m.panels.KeysStatus()
	switch {
	case !loaded:
		b.WriteString(styleSubtle.Render("Loading..."))
		return b.String()
	case failed:
		b.WriteString(styleError.Render(view.KeysErrorText))
		return b.String()
	}

	rows := view.KeyRows(m.panels.GetKeys(), m.formatter)
	if len(rows) == 0 {
		b.WriteString(styleTitle.Render(view.KeysEmptyTitle) + "\n")
		b.WriteString(wrapText(view.KeysEmptyBody, width) + "\n\n")
		b.WriteString(styleSubtle.Render(fmt.Sprintf("Press %s to create one",
			m.keybinds.GetBindingString(keybinds.ContextDashboard, keybinds.ActionNewKey))))
		return b.String()
	}

	// Each key takes three lines; keep the selection visible
	perKey := 3
	visible := (height - PanelTitleLines) / perKey
	if visible < 1 {
		visible = 1
	}
	selected := m.panels.KeyIndex()
	start := 0
	if selected >= visible {
		start = selected - visible + 1
	}
	focused := m.panels.Focus() == PanelKeys

	for i := start; i < len(rows) && i < start+visible; i++ {
		row := rows[i]
		name := fit(row.Name, width-2)
		if focused && i == selected {
			name = styleSelected.Render("> " + name)
		} else {
			name = "  " + name
		}
		b.WriteString(name + "\n")
		b.WriteString("  " + styleSubtle.Render(fit(row.MaskedToken, width-2)) + "\n")
		b.WriteString("  " + styleSubtle.Render(fit(view.CreatedPrefix+row.Created+" | "+row.Usage, width-2)) + "\n")
	}
	return b.String()
}

// renderStatusBar renders the status bar at the bottom
func (m *Model) renderStatusBar() string {
	left := fmt.Sprintf("Keys: %d | Emails: %d", len(m.panels.GetKeys()), len(m.panels.GetEmails()))

	right := ""
	if m.errorMsg != "" {
		right = styleError.Render(m.errorMsg)
	} else if m.statusMsg != "" {
		if strings.Contains(m.statusMsg, "created") || strings.Contains(m.statusMsg, "copied") ||
			strings.Contains(m.statusMsg, "revoked") {
			right = styleSuccess.Render(m.statusMsg)
		} else {
			right = m.statusMsg
		}
	} else {
		right = styleSubtle.Render(fmt.Sprintf("%s new key | %s revoke | %s help | %s quit",
			m.keybinds.GetBindingString(keybinds.ContextDashboard, keybinds.ActionNewKey),
			m.keybinds.GetBindingString(keybinds.ContextDashboard, keybinds.ActionRevokeKey),
			m.keybinds.GetBindingString(keybinds.ContextDashboard, keybinds.ActionHelp),
			m.keybinds.GetBindingString(keybinds.ContextDashboard, keybinds.ActionQuit),
		))
	}

	// Center spacing
	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}

	return left + strings.Repeat(" ", spacing) + right
}

// fit pads or truncates text to exactly width cells
func fit(text string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) > width {
		if width <= 1 {
			return string(runes[:width])
		}
		return string(runes[:width-1]) + "…"
	}
	return text + strings.Repeat(" ", width-len(runes))
}

func joinColumns(values []string, widths []int) string {
	cells := make([]string, len(values))
	for i, value := range values {
		cells[i] = fit(value, widths[i])
	}
	return strings.Join(cells, " ")
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if len(line)+1+len(word) > width {
				lines = append(lines, line)
				line = word
				continue
			}
			line += " " + word
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
