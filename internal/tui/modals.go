package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/relaydash/internal/keybinds"
)

// renderModal renders a centered modal dialog
func (m *Model) renderModal(title, content string, width, height int) string {
	return m.renderModalWithFooter(title, content, "", width, height)
}

// renderModalWithFooter renders a centered modal dialog with a fixed footer
func (m *Model) renderModalWithFooter(title, content, footer string, width, height int) string {
	// For small terminals, use almost full screen
	maxWidth := m.width - 2
	maxHeight := m.height - 1
	if width > maxWidth {
		width = maxWidth
	}
	if height > maxHeight {
		height = maxHeight
	}
	if width < MinPanelWidth && m.width >= MinPanelWidth {
		width = MinPanelWidth
	}

	fullContent := styleTitle.Render(title) + "\n\n" + content
	if footer != "" {
		fullContent += "\n\n" + styleSubtle.Render(footer)
	}

	modalBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBlue).
		Width(width).
		Height(height).
		Padding(1, 2).
		Render(fullContent)

	// Modal is full screen or nearly full screen
	if width >= m.width-2 || height >= m.height-1 {
		return modalBox
	}

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalBox,
	)
}

// binding is a short label for an action in a context, as shown in footers
func (m *Model) binding(context keybinds.Context, action keybinds.Action) string {
	return "[" + m.keybinds.GetBindingString(context, action) + "]"
}

// renderCreateModal renders the create key form
func (m *Model) renderCreateModal() string {
	content := "Key name\n\n" + m.nameInput.View()
	if m.errorMsg != "" {
		content += "\n\n" + styleError.Render(wrapText(m.errorMsg, ModalWidth-ModalPadding*2))
	}
	if m.busy {
		content += "\n\n" + styleSubtle.Render("Creating key...")
	}

	footer := fmt.Sprintf("%s create %s cancel",
		m.binding(keybinds.ContextCreate, keybinds.ActionSubmit),
		m.binding(keybinds.ContextCreate, keybinds.ActionCloseModal))

	return m.renderModalWithFooter("Create API Key", content, footer, ModalWidth, ModalHeight)
}

// renderSuccessModal renders the one-time display of a newly created key
func (m *Model) renderSuccessModal() string {
	content := "Copy this key now. It will not be shown again.\n\n" +
		styleWarning.Render(m.modals.GeneratedKey())
	if m.errorMsg != "" {
		content += "\n\n" + styleError.Render(wrapText(m.errorMsg, ModalWidthWide-ModalPadding*2))
	}

	footer := fmt.Sprintf("%s %s %s close",
		m.binding(keybinds.ContextSuccess, keybinds.ActionCopyKey),
		m.modals.CopyLabel(),
		m.binding(keybinds.ContextSuccess, keybinds.ActionCloseModal))

	return m.renderModalWithFooter("API Key Created", content, footer, ModalWidthWide, ModalHeight)
}

// renderRevokeModal renders the revoke confirmation
func (m *Model) renderRevokeModal() string {
	name := "this key"
	if id, ok := m.modals.Pending(); ok {
		name = "key " + id.String()
		for _, key := range m.panels.GetKeys() {
			if key.ID == id {
				name = fmt.Sprintf("%q", key.Name)
				break
			}
		}
	}

	content := fmt.Sprintf("Revoke %s?\n\nApplications using it will stop working.", name)
	if m.busy {
		content += "\n\n" + styleSubtle.Render("Revoking...")
	}
	footer := m.confirmFooter("revoke")

	return m.renderModalWithFooter("Revoke API Key", content, footer, ModalWidth, ModalHeightSmall)
}

// renderLogoutModal renders the logout confirmation
func (m *Model) renderLogoutModal() string {
	content := "End your session and close the dashboard?"
	if m.errorMsg != "" {
		content += "\n\n" + styleError.Render(wrapText(m.errorMsg, ModalWidth-ModalPadding*2))
	}
	footer := m.confirmFooter("log out")

	return m.renderModalWithFooter("Log Out", content, footer, ModalWidth, ModalHeightSmall)
}

func (m *Model) confirmFooter(verb string) string {
	return fmt.Sprintf("%s %s %s cancel",
		m.binding(keybinds.ContextConfirm, keybinds.ActionConfirm),
		verb,
		m.binding(keybinds.ContextConfirm, keybinds.ActionCloseModal))
}

// renderHelp renders the help screen listing every binding by context
func (m *Model) renderHelp() string {
	var b strings.Builder

	sections := []struct {
		title   string
		context keybinds.Context
	}{
		{"Dashboard", keybinds.ContextDashboard},
		{"Create key", keybinds.ContextCreate},
		{"New key", keybinds.ContextSuccess},
		{"Confirmations", keybinds.ContextConfirm},
	}

	for i, section := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styleWarning.Render(section.title) + "\n")
		for _, binding := range m.keybinds.ListBindings(section.context) {
			if binding.Context != section.context {
				continue
			}
			b.WriteString(fmt.Sprintf("  %-10s %s\n", binding.Key, binding.Action.Description()))
		}
	}

	b.WriteString("\n" + styleWarning.Render("Everywhere") + "\n")
	for _, binding := range m.keybinds.ListBindings(keybinds.ContextGlobal) {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", binding.Key, binding.Action.Description()))
	}

	footer := m.binding(modeContext(ModeHelp), keybinds.ActionCloseModal) + " close"

	return m.renderModalWithFooter("Keyboard Shortcuts", b.String(), footer, ModalWidth, m.height-2)
}
