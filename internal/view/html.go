package view

import (
	"bytes"
	"fmt"
	"html/template"
)

// Inline error texts shown in place of a region's data
const (
	EmailsErrorText = "Failed to load data. API might be unreachable."
	KeysErrorText   = "Failed to load API keys"
)

// Empty state copy
const (
	EmailsEmptyTitle = "Ready for takeoff?"
	EmailsEmptyBody  = "You haven't sent any emails yet. Use the SDK to send your first one!"
	KeysEmptyTitle   = "No API Keys Found"
	KeysEmptyBody    = "Create a key to start sending emails via the SDK."
)

// Fragment is rendered markup bound to the element it replaces
type Fragment struct {
	Target string
	HTML   template.HTML
}

// Wrap returns the fragment inside its target container
func (f Fragment) Wrap(tag string) template.HTML {
	return template.HTML(fmt.Sprintf(`<%s id="%s">%s</%s>`, tag, template.HTMLEscapeString(f.Target), f.HTML, tag))
}

const emailsTemplate = `{{define "emails"}}{{range .}}
<tr>
	<td><span class="badge {{.BadgeClass}}">{{.Status}}</span></td>
	<td>{{.Recipient}}</td>
	<td><span style="font-weight:500; color:#fff">{{.Subject}}</span></td>
	<td class="code" style="font-size:0.85rem">{{.KeyName}}</td>
	<td style="color:#a1a1aa">{{.Timestamp}}</td>
</tr>{{end}}
{{end}}

{{define "emails-empty"}}
<tr>
	<td colspan="5">
		<div class="empty-state">
			<div class="empty-icon">🚀</div>
			<h3>{{.Title}}</h3>
			<p>{{.Body}}</p>
			<div class="code-snippet-mini">{{.Snippet}}</div>
		</div>
	</td>
</tr>
{{end}}

{{define "emails-error"}}<tr><td colspan="5" style="color:#ef4444; text-align:center; padding: 20px;">{{.}}</td></tr>{{end}}`

const keysTemplate = `{{define "keys"}}{{range .}}
<div class="key-item">
	<div class="key-info-group">
		<div class="key-details">
			<h3>{{.Name}}</h3>
			<div class="key-mask">{{.MaskedToken}}</div>
		</div>
	</div>
	<div class="key-meta">
		<div>Created {{.Created}}</div>
		<div style="font-size: 0.8rem; opacity: 0.7; margin-top: 4px;">{{.Usage}}</div>
	</div>
	<div>
		<button class="btn-danger-ghost" data-key-id="{{.ID}}" onclick="openRevokeModal('{{.ID}}')">Revoke</button>
	</div>
</div>{{end}}
{{end}}

{{define "keys-empty"}}
<div class="empty-state">
	<div class="empty-icon">
		<svg width="64" height="64" viewBox="0 0 24 24" fill="none" stroke="#6366f1" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round">
			<rect x="3" y="11" width="18" height="11" rx="2" ry="2"></rect>
			<path d="M7 11V7a5 5 0 0 1 10 0v4"></path>
		</svg>
	</div>
	<h3>{{.Title}}</h3>
	<p>{{.Body}}</p>
</div>
{{end}}

{{define "keys-error"}}<div style="color:#ef4444; text-align:center;">{{.}}</div>{{end}}`

var templates = template.Must(template.Must(template.New("view").Parse(emailsTemplate)).Parse(keysTemplate))

type emptyState struct {
	Title   string
	Body    string
	Snippet template.HTML
}

func execute(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// RenderEmails renders the email table body, or the empty state when there are no rows
func RenderEmails(rows []EmailRow) (Fragment, error) {
	var (
		html template.HTML
		err  error
	)
	if len(rows) == 0 {
		snippet, serr := Snippet(SnippetHTML)
		if serr != nil {
			return Fragment{}, serr
		}
		html, err = execute("emails-empty", emptyState{
			Title:   EmailsEmptyTitle,
			Body:    EmailsEmptyBody,
			Snippet: template.HTML(snippet),
		})
	} else {
		html, err = execute("emails", rows)
	}
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{Target: TargetEmails, HTML: html}, nil
}

// RenderEmailsError renders the inline error row for the email table
func RenderEmailsError() Fragment {
	html, _ := execute("emails-error", EmailsErrorText)
	return Fragment{Target: TargetEmails, HTML: html}
}

// RenderKeys renders the key list, or the empty state when there are no keys
func RenderKeys(rows []KeyRow) (Fragment, error) {
	var (
		html template.HTML
		err  error
	)
	if len(rows) == 0 {
		html, err = execute("keys-empty", emptyState{Title: KeysEmptyTitle, Body: KeysEmptyBody})
	} else {
		html, err = execute("keys", rows)
	}
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{Target: TargetKeys, HTML: html}, nil
}

// RenderKeysError renders the inline error for the key list
func RenderKeysError() Fragment {
	html, _ := execute("keys-error", KeysErrorText)
	return Fragment{Target: TargetKeys, HTML: html}
}

// RenderMetrics sets each metric element's text; metrics have no markup of their own
func RenderMetrics(fields MetricFields) []Fragment {
	return []Fragment{
		{Target: TargetMetricTotal, HTML: template.HTML(template.HTMLEscapeString(fields.Total))},
		{Target: TargetMetricSent, HTML: template.HTML(template.HTMLEscapeString(fields.Sent))},
		{Target: TargetMetricFailed, HTML: template.HTML(template.HTMLEscapeString(fields.Failed))},
		{Target: TargetMetricRate, HTML: template.HTML(template.HTMLEscapeString(fields.Rate))},
	}
}
