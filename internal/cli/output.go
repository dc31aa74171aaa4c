package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/relaydash/internal/filter"
	"github.com/studiowebux/relaydash/internal/types"
	"github.com/studiowebux/relaydash/internal/view"
)

// Format is an output format accepted by -o
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatHTML  Format = "html"
	FormatText  Format = "text"
)

// regionFormats are accepted by the emails, metrics and keys commands
var regionFormats = []Format{FormatTable, FormatJSON, FormatYAML, FormatHTML}

// historyFormats are accepted by the history command
var historyFormats = []Format{FormatTable, FormatJSON, FormatYAML}

// snapshotFormats are accepted by the snapshot command
var snapshotFormats = []Format{FormatText, FormatHTML}

// ParseFormat validates value against the allowed formats
func ParseFormat(value string, allowed []Format) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(value)))
	for _, candidate := range allowed {
		if format == candidate {
			return format, nil
		}
	}

	names := make([]string, len(allowed))
	for i, candidate := range allowed {
		names[i] = string(candidate)
	}
	return "", fmt.Errorf("unsupported output format %q (use %s)", value, strings.Join(names, ", "))
}

// Printer writes dashboard regions to a terminal or a pipe
type Printer struct {
	Out       io.Writer
	Formatter view.Formatter
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer, formatter view.Formatter) *Printer {
	return &Printer{Out: out, Formatter: formatter}
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)
	t.SetOutputMirror(p.Out)
	return t
}

// Emails prints the email log
func (p *Printer) Emails(emails []types.EmailRecord, format Format) error {
	switch format {
	case FormatJSON:
		return p.json(emails)
	case FormatYAML:
		return p.yaml(emails)
	case FormatHTML:
		fragment, err := view.RenderEmails(view.EmailRows(emails, p.Formatter))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.Out, fragment.Wrap("tbody"))
		return err
	}

	rows := view.EmailRows(emails, p.Formatter)
	if len(rows) == 0 {
		_, err := fmt.Fprintf(p.Out, "%s\n%s\n\n%s\n", view.EmailsEmptyTitle, view.EmailsEmptyBody, snippetOrPlain(view.SnippetTerminal))
		return err
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"Status", "Recipient", "Subject", "Key", "Time"})
	for _, row := range rows {
		t.AppendRow(table.Row{row.Status, row.Recipient, row.Subject, row.KeyName, row.Timestamp})
	}
	t.Render()
	return nil
}

// Metrics prints the aggregate metrics
func (p *Printer) Metrics(metrics *types.MetricsSnapshot, format Format) error {
	switch format {
	case FormatJSON:
		return p.json(metrics)
	case FormatYAML:
		return p.yaml(metrics)
	case FormatHTML:
		for _, fragment := range view.RenderMetrics(view.Metrics(*metrics)) {
			if _, err := fmt.Fprintln(p.Out, fragment.Wrap("span")); err != nil {
				return err
			}
		}
		return nil
	}

	fields := view.Metrics(*metrics)
	t := p.newTable()
	t.AppendHeader(table.Row{"Total", "Sent", "Failed", "Success rate"})
	t.AppendRow(table.Row{fields.Total, fields.Sent, fields.Failed, fields.Rate})
	t.Render()
	return nil
}

// Keys prints the API key list
func (p *Printer) Keys(keys []types.APIKeyRecord, format Format) error {
	switch format {
	case FormatJSON:
		return p.json(keys)
	case FormatYAML:
		return p.yaml(keys)
	case FormatHTML:
		fragment, err := view.RenderKeys(view.KeyRows(keys, p.Formatter))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.Out, fragment.Wrap("div"))
		return err
	}

	rows := view.KeyRows(keys, p.Formatter)
	if len(rows) == 0 {
		_, err := fmt.Fprintf(p.Out, "%s\n%s\n", view.KeysEmptyTitle, view.KeysEmptyBody)
		return err
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Key", "Created", "Usage"})
	for _, row := range rows {
		t.AppendRow(table.Row{row.ID, row.Name, row.MaskedToken, row.Created, row.Usage})
	}
	t.Render()
	return nil
}

// History prints the local activity history
func (p *Printer) History(entries []types.ActivityEntry, format Format) error {
	switch format {
	case FormatJSON:
		return p.json(entries)
	case FormatYAML:
		return p.yaml(entries)
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(p.Out, "No activity recorded")
		return err
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"Time", "Action", "Key ID", "Name", "Result"})
	for _, entry := range entries {
		result := "ok"
		if !entry.Succeeded() {
			result = entry.Error
		}
		t.AppendRow(table.Row{p.Formatter.DateTime(entry.Timestamp), entry.Action, entry.KeyID, entry.KeyName, result})
	}
	t.Render()
	return nil
}

// Query prints the result of q over records instead of a formatted region
func (p *Printer) Query(ctx context.Context, q *filter.Query, records interface{}) error {
	result, err := q.Run(ctx, records)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Out, result)
	return err
}

func (p *Printer) json(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Out, string(data))
	return err
}

func (p *Printer) yaml(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.Out.Write(data)
	return err
}

// snippetOrPlain highlights the SDK snippet, falling back to plain text
func snippetOrPlain(format view.SnippetFormat) string {
	snippet, err := view.Snippet(format)
	if err != nil {
		return view.SDKSnippet
	}
	return snippet
}
