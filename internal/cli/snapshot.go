package cli

import (
	"context"
	"fmt"
	"html/template"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/studiowebux/relaydash/internal/logging"
	"github.com/studiowebux/relaydash/internal/types"
	"github.com/studiowebux/relaydash/internal/view"
)

// Fetcher loads the three dashboard regions
type Fetcher interface {
	FetchEmails(ctx context.Context) ([]types.EmailRecord, error)
	FetchMetrics(ctx context.Context) (*types.MetricsSnapshot, error)
	FetchKeys(ctx context.Context) ([]types.APIKeyRecord, error)
}

// Snapshot is the result of one page load; each region succeeds or fails on its own
type Snapshot struct {
	Emails    []types.EmailRecord
	EmailsErr error

	Metrics    *types.MetricsSnapshot
	MetricsErr error

	Keys    []types.APIKeyRecord
	KeysErr error
}

// TakeSnapshot fetches the three regions concurrently. A failing region never
// cancels or blocks the others.
func TakeSnapshot(ctx context.Context, fetcher Fetcher, logger *zap.Logger) *Snapshot {
	logger = logging.OrNop(logger)
	snap := &Snapshot{}

	// Plain Group: one region failing must not cancel the others
	var g errgroup.Group

	g.Go(func() error {
		snap.Metrics, snap.MetricsErr = fetcher.FetchMetrics(ctx)
		if snap.MetricsErr != nil {
			logger.Error("Error loading metrics", zap.Error(snap.MetricsErr))
		}
		return nil
	})
	g.Go(func() error {
		snap.Emails, snap.EmailsErr = fetcher.FetchEmails(ctx)
		if snap.EmailsErr != nil {
			logger.Error("Error loading emails", zap.Error(snap.EmailsErr))
		}
		return nil
	})
	g.Go(func() error {
		snap.Keys, snap.KeysErr = fetcher.FetchKeys(ctx)
		if snap.KeysErr != nil {
			logger.Error("Error loading keys", zap.Error(snap.KeysErr))
		}
		return nil
	})

	_ = g.Wait()
	return snap
}

// Fragments renders every region the way the dashboard page would receive them.
// Metrics fragments are omitted when metrics failed; the elements keep their placeholders.
func (s *Snapshot) Fragments(formatter view.Formatter) ([]view.Fragment, error) {
	var fragments []view.Fragment

	if s.MetricsErr == nil && s.Metrics != nil {
		fragments = append(fragments, view.RenderMetrics(view.Metrics(*s.Metrics))...)
	}

	if s.EmailsErr != nil {
		fragments = append(fragments, view.RenderEmailsError())
	} else {
		emails, err := view.RenderEmails(view.EmailRows(s.Emails, formatter))
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, emails)
	}

	if s.KeysErr != nil {
		fragments = append(fragments, view.RenderKeysError())
	} else {
		keys, err := view.RenderKeys(view.KeyRows(s.Keys, formatter))
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, keys)
	}

	return fragments, nil
}

// fragmentTags picks the container element for each target
var fragmentTags = map[string]string{
	view.TargetEmails: "tbody",
	view.TargetKeys:   "div",
}

const snapshotPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>RelayMail Dashboard</title></head>
<body>
<section class="metrics">{{range .Metrics}}
{{.}}{{end}}
</section>
<table class="emails">{{.Emails}}</table>
<section class="keys">{{.Keys}}</section>
</body>
</html>
`

var snapshotTemplate = template.Must(template.New("snapshot").Parse(snapshotPage))

// WriteHTML writes a standalone dashboard page
func (s *Snapshot) WriteHTML(w io.Writer, formatter view.Formatter) error {
	fragments, err := s.Fragments(formatter)
	if err != nil {
		return err
	}

	data := struct {
		Metrics []template.HTML
		Emails  template.HTML
		Keys    template.HTML
	}{}

	for _, fragment := range fragments {
		switch fragment.Target {
		case view.TargetEmails:
			data.Emails = fragment.Wrap(fragmentTags[fragment.Target])
		case view.TargetKeys:
			data.Keys = fragment.Wrap(fragmentTags[fragment.Target])
		default:
			data.Metrics = append(data.Metrics, fragment.Wrap("span"))
		}
	}

	if err := snapshotTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render snapshot: %w", err)
	}
	return nil
}

// WriteText prints every region with tables, substituting the inline error texts
func (s *Snapshot) WriteText(p *Printer) error {
	if s.MetricsErr == nil && s.Metrics != nil {
		if err := p.Metrics(s.Metrics, FormatTable); err != nil {
			return err
		}
	}
	fmt.Fprintln(p.Out)

	fmt.Fprintln(p.Out, "Recent Emails")
	if s.EmailsErr != nil {
		fmt.Fprintln(p.Out, view.EmailsErrorText)
	} else if err := p.Emails(s.Emails, FormatTable); err != nil {
		return err
	}
	fmt.Fprintln(p.Out)

	fmt.Fprintln(p.Out, "API Keys")
	if s.KeysErr != nil {
		fmt.Fprintln(p.Out, view.KeysErrorText)
	} else if err := p.Keys(s.Keys, FormatTable); err != nil {
		return err
	}
	return nil
}
