package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"
	"github.com/sahilm/fuzzy"

	"github.com/studiowebux/relaydash/internal/types"
)

// ShellTimeout bounds a $(command) query
const ShellTimeout = 30 * time.Second

// Query is a compiled --query expression: either JMESPath or $(command),
// where the command receives the records as JSON on stdin
type Query struct {
	expression string
	jmes       *jmespath.JMESPath
	shell      string
}

// Compile parses expression. An empty expression yields a nil Query.
func Compile(expression string) (*Query, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}

	if strings.HasPrefix(expression, "$(") && strings.HasSuffix(expression, ")") {
		command := strings.TrimSpace(expression[2 : len(expression)-1])
		if command == "" {
			return nil, fmt.Errorf("empty shell command in query %q", expression)
		}
		return &Query{expression: expression, shell: command}, nil
	}

	compiled, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}
	return &Query{expression: expression, jmes: compiled}, nil
}

// String returns the source expression
func (q *Query) String() string {
	return q.expression
}

// IsShell reports whether the query pipes records to a command
func (q *Query) IsShell() bool {
	return q.shell != ""
}

// Run applies the query to records, which are first rendered as JSON.
// JMESPath results are indented JSON; a missing result is "null".
func (q *Query) Run(ctx context.Context, records interface{}) (string, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to marshal records: %w", err)
	}

	if q.IsShell() {
		return runShell(ctx, data, q.shell)
	}

	// Search walks generic JSON values, not Go structs with tags
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	result, err := q.jmes.Search(doc)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}
	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(output), nil
}

func runShell(ctx context.Context, input []byte, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ShellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := err.Error()
		if stderr.Len() > 0 {
			msg = strings.TrimSpace(stderr.String())
		}
		return "", fmt.Errorf("command '%s' failed: %s", command, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// keyNames adapts a key list to fuzzy.Source
type keyNames []types.APIKeyRecord

func (k keyNames) String(i int) string { return k[i].Name }
func (k keyNames) Len() int            { return len(k) }

// MatchKeys returns the keys whose name fuzzy-matches pattern, best match first.
// An empty pattern returns keys unchanged.
func MatchKeys(keys []types.APIKeyRecord, pattern string) []types.APIKeyRecord {
	if strings.TrimSpace(pattern) == "" {
		return keys
	}

	matches := fuzzy.FindFrom(pattern, keyNames(keys))
	result := make([]types.APIKeyRecord, 0, len(matches))
	for _, match := range matches {
		result = append(result, keys[match.Index])
	}
	return result
}

// FilterEmailsByStatus keeps emails whose status matches any of the given ones
func FilterEmailsByStatus(emails []types.EmailRecord, statuses []string) []types.EmailRecord {
	if len(statuses) == 0 {
		return emails
	}

	var filtered []types.EmailRecord
	for _, email := range emails {
		if hasAnyStatus(email.Status, statuses) {
			filtered = append(filtered, email)
		}
	}
	return filtered
}

func hasAnyStatus(status string, statuses []string) bool {
	for _, s := range statuses {
		if strings.EqualFold(status, s) {
			return true
		}
	}
	return false
}
