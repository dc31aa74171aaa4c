package view

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// SDKSnippet is the getting-started code shown when no email was sent yet
const SDKSnippet = "import { RelayMail } from 'relaymail';\n// start sending..."

// SnippetFormat selects the highlighter output
type SnippetFormat string

const (
	SnippetHTML     SnippetFormat = "html"
	SnippetTerminal SnippetFormat = "terminal"
	SnippetPlain    SnippetFormat = "plain"
)

const snippetStyle = "monokai"

var (
	snippetMu    sync.Mutex
	snippetCache = map[SnippetFormat]string{}
)

// Snippet returns the highlighted SDK snippet in the given format
func Snippet(format SnippetFormat) (string, error) {
	snippetMu.Lock()
	defer snippetMu.Unlock()

	if out, ok := snippetCache[format]; ok {
		return out, nil
	}

	out, err := highlight(SDKSnippet, format)
	if err != nil {
		return "", err
	}
	snippetCache[format] = out
	return out, nil
}

func highlight(code string, format SnippetFormat) (string, error) {
	if format == SnippetPlain {
		return code, nil
	}

	lexer := lexers.Get("javascript")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(snippetStyle)
	if style == nil {
		style = styles.Fallback
	}

	var formatter chroma.Formatter
	switch format {
	case SnippetHTML:
		formatter = chromahtml.New(chromahtml.WithClasses(false), chromahtml.PreventSurroundingPre(true))
	case SnippetTerminal:
		formatter = formatters.Get("terminal256")
	default:
		return "", fmt.Errorf("unknown snippet format: %s", format)
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise snippet: %w", err)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", fmt.Errorf("failed to format snippet: %w", err)
	}
	return buf.String(), nil
}
