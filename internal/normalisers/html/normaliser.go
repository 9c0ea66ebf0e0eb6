package html

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts an HTML document to readable text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title, content := extractText(string(raw.Content))
	if title == "" {
		title = titleFromName(raw.Name)
	}

	return &driven.NormaliseResult{
		Title:   title,
		Content: content,
	}, nil
}

// Elements whose content is never shown.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
}

// Elements that start a new line.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Ul: true, atom.Ol: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Tr: true, atom.Table: true, atom.Blockquote: true, atom.Pre: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Nav: true, atom.Main: true, atom.Aside: true, atom.Figure: true, atom.Figcaption: true,
}

var multiSpaces = regexp.MustCompile(`[ \t]+`)

// extractText walks the token stream once, returning the <title> text
// and the visible body text with one line per block element.
func extractText(content string) (title, text string) {
	z := html.NewTokenizer(strings.NewReader(content))

	var (
		body     strings.Builder
		titleBuf strings.Builder
		skip     int
		pre      int
		inTitle  bool
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF, or malformed input: keep what was read so far.
			return strings.Join(strings.Fields(titleBuf.String()), " "), cleanLines(body.String())

		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			tag := atom.Lookup(name)
			opening := tt == html.StartTagToken
			closing := tt == html.EndTagToken

			switch {
			case tag == atom.Title:
				inTitle = opening
			case skipped[tag]:
				if opening {
					skip++
				} else if closing && skip > 0 {
					skip--
				}
			case tag == atom.Td || tag == atom.Th:
				body.WriteByte(' ')
			case blocks[tag]:
				body.WriteByte('\n')
			}
			if tag == atom.Pre {
				if opening {
					pre++
				} else if closing && pre > 0 {
					pre--
				}
			}

		case html.TextToken:
			t := string(z.Text())
			switch {
			case inTitle:
				titleBuf.WriteString(t)
			case skip > 0:
			case pre > 0:
				body.WriteString(t)
			default:
				body.WriteString(collapseSpace(t))
			}
		}
	}
}

// collapseSpace folds runs of whitespace to one space, as a browser would.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if unicode.IsSpace(rune(s[0])) {
		out = " " + out
	}
	if unicode.IsSpace(rune(s[len(s)-1])) {
		out += " "
	}
	return out
}

// cleanLines trims every line and drops empty ones.
func cleanLines(s string) string {
	lines := strings.Split(s, "\n")
	result := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

// titleFromName derives a title from the file name.
func titleFromName(name string) string {
	filename := filepath.Base(name)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
