package normalisers

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/normalisers/docx"
	"github.com/custodia-labs/playground/internal/normalisers/html"
	"github.com/custodia-labs/playground/internal/normalisers/markdown"
	"github.com/custodia-labs/playground/internal/normalisers/pdf"
	"github.com/custodia-labs/playground/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches documents to the highest-priority normaliser for
// their MIME type. A normaliser may claim a whole family with "text/*".
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry holding every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	return r
}

// Register adds a normaliser. Equal priorities keep registration order.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers = append(r.normalisers, n)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Normalise extracts text with the best matching normaliser. A missing
// MIME type is detected from the file name and content.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := baseType(raw.MIMEType)
	if mimeType == "" {
		mimeType = DetectMIMEType(raw.Name, raw.Content)
	}

	n := r.find(mimeType)
	if n == nil {
		return nil, fmt.Errorf("%w: no normaliser for %q", domain.ErrUnsupportedType, mimeType)
	}

	result, err := n.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalising %s: %w", raw.Name, err)
	}
	return result, nil
}

// SupportedMIMETypes returns every MIME type a registered normaliser handles.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var types []string
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	sort.Strings(types)
	return types
}

// Supports reports whether some normaliser handles mimeType.
func (r *Registry) Supports(mimeType string) bool {
	return r.find(baseType(mimeType)) != nil
}

// DetectMIMEType guesses a MIME type from a file name and its first bytes.
func (r *Registry) DetectMIMEType(name string, head []byte) string {
	return DetectMIMEType(name, head)
}

// find returns the highest-priority normaliser for mimeType. An exact
// match at equal priority wins over a wildcard.
func (r *Registry) find(mimeType string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wildcard := ""
	if major, _, ok := strings.Cut(mimeType, "/"); ok {
		wildcard = major + "/*"
	}

	var (
		best      driven.Normaliser
		bestExact bool
	)
	for _, n := range r.normalisers {
		if best != nil && n.Priority() < best.Priority() {
			break
		}
		for _, t := range n.SupportedMIMETypes() {
			exact := t == mimeType
			if !exact && (wildcard == "" || t != wildcard) {
				continue
			}
			if best == nil || (exact && !bestExact) {
				best, bestExact = n, exact
			}
		}
	}
	return best
}

// extensionTypes covers extensions the system MIME table often lacks.
var extensionTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".log":      "text/plain",
	".csv":      "text/csv",
	".json":     "application/json",
	".xml":      "application/xml",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".html":     "text/html",
	".htm":      "text/html",
	".xhtml":    "application/xhtml+xml",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".java":     "text/x-java",
	".c":        "text/x-c",
	".h":        "text/x-c",
	".cpp":      "text/x-c++",
	".rb":       "text/x-ruby",
	".sh":       "text/x-shellscript",
	".sql":      "text/x-sql",
	".js":       "text/javascript",
	".ts":       "text/typescript",
	".css":      "text/css",
}

// DetectMIMEType guesses a MIME type from the file extension, then from
// the first bytes of content.
func DetectMIMEType(name string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := baseType(mime.TypeByExtension(ext)); t != "" && ext != "" {
		return t
	}

	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	return baseType(http.DetectContentType(head))
}

// baseType strips parameters such as charset.
func baseType(t string) string {
	if t == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(t); err == nil {
		return parsed
	}
	base, _, _ := strings.Cut(t, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
