package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

const timeLayout = "2006-01-02 15:04:05"

// writeStructured prints v as JSON or YAML.
// It returns false when format is text and the caller should print its own view.
func writeStructured(cmd *cobra.Command, format string, v any) (bool, error) {
	switch format {
	case "", formatText:
		return false, nil
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to format JSON: %w", err)
		}
		cmd.Println(string(data))
		return true, nil
	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("failed to format YAML: %w", err)
		}
		cmd.Print(string(data))
		return true, nil
	default:
		return true, fmt.Errorf("%w: unknown format %q (want text, json or yaml)", domain.ErrInvalidInput, format)
	}
}

func addFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "format", "o", formatText, "Output format: text, json or yaml")
}

type documentView struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	MIMEType  string    `json:"mime_type" yaml:"mime_type"`
	Size      int64     `json:"size" yaml:"size"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

func newDocumentView(d domain.Document) documentView {
	return documentView{
		ID:        d.ID,
		Name:      d.Name,
		MIMEType:  d.MIMEType,
		Size:      d.Size,
		CreatedAt: d.CreatedAt,
	}
}

type playgroundView struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Service     string    `json:"service" yaml:"service"`
	Model       string    `json:"model" yaml:"model"`
	DocumentIDs []string  `json:"document_ids" yaml:"document_ids"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

func newPlaygroundView(p domain.Playground) playgroundView {
	return playgroundView{
		ID:          p.ID,
		Title:       p.Title,
		Service:     p.Service.String(),
		Model:       p.Model,
		DocumentIDs: p.DocumentIDs,
		CreatedAt:   p.CreatedAt,
	}
}

type pointView struct {
	ID string  `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
}

func newPointViews(points []domain.Point) []pointView {
	views := make([]pointView, len(points))
	for i, p := range points {
		views[i] = pointView{ID: p.ID, X: p.X, Y: p.Y}
	}
	return views
}

type queryView struct {
	ID        string     `json:"id" yaml:"id"`
	Text      string     `json:"text" yaml:"text"`
	ResultIDs []string   `json:"result_ids" yaml:"result_ids"`
	Point     *pointView `json:"point,omitempty" yaml:"point,omitempty"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
}

func newQueryView(r domain.QueryResult) queryView {
	v := queryView{
		ID:        r.Query.ID,
		Text:      r.Query.Text,
		ResultIDs: r.Query.ResultIDs,
		CreatedAt: r.Query.CreatedAt,
	}
	if r.Point != nil {
		v.Point = &pointView{ID: r.Point.ID, X: r.Point.X, Y: r.Point.Y}
	}
	return v
}

func formatPoint(p *domain.Point) string {
	if p == nil {
		return "(none)"
	}
	return fmt.Sprintf("(%.4f, %.4f)", p.X, p.Y)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
