// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/healthdash/pkg/types"
)

// Format selects the export encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const exportLimit = 100000

// ExportEntry is one exported report: the listing fields plus the full
// analysis and the chart specs.
type ExportEntry struct {
	Summary  `yaml:",inline"`
	Analysis types.AnalysisDocument `json:"analysis" yaml:"analysis"`
	Charts   []ExportChart          `json:"charts" yaml:"charts"`
}

// ExportChart names one chart of an exported report.
type ExportChart struct {
	Kind   types.ChartKind `json:"kind" yaml:"kind"`
	Title  string          `json:"title" yaml:"title"`
	Points int             `json:"points" yaml:"points"`
}

// Export writes the reports selected by opts to w in format.
func (s *Store) Export(ctx context.Context, w io.Writer, format Format, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	summaries, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, 0, len(summaries))
	for _, sum := range summaries {
		r, err := s.Get(ctx, sum.ID)
		if err != nil {
			return nil, err
		}
		e := ExportEntry{Summary: sum, Analysis: r.Analysis, Charts: make([]ExportChart, 0, len(r.Charts))}
		for _, c := range r.Charts {
			e.Charts = append(e.Charts, ExportChart{Kind: c.Kind, Title: c.Title, Points: len(c.Data)})
		}
		entries = append(entries, e)
	}
	return entries, nil
}
