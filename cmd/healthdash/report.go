// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/healthdash/internal/document"
	"github.com/pdiddy/healthdash/internal/pipeline"
	"github.com/pdiddy/healthdash/internal/render"
	"github.com/pdiddy/healthdash/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report <query...>",
	Short: "Build a report for a query",
	Long: `Report classifies the query, looks up the indicator panel, and prints the
analysis. With --html the dashboard page is written to the output directory;
with --pdf the charts are captured in a headless browser and a PDF report is
exported there. --save stores the report for later listing and search.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().Bool("pdf", false, "export a PDF report to the output directory")
	reportCmd.Flags().Bool("html", false, "write the dashboard page to the output directory")
	reportCmd.Flags().Bool("save", false, "save the report to the report store")
	reportCmd.Flags().Bool("json", false, "print the report as JSON instead of text")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	save, _ := cmd.Flags().GetBool("save")
	wantPDF, _ := cmd.Flags().GetBool("pdf")
	wantHTML, _ := cmd.Flags().GetBool("html")
	asJSON, _ := cmd.Flags().GetBool("json")

	a, err := newApp(save)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := a.pipeline.Search(ctx, pipeline.SearchRequest{Query: strings.Join(args, " "), Save: save})
	printNotices(os.Stderr, a)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		printReport(os.Stdout, rep)
	}

	sink := pipeline.DirSink{Dir: a.cfg.Export.OutputDir}
	if wantHTML {
		var buf bytes.Buffer
		if _, err := a.pipeline.Page(&buf, render.PageData{Report: rep}); err != nil {
			return err
		}
		name := strings.TrimSuffix(document.Filename(rep.Classification.Topic, rep.CreatedAt), ".pdf") + ".html"
		path, err := sink.Deliver(ctx, name, buf.Bytes())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote: %s\n", path)
	}

	if wantPDF {
		fmt.Fprintln(os.Stderr, "exporting: capturing charts")
		res, err := a.pipeline.Export(ctx, rep, sink)
		printNotices(os.Stderr, a)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported: %s (%d charts, %d bytes)\n", res.Location, res.Charts, res.Bytes)
	}
	return nil
}

func printReport(w io.Writer, rep types.Report) {
	c := rep.Classification
	a := rep.Analysis

	fmt.Fprintf(w, "%s\n%s\n\n", a.Title, strings.Repeat("=", len([]rune(a.Title))))
	fmt.Fprintf(w, "topic: %s  period: %s  case: %s\n", c.Topic.DisplayName(), c.YearRange.Label(), a.Case)
	if rep.DemoData {
		fmt.Fprintln(w, "(demo data)")
	}
	fmt.Fprintf(w, "\n%s\n", a.ExecutiveSummary)
	for _, h := range rep.Highlights() {
		fmt.Fprintf(w, "  - %s\n", h)
	}
	for _, s := range a.Sections {
		fmt.Fprintf(w, "\n## %s\n%s\n", s.Title, s.Body)
	}
	if len(a.Recommendations) > 0 {
		fmt.Fprintln(w, "\n## Recommendations")
		for _, r := range a.Recommendations {
			fmt.Fprintf(w, "  [%s] %s (%s; %s; %s) -> %s\n",
				r.Priority, r.Action, r.Timeline, r.Investment, r.Responsible, r.ExpectedImpact)
		}
	}
	if len(rep.Charts) > 0 {
		fmt.Fprintln(w, "\n## Charts")
		for i, ch := range rep.Charts {
			fmt.Fprintf(w, "  %d. %s (%s, %d points)\n", i+1, ch.Title, ch.Kind, len(ch.Data))
		}
	}
	fmt.Fprintf(w, "\nid: %s\n", rep.ID)
}
