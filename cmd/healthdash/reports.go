// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/healthdash/internal/reports"
	"github.com/pdiddy/healthdash/pkg/types"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage saved reports (list, show, search, export, delete)",
	Long: `Reports manages the local SQLite store of saved reports. Reports are saved
by "healthdash report --save" and by dashboard searches.`,
}

// --- list subcommand ---

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReportsQuery(cmd, "")
	},
}

// --- search subcommand ---

var reportsSearchCmd = &cobra.Command{
	Use:   "search <text...>",
	Short: "Full-text search over saved reports",
	Long: `Search matches report titles, queries, summaries, KPI lines and section
text. Every term must appear; results are ranked by relevance.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReportsQuery(cmd, strings.Join(args, " "))
	},
}

func runReportsQuery(cmd *cobra.Command, text string) error {
	opts, err := queryOptsFromFlags(cmd, text)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.List(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatList(os.Stdout, results, jsonOutput)
}

func formatList(w io.Writer, results []reports.Summary, jsonOutput bool) error {
	if jsonOutput {
		if results == nil {
			results = []reports.Summary{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No reports found.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-16s  %-9s  %-11s  %s\n", "ID", "Created", "Period", "Case", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range results {
		title := r.Title
		if len([]rune(title)) > 40 {
			title = string([]rune(title)[:37]) + "..."
		}
		fmt.Fprintf(w, "%-36s  %-16s  %-9s  %-11s  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Period, r.Case, title)
	}
	fmt.Fprintf(w, "\n%d reports\n", len(results))
	return nil
}

// --- show subcommand ---

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rep, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		printReport(os.Stdout, rep)
		return nil
	},
}

// --- export subcommand ---

var reportsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved reports to YAML or JSON",
	Long: `Export writes saved reports (or a filtered subset) to the store directory
as export.yaml or export.json, or to --out. Use "-" for standard output.`,
	Args: cobra.NoArgs,
	RunE: runReportsExport,
}

func runReportsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")
	text, _ := cmd.Flags().GetString("query")

	f := reports.Format(format)
	if f != reports.FormatYAML && f != reports.FormatJSON {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	opts, err := queryOptsFromFlags(cmd, text)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if out == "-" {
		return store.Export(context.Background(), os.Stdout, f, opts)
	}
	if out == "" {
		out = filepath.Join(store.Dir(), "export."+format)
	}

	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := store.Export(context.Background(), file, f, opts); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", out)
	return nil
}

// --- delete subcommand ---

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted: %s\n", args[0])
		return nil
	},
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, text string) (reports.QueryOptions, error) {
	topic, _ := cmd.Flags().GetString("topic")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := reports.QueryOptions{
		Query:      text,
		Topic:      types.Topic(topic),
		MaxResults: limit,
	}
	if opts.Topic != "" && !opts.Topic.Valid() {
		return reports.QueryOptions{}, fmt.Errorf("unknown topic %q", topic)
	}
	return opts, nil
}

func init() {
	for _, c := range []*cobra.Command{reportsListCmd, reportsSearchCmd, reportsExportCmd} {
		c.Flags().String("topic", "", "filter by topic, e.g. oral-health")
		c.Flags().Int("limit", 0, "maximum results (0 = use default)")
	}
	for _, c := range []*cobra.Command{reportsListCmd, reportsSearchCmd, reportsShowCmd} {
		c.Flags().Bool("json", false, "output as JSON")
	}
	reportsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	reportsExportCmd.Flags().String("out", "", "output file (default: <store-dir>/export.<format>, - for stdout)")
	reportsExportCmd.Flags().String("query", "", "full-text filter for a partial export")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsSearchCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsExportCmd)
	reportsCmd.AddCommand(reportsDeleteCmd)

	rootCmd.AddCommand(reportsCmd)
}
