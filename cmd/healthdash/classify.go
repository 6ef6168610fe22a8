// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/healthdash/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <query...>",
	Short: "Show how a query is classified",
	Long: `Classify prints the topic, year range and correlation pair derived from a
free-text query, without fetching data or building a report.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Bool("json", false, "output the classification as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c := classify.New(classify.WithDefaultYear(cfg.Classifier.DefaultYear)).Classify(strings.Join(args, " "))

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	fmt.Printf("topic:       %s (%s)\n", c.Topic, c.Topic.DisplayName())
	fmt.Printf("period:      %s\n", c.YearRange.Label())
	if c.Pair != "" {
		fmt.Printf("pair:        %s\n", c.Pair)
	}
	fmt.Printf("correlation: %t\n", c.IsCorrelationQuery)
	return nil
}
