package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/mapper"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		today      string
		withFields bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <query>",
		Short: "Print the structured analysis of a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []analyzer.Option
			if today != "" {
				day, err := time.Parse("2006-01-02", today)
				if err != nil {
					return fmt.Errorf("invalid --today %q: %w", today, err)
				}
				opts = append(opts, analyzer.WithClock(func() time.Time { return day }))
			}

			query := []rune(strings.Join(args, " "))
			if limit := root.cfg.Assistant.MaxQueryRunes; len(query) > limit {
				query = query[:limit]
			}

			analysis := analyzer.NewAnalyzer(opts...).Analyze(string(query))

			var out any = analysis
			if withFields {
				out = struct {
					analyzer.QueryAnalysis
					Fields mapper.FieldMapping `json:"fields"`
				}{analysis, mapper.NewMapper().Map(analysis.Domain, string(query))}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "reference date for explicit dates (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&withFields, "fields", false, "include the semantic field mapping")
	return cmd
}
