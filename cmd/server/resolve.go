package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dennisdiepolder/availability/internal/aggregator"
	"github.com/dennisdiepolder/availability/internal/bindings"
	"github.com/dennisdiepolder/availability/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newResolveCmd(rosterFile *string) *cobra.Command {
	var tablesFile, at string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a saved set of binding tables and print the agents as JSON",
		Long: `Reads a JSON object mapping binding names (schedule, status, ooo, chats,
legacy) to column tables, runs one refresh at the given time and prints the
resolved agents.`,
		Example: `  availability resolve --tables push.json --at 2026-07-01T14:00:00Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			static, err := loadStatic(*rosterFile)
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				now, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q, want RFC3339: %w", at, err)
				}
			}

			store, err := readTables(tablesFile)
			if err != nil {
				return err
			}

			agg := aggregator.NewAggregator(aggregator.Options{
				Static:   static,
				Bindings: store,
				DemoMode: config.DemoOff,
			}, zerolog.Nop())

			_, agents, err := agg.Build(now)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(agents)
		},
	}
	cmd.Flags().StringVar(&tablesFile, "tables", "", "JSON file of binding tables")
	cmd.Flags().StringVar(&at, "at", "", "refresh time in RFC3339 (default now)")
	cmd.MarkFlagRequired("tables")
	return cmd
}

func readTables(path string) (*bindings.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables: %w", err)
	}

	var raw map[string]bindings.Table
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse tables %s: %w", path, err)
	}

	store := bindings.NewStore()
	for name, table := range raw {
		kind, err := bindings.ParseKind(name)
		if err != nil {
			return nil, err
		}
		store.Put(kind, table)
	}
	return store, nil
}
