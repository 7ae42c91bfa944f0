package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-assess/internal/duckdb"
	"github.com/inodb/vibe-assess/internal/output"
	"github.com/inodb/vibe-assess/internal/score"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect reports stored with run --db",
		Example: `  vibe-assess db runs --db runs.duckdb
  vibe-assess db show --db runs.duckdb --run-id 2b1f...
  vibe-assess db show --db runs.duckdb --panel msi.bed
  vibe-assess db clear --db runs.duckdb`,
		Args: cobra.NoArgs,
	}
	cmd.PersistentFlags().String("db", "", "DuckDB database written by run --db (required)")

	cmd.AddCommand(newDBRunsCmd())
	cmd.AddCommand(newDBShowCmd())
	cmd.AddCommand(newDBClearCmd())

	return cmd
}

func newDBRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List stored run IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs()
			if err != nil {
				return err
			}
			for _, id := range runs {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newDBShowCmd() *cobra.Command {
	var runID, panelName string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print stored rows for one run or one panel as a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (runID == "") == (panelName == "") {
				return &usageError{msg: "exactly one of --run-id or --panel is required"}
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			var rows []score.Row
			if panelName != "" {
				rows, err = store.RowsForPanel(panelName)
			} else {
				rows, err = store.Rows(runID)
			}
			if err != nil {
				return err
			}
			return output.WriteAll(output.NewTabWriter(cmd.OutOrStdout()), rows)
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "", "Run to print")
	cmd.Flags().StringVar(&panelName, "panel", "", "Panel to print across all runs")

	return cmd
}

func newDBClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(); err != nil {
				return fmt.Errorf("clear store: %w", err)
			}
			path, _ := cmd.Flags().GetString("db")
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", path)
			return nil
		},
	}
}

func openStore(cmd *cobra.Command) (*duckdb.Store, error) {
	path, err := cmd.Flags().GetString("db")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, &usageError{msg: "--db is required"}
	}
	return duckdb.Open(path)
}
