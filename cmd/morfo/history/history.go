// Package historycmder provides the history command for reviewing past
// analyses from the local SQLite database.
package historycmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morfolab/morfo/pkg/cliui"
	"github.com/morfolab/morfo/pkg/config"
	"github.com/morfolab/morfo/pkg/history"
	"github.com/morfolab/morfo/pkg/utils"
)

const historyLongDesc string = `List recent analyses.

Every completed analysis is recorded in a local SQLite database
(history.db in the .morfo/ directory by default; override with the
history.sqlite_path config key or the --sqlite flag).

Examples:
  morfo history
  morfo history --limit 50`

const historyShortDesc string = "List recent analyses"

func NewHistoryCmd() *cobra.Command {
	var limit int
	var sqlitePath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runHistory(cmd.Context(), configDir, sqlitePath, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of analyses to list")
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &sqlitePath)

	return cmd
}

func runHistory(ctx context.Context, configDir, sqlitePath string, limit int) error {
	path, err := resolvePath(configDir, sqlitePath)
	if err != nil {
		return err
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	records, err := store.List(ctx, limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Printf("\n  %s No analyses recorded yet.\n", cliui.DimStyle.Render("●"))
		fmt.Printf("  Run 'morfo analyze <word>' to get started.\n\n")
		return nil
	}

	fmt.Printf("\n  %s\n\n", cliui.HeaderStyle.Render("Recent analyses"))
	for _, r := range records {
		fmt.Printf("  %s  %s %s\n",
			cliui.DimStyle.Render(r.CreatedAt.Local().Format("2006-01-02 15:04")),
			cliui.NameStyle.Render(utils.Truncate(r.Query, 40)),
			cliui.DimStyle.Render(fmt.Sprintf("(%d entries, %s)", r.Entries, cliui.FormatDuration(r.Duration))),
		)
	}
	fmt.Println()

	return nil
}

// resolvePath picks the history database path: flag, then config, then the
// default location inside the .morfo/ directory.
func resolvePath(configDir, flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}

	if cfg.History.SQLitePath != "" {
		return cfg.History.SQLitePath, nil
	}

	return history.DefaultPath(configDir)
}
