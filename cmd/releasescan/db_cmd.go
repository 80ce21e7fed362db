package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/releasescan/internal/database"
	"github.com/Nomadcxx/releasescan/internal/ui"
)

func newDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "database",
		Aliases: []string{"db"},
		Short:   "Inspect the release database",
		Long:    `Commands for inspecting releases stored by 'releasescan scan --save' and 'releasescan watch'.`,
	}

	cmd.AddCommand(newDatabaseStatsCmd())
	cmd.AddCommand(newDatabaseReleasesCmd())
	cmd.AddCommand(newDatabasePathCmd())

	return cmd
}

func openDatabase() (*database.MediaDB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path := cfg.DatabasePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found at %s\n\nRun 'releasescan scan --save <root>' first", path)
	}
	db, err := database.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func newDatabaseStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := db.GetStats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := ui.NewTable("", "Count")
			table.AddRow("Movies", ui.FormatCount(stats.MoviesCount))
			table.AddRow("Releases", ui.FormatCount(stats.ReleasesCount))
			table.AddRow("Identified", ui.FormatCount(stats.IdentifiedCount))
			table.AddRow("Ignored", ui.FormatCount(stats.IgnoredCount))
			table.AddRow("Scans", ui.FormatCount(stats.ScansCount))
			table.Render(out)
			fmt.Fprintln(out, ui.Dim(db.Path()))
			return nil
		},
	}
}

func newDatabaseReleasesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "releases",
		Short: "List stored releases, most recently seen first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			releases, err := db.ListReleases(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(releases) == 0 {
				ui.InfoMsg(out, "No releases stored")
				return nil
			}

			table := ui.NewTable("Release", "IMDb", "Quality", "Size", "Files", "Last seen")
			for _, r := range releases {
				imdb := r.IMDbID
				if imdb == "" {
					imdb = ui.Warning("unknown")
				}
				table.AddRow(r.Identifier, imdb, r.Quality, ui.FormatMB(r.SizeMB), strconv.Itoa(len(r.Files)), ui.FormatAge(r.LastSeenAt))
			}
			table.Render(out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum releases to list (0 for all)")

	return cmd
}

func newDatabasePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show database file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.DatabasePath())
			return nil
		},
	}
}
