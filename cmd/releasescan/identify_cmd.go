package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/releasescan/internal/app"
	"github.com/Nomadcxx/releasescan/internal/classify"
	"github.com/Nomadcxx/releasescan/internal/naming"
	"github.com/Nomadcxx/releasescan/internal/nfo"
	"github.com/Nomadcxx/releasescan/internal/ui"
)

type identification struct {
	Path       string `json:"path"`
	Identifier string `json:"identifier"`
	Part       int    `json:"part"`
	Year       int    `json:"year,omitempty"`
	Title      string `json:"title,omitempty"`
	TitleYear  int    `json:"title_year,omitempty"`
	IMDbID     string `json:"imdb_id,omitempty"`
	Role       string `json:"role,omitempty"`
	Sample     bool   `json:"sample,omitempty"`
}

func newIdentifyCmd() *cobra.Command {
	var root string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "identify <path>...",
		Short: "Show how file names are read",
		Long: `Print the grouping identifier, part number, year and guessed title for
each path. Paths that exist on disk are also classified by role.

Examples:
  releasescan identify "Iron.Man.2008.720p.BluRay.x264-GRP.cd1.mkv"
  releasescan identify --root /downloads /downloads/Heat.1995/heat.mkv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tables := classify.NewTables(app.ScannerConfig(cfg).Sizes)

			var results []identification
			for _, path := range args {
				results = append(results, identify(tables, root, path))
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			table := ui.NewTable("Path", "Identifier", "Part", "Year", "Title", "IMDb", "Role")
			for _, r := range results {
				year, title := "-", "-"
				if r.Year > 0 {
					year = strconv.Itoa(r.Year)
				}
				if r.Title != "" {
					title = r.Title
					if r.TitleYear > 0 {
						title = fmt.Sprintf("%s (%d)", r.Title, r.TitleYear)
					}
				}
				role := ui.Role(r.Role)
				if r.Sample {
					role += " " + ui.Dim("(sample)")
				}
				table.AddRow(filepath.Base(r.Path), r.Identifier, strconv.Itoa(r.Part), year, title, r.IMDbID, role)
			}
			table.Render(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "scan root the paths are relative to")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print as JSON")

	return cmd
}

func identify(tables *classify.Tables, root, path string) identification {
	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}

	id := identification{
		Path:       path,
		Identifier: naming.Identifier(path, root, false),
		Part:       naming.PartNumber(strings.ToLower(filepath.Base(path))),
		Year:       naming.FindYearInt(rel),
		Sample:     classify.IsSampleFile(path),
	}

	guess := naming.ReleaseNameYear(naming.RLSGuesser{}, filepath.Base(filepath.Dir(rel)), filepath.Base(path))
	id.Title, id.TitleYear = guess.Name, guess.Year

	if imdb, ok := naming.CPTagID(path); ok {
		id.IMDbID = imdb
	} else if imdb, ok := (nfo.Finder{}).IMDbInName(path); ok {
		id.IMDbID = imdb
	}

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		f := classify.File{Path: path, Size: info.Size()}
		id.Role = tables.RoleOf(f, tables.IsDVDFile(path)).String()
	}
	return id
}
