package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/releasescan/internal/app"
	"github.com/Nomadcxx/releasescan/internal/logging"
	"github.com/Nomadcxx/releasescan/internal/naming"
	"github.com/Nomadcxx/releasescan/internal/scanner"
	"github.com/Nomadcxx/releasescan/internal/ui"
)

type scanOptions struct {
	simple    bool
	newerThan time.Duration
	ignored   bool
	noDate    bool
	imdb      string
	quality   string
	is3D      bool
	jsonOut   bool
	save      bool
	offline   bool
}

func newScanCmd() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan <root> [files...]",
		Short: "Scan a folder for movie releases",
		Long: `Scan a download folder and report the movie releases in it.

When files are given, only those files are grouped; relative paths are
taken relative to the root.

Examples:
  releasescan scan /downloads/movies
  releasescan scan /downloads/movies --newer-than 24h --json
  releasescan scan /downloads/complete Heat.1995/heat.mkv --imdb tt0113277
  releasescan scan /downloads/movies --save`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.simple, "simple", false, "skip subtitle language detection")
	cmd.Flags().DurationVar(&opts.newerThan, "newer-than", 0, "only releases with a file touched within this window")
	cmd.Flags().BoolVar(&opts.ignored, "ignored", false, "include releases marked ignored")
	cmd.Flags().BoolVar(&opts.noDate, "no-date-check", false, "do not skip releases still being written")
	cmd.Flags().StringVar(&opts.imdb, "imdb", "", "IMDb id of a known download")
	cmd.Flags().StringVar(&opts.quality, "quality", "", "quality identifier of a known download")
	cmd.Flags().BoolVar(&opts.is3D, "3d", false, "known download is 3D")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print releases as JSON")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store releases and scan history in the database")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "do not query Radarr")

	return cmd
}

func runScan(cmd *cobra.Command, args []string, opts scanOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	a, err := app.New(cfg, logger, app.Options{
		Database: opts.save,
		Journal:  true,
		Offline:  opts.offline,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.CheckRadarr(ctx); err != nil {
		logger.Warn("scan", "Radarr unreachable, identities limited to local sources", logging.F("error", err))
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	req := scanner.Request{
		Root:          root,
		Files:         args[1:],
		Simple:        opts.simple,
		ReturnIgnored: opts.ignored,
		CheckFileDate: !opts.noDate,
	}
	if opts.newerThan > 0 {
		req.NewerThan = time.Now().Add(-opts.newerThan)
	}
	if opts.imdb != "" || opts.quality != "" || opts.is3D {
		req.Download = &scanner.Download{IMDbID: opts.imdb, Quality: opts.quality, Is3D: opts.is3D}
	}

	var bar *ui.ProgressBar
	if !opts.jsonOut && ui.IsTerminal() {
		bar = ui.NewProgressBar(cmd.ErrOrStderr(), "Releases")
	}
	req.OnFound = a.Journal(root, func(r *scanner.Release, remaining, total int) {
		if bar != nil {
			bar.Update(total-remaining, total)
		}
	})

	started := time.Now()
	res, scanErr := a.Scanner.Scan(ctx, req)
	if bar != nil {
		bar.Finish()
	}
	if scanErr == nil && res.Partial {
		scanErr = scanner.ErrInterrupted
	}

	if opts.save && !errors.Is(scanErr, scanner.ErrInterrupted) {
		if err := a.RecordScan(root, started, time.Now(), res, scanErr); err != nil {
			logger.Warn("scan", "Unable to record scan", logging.F("error", err))
		}
	}
	if scanErr != nil {
		return scanErr
	}
	if opts.save {
		if err := a.Save(root, res); err != nil {
			return fmt.Errorf("saving releases: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		return writeJSON(out, root, res)
	}
	printResult(out, res, time.Since(started))
	return nil
}

type releaseJSON struct {
	Identifier        string              `json:"identifier"`
	Identifiers       []string            `json:"identifiers"`
	DVD               bool                `json:"dvd,omitempty"`
	Ignored           bool                `json:"ignored,omitempty"`
	IMDbID            string              `json:"imdb_id,omitempty"`
	Title             string              `json:"title,omitempty"`
	Year              int                 `json:"year,omitempty"`
	Quality           string              `json:"quality,omitempty"`
	Is3D              bool                `json:"is_3d,omitempty"`
	QualityType       string              `json:"quality_type,omitempty"`
	VideoCodec        string              `json:"video_codec,omitempty"`
	AudioCodec        string              `json:"audio_codec,omitempty"`
	AudioChannels     float64             `json:"audio_channels,omitempty"`
	Resolution        string              `json:"resolution,omitempty"`
	Aspect            float64             `json:"aspect,omitempty"`
	SizeMB            float64             `json:"size_mb"`
	Group             string              `json:"group,omitempty"`
	Source            string              `json:"source,omitempty"`
	ThreeDType        string              `json:"3d_type,omitempty"`
	ParentDir         string              `json:"parent_dir,omitempty"`
	DirName           string              `json:"dir_name,omitempty"`
	Files             map[string][]string `json:"files"`
	Backdrops         []string            `json:"backdrops,omitempty"`
	SubtitleLanguages map[string][]string `json:"subtitle_languages,omitempty"`
}

type resultJSON struct {
	Root      string        `json:"root"`
	Releases  []releaseJSON `json:"releases"`
	Leftovers []string      `json:"leftovers"`
}

func toJSON(r *scanner.Release) releaseJSON {
	out := releaseJSON{
		Identifier:        r.Identifier,
		Identifiers:       r.Identifiers,
		DVD:               r.DVD,
		Ignored:           r.Ignored,
		IMDbID:            r.Media.IMDbID,
		QualityType:       r.Meta.QualityType,
		VideoCodec:        r.Meta.VideoCodec,
		AudioCodec:        r.Meta.AudioCodec,
		AudioChannels:     r.Meta.AudioChannels,
		Aspect:            r.Meta.Aspect,
		SizeMB:            r.Meta.SizeMB,
		Group:             r.Meta.Group,
		Source:            r.Meta.Source,
		ThreeDType:        r.Meta.ThreeDType,
		ParentDir:         r.ParentDir,
		DirName:           r.DirName,
		Backdrops:         r.Images.Backdrop,
		SubtitleLanguages: r.SubtitleLanguages,
		Files:             map[string][]string{},
	}
	if r.Meta.Width > 0 {
		out.Resolution = fmt.Sprintf("%dx%d", r.Meta.Width, r.Meta.Height)
	}
	if q := r.Meta.Quality; q != nil {
		out.Quality, out.Is3D = q.Identifier, q.Is3D
	}
	if info := r.Media.Info; info != nil {
		out.Title, out.Year = info.Title, info.Year
	}
	for role, files := range map[string][]string{
		"movie":          r.Movie,
		"movie_extra":    r.MovieExtra,
		"subtitle":       r.Subtitle,
		"subtitle_extra": r.SubtitleExtra,
		"nfo":            r.NFO,
		"trailer":        r.Trailer,
		"leftover":       r.Leftover,
	} {
		if len(files) > 0 {
			out.Files[role] = files
		}
	}
	return out
}

func sortedReleases(res *scanner.Result) []*scanner.Release {
	releases := make([]*scanner.Release, 0, len(res.Releases))
	for _, r := range res.Releases {
		releases = append(releases, r)
	}
	sort.Slice(releases, func(i, j int) bool { return releases[i].Identifier < releases[j].Identifier })
	return releases
}

func writeJSON(w io.Writer, root string, res *scanner.Result) error {
	out := resultJSON{Root: root, Releases: []releaseJSON{}, Leftovers: res.Leftovers}
	if out.Leftovers == nil {
		out.Leftovers = []string{}
	}
	for _, r := range sortedReleases(res) {
		out.Releases = append(out.Releases, toJSON(r))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// displayTitle is the resolved title, else a guess from the folder and
// first movie file.
func displayTitle(r *scanner.Release) string {
	if info := r.Media.Info; info != nil && info.Title != "" {
		if info.Year > 0 {
			return fmt.Sprintf("%s (%d)", info.Title, info.Year)
		}
		return info.Title
	}
	if len(r.Movie) == 0 {
		return r.Identifier
	}
	guess := naming.ReleaseNameYear(naming.RLSGuesser{}, r.DirName, r.Movie[0])
	if guess.Name == "" {
		return r.Identifier
	}
	if guess.Year > 0 {
		return fmt.Sprintf("%s (%d)?", guess.Name, guess.Year)
	}
	return guess.Name + "?"
}

func printResult(w io.Writer, res *scanner.Result, took time.Duration) {
	releases := sortedReleases(res)
	if len(releases) == 0 {
		ui.InfoMsg(w, "No releases found")
	} else {
		table := ui.NewTable("Release", "Movie", "IMDb", "Quality", "Size", "Files")
		for _, r := range releases {
			imdb := r.Media.IMDbID
			if imdb == "" {
				imdb = ui.Warning("unknown")
			}
			q := "-"
			if r.Meta.Quality != nil {
				q = r.Meta.Quality.Label
			}
			if r.Ignored {
				q += " " + ui.Dim("(ignored)")
			}
			table.AddRow(r.Identifier, ui.Title(displayTitle(r)), imdb, q, ui.FormatMB(r.Meta.SizeMB), roleSummary(r))
		}
		table.Render(w)
	}

	if len(res.Leftovers) > 0 {
		ui.Section(w, "Leftovers")
		for _, f := range res.Leftovers {
			fmt.Fprintln(w, "  "+ui.Path(f))
		}
	}

	fmt.Fprintln(w)
	ui.SuccessMsg(w, "%s releases, %s leftovers in %s",
		ui.FormatCount(len(releases)), ui.FormatCount(len(res.Leftovers)), ui.FormatDuration(took))
}

func roleSummary(r *scanner.Release) string {
	var parts []string
	for _, role := range []struct {
		name  string
		files []string
	}{
		{"movie", r.Movie},
		{"movie_extra", r.MovieExtra},
		{"subtitle", r.Subtitle},
		{"subtitle_extra", r.SubtitleExtra},
		{"nfo", r.NFO},
		{"trailer", r.Trailer},
		{"leftover", r.Leftover},
	} {
		if n := len(role.files); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, ui.Role(role.name)))
		}
	}
	return strings.Join(parts, ", ")
}
