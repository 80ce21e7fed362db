// Package scanner turns a directory of downloaded files into movie
// releases. Files are grouped by a normalized identifier, classified into
// roles, described by technical metadata and tied to a movie identity.
package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/Nomadcxx/releasescan/internal/classify"
	"github.com/Nomadcxx/releasescan/internal/logging"
	"github.com/Nomadcxx/releasescan/internal/naming"
)

// Config holds the thresholds a Scanner works with.
type Config struct {
	Sizes       classify.Sizes
	GracePeriod time.Duration

	// While the host runs more than MaxActiveTasks tasks, reporting a found
	// release waits in PollInterval steps for at most MaxWait.
	MaxActiveTasks int
	PollInterval   time.Duration
	MaxWait        time.Duration

	StatWorkers    int
	FollowSymlinks bool
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		Sizes:          classify.DefaultSizes(),
		GracePeriod:    2 * time.Minute,
		MaxActiveTasks: 100,
		PollInterval:   time.Second,
		MaxWait:        5 * time.Minute,
		StatWorkers:    8,
		FollowSymlinks: true,
	}
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithFs scans the given filesystem instead of the OS one.
func WithFs(fs afero.Fs) Option {
	return func(s *Scanner) {
		s.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scanner) {
		s.logger = l
	}
}

// WithClock overrides the time source used by the still-changing check.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

// Scanner scans directories for releases. It holds no per-scan state and is
// safe for concurrent use.
type Scanner struct {
	cfg    Config
	d      Delegates
	tables *classify.Tables
	fs     afero.Fs
	logger *logging.Logger
	now    func() time.Time
}

// New creates a scanner.
func New(cfg Config, d Delegates, opts ...Option) *Scanner {
	if cfg.StatWorkers <= 0 {
		cfg.StatWorkers = 1
	}
	s := &Scanner{
		cfg:    cfg,
		d:      d,
		tables: classify.NewTables(cfg.Sizes),
		fs:     afero.NewOsFs(),
		logger: logging.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tables returns the classification tables the scanner uses.
func (s *Scanner) Tables() *classify.Tables {
	return s.tables
}

// Scan groups the files under req.Root into releases. A missing root is the
// only error; cancellation or host shutdown returns what was finalized so
// far.
func (s *Scanner) Scan(ctx context.Context, req Request) (*Result, error) {
	result := &Result{Releases: make(map[string]*Release)}

	root := filepath.Clean(req.Root)
	info, err := s.fs.Stat(root)
	if err != nil || !info.IsDir() {
		s.logger.Error("scanner", "Scan root does not exist", nil, logging.F("root", root))
		return result, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	start := time.Now()
	checkFileDate := req.CheckFileDate

	var files []string
	if len(req.Files) == 0 {
		files = s.walk(ctx, root)
	} else {
		checkFileDate = false
		for _, f := range req.Files {
			if !filepath.IsAbs(f) {
				f = filepath.Join(root, f)
			}
			files = append(files, filepath.Clean(f))
		}
		sort.Strings(files)
	}
	if s.stopped(ctx) {
		result.Partial = true
		return result, nil
	}

	g := s.group(ctx, root, files)
	result.Leftovers = g.remaining()
	if len(result.Leftovers) > 0 {
		s.logger.Debug("scanner", "Files left without a release", logging.F("count", len(result.Leftovers)))
	}

	var valid []*Release
	for _, id := range g.identifiers() {
		if s.stopped(ctx) {
			result.Partial = true
			return result, nil
		}
		r := g.releases[id]
		if r.Ignored && !req.ReturnIgnored {
			s.logger.Debug("scanner", "Release marked ignored", logging.F("release", id))
			continue
		}
		if checkFileDate && s.stillChanging(r) {
			s.logger.Info("scanner", "Release files still changing, skipping", logging.F("release", id))
			continue
		}
		if !req.NewerThan.IsZero() && !s.touchedSince(r, req.NewerThan) {
			continue
		}
		valid = append(valid, r)
	}

	download := req.Download
	if download != nil && len(valid) > 1 {
		s.logger.Info("scanner", "Download matched several releases, ignoring its details",
			logging.F("releases", len(valid)))
		download = nil
	}
	if download != nil && len(valid) == 0 {
		s.logger.Info("scanner", "No files found for download", logging.F("root", root))
	}

	total := len(valid)
	for i, r := range valid {
		if s.stopped(ctx) {
			result.Partial = true
			break
		}
		if !s.finalize(ctx, r, root, download, req.Simple) {
			total--
			continue
		}
		result.Releases[r.Identifier] = r

		if req.OnFound != nil {
			s.waitForCapacity(ctx)
			req.OnFound(r, len(valid)-i-1, total)
		}
	}

	s.logger.Info("scanner", "Scan complete",
		logging.F("root", root),
		logging.F("releases", len(result.Releases)),
		logging.F("leftovers", len(result.Leftovers)),
		logging.F("duration_ms", time.Since(start).Milliseconds()))

	return result, nil
}

// group seeds releases from movie-sized and disc files, then attaches the
// remaining files in three passes.
func (s *Scanner) group(ctx context.Context, root string, files []string) *grouper {
	g := newGrouper(root)

	for _, e := range s.statFiles(ctx, files) {
		if !e.ok {
			continue
		}
		if classify.IsSampleFile(e.path) {
			g.leave(e.path)
			continue
		}
		if !e.keep {
			continue
		}
		if !e.dvd && !s.tables.HasMovieSize(e.size) {
			g.leave(e.path)
			continue
		}

		id := naming.Identifier(e.path, root, e.dvd)
		identifiers := []string{id}
		if q := s.seedQuality(e); q != "" {
			identifiers = []string{id + " " + q, id}
		}
		g.seed(identifiers, e.dvd, e.path)
	}

	g.sameBasename()
	g.byIdentifier()
	g.byFolder()
	g.markIgnored()
	return g
}

func (s *Scanner) seedQuality(e fileEntry) string {
	if e.dvd {
		return "dvdr"
	}
	if s.d.Quality == nil {
		return ""
	}
	if q := s.d.Quality.Guess([]string{e.path}, float64(e.size)/megabyte, nil); q != nil {
		return q.Identifier
	}
	return ""
}

// finalize assigns roles and fills in metadata and identity. Releases that
// end up without a movie file are dropped.
func (s *Scanner) finalize(ctx context.Context, r *Release, root string, download *Download, simple bool) bool {
	paths := append([]string(nil), r.unsorted...)
	sort.Strings(paths)

	sizes := make(map[string]int64, len(paths))
	entries := make([]classify.File, 0, len(paths))
	for _, e := range s.statFiles(ctx, paths) {
		if !e.ok {
			continue
		}
		sizes[e.path] = e.size
		entries = append(entries, classify.File{Path: e.path, Size: e.size})
	}

	b := s.tables.Partition(entries, r.DVD)
	if len(b.Movie) == 0 {
		s.logger.Error("scanner", "Release has no movie files", nil, logging.F("release", r.Identifier))
		return false
	}
	r.Movie = b.Movie
	r.MovieExtra = b.MovieExtra
	r.Subtitle = b.Subtitle
	r.SubtitleExtra = b.SubtitleExtra
	r.NFO = b.NFO
	r.Trailer = b.Trailer
	r.Leftover = b.Leftover
	r.unsorted = nil

	for _, path := range r.Leftover {
		switch {
		case s.tables.IsBackdrop(path, sizes[path]):
			r.Images.Backdrop = append(r.Images.Backdrop, path)
		case s.tables.IsImage(path):
			r.Images.Other = append(r.Images.Other, path)
		}
	}

	r.ParentDir = filepath.Dir(r.Movie[0])
	r.DirName = s.dirName(root, r.ParentDir)

	r.Meta = s.metadata(ctx, r, root, sizes, download)
	if !simple {
		r.SubtitleLanguages = s.subtitleLanguages(r)
	}
	r.Media = s.identify(ctx, r, download)
	return true
}

var idxLanguage = regexp.MustCompile(`\nid: (\w+)`)

// subtitleLanguages merges detector results with the languages declared in
// idx files that have a matching sub file.
func (s *Scanner) subtitleLanguages(r *Release) map[string][]string {
	langs := make(map[string][]string)

	if s.d.Subtitles != nil && !r.DVD {
		video := make(map[string]bool, len(r.Movie))
		for _, p := range r.Movie {
			video[p] = true
		}
		for path, found := range s.d.Subtitles.DetectSubtitles(r.Movie) {
			if len(found) > 0 && !video[path] {
				langs[path] = found
			}
		}
	}

	for _, idx := range r.SubtitleExtra {
		data, err := afero.ReadFile(s.fs, idx)
		if err != nil {
			s.logger.Debug("scanner", "Cannot read idx file", logging.F("path", idx))
			continue
		}
		var found []string
		for _, m := range idxLanguage.FindAllSubmatch(data, -1) {
			found = append(found, string(m[1]))
		}
		sub := idx[:len(idx)-len(filepath.Ext(idx))] + ".sub"
		if len(found) == 0 {
			continue
		}
		if exists, _ := afero.Exists(s.fs, sub); exists {
			langs[sub] = found
		}
	}
	return langs
}

func (s *Scanner) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return s.d.Host != nil && s.d.Host.ShuttingDown()
}

// waitForCapacity blocks while the host is overloaded.
func (s *Scanner) waitForCapacity(ctx context.Context) {
	if s.d.Host == nil {
		return
	}
	deadline := time.Now().Add(s.cfg.MaxWait)
	for s.d.Host.ActiveTasks() > s.cfg.MaxActiveTasks {
		if s.stopped(ctx) {
			return
		}
		if s.cfg.MaxWait > 0 && !time.Now().Before(deadline) {
			s.logger.Warn("scanner", "Host still busy, continuing anyway",
				logging.F("active_tasks", s.d.Host.ActiveTasks()))
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.PollInterval):
		}
	}
}
