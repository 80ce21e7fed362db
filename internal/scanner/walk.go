package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/Nomadcxx/releasescan/internal/logging"
)

// fileEntry is one stat result, good for a single pass.
type fileEntry struct {
	path string
	size int64
	ok   bool
	dvd  bool
	keep bool
}

// walk lists every regular file under root. Directories are keyed by device
// and inode so symlink loops are entered once. Unreadable directories are
// logged and skipped. Cancellation returns what was found so far.
func (s *Scanner) walk(ctx context.Context, root string) []string {
	var files []string
	visited := make(map[fileID]bool)

	var visit func(dir string, info os.FileInfo)
	visit = func(dir string, info os.FileInfo) {
		id := idOf(dir, info)
		if visited[id] {
			s.logger.Debug("scanner", "Directory already visited", logging.F("path", dir))
			return
		}
		visited[id] = true

		entries, err := afero.ReadDir(s.fs, dir)
		if err != nil {
			s.logger.Warn("scanner", "Cannot read directory", logging.F("path", dir), logging.F("error", err.Error()))
			return
		}

		for _, entry := range entries {
			if s.stopped(ctx) {
				return
			}
			path := filepath.Join(dir, entry.Name())

			if entry.Mode()&os.ModeSymlink != 0 {
				if !s.cfg.FollowSymlinks {
					continue
				}
				target, err := s.fs.Stat(path)
				if err != nil {
					s.logger.Debug("scanner", "Broken symlink", logging.F("path", path))
					continue
				}
				entry = target
			}

			switch {
			case entry.IsDir():
				visit(path, entry)
			case entry.Mode().IsRegular():
				files = append(files, path)
			}
		}
	}

	info, err := s.fs.Stat(root)
	if err != nil {
		return nil
	}
	visit(root, info)

	sort.Strings(files)
	return files
}

// statFiles reads file metadata for every path with a bounded worker pool.
// Entries keep the input order; missing files come back with ok unset.
func (s *Scanner) statFiles(ctx context.Context, paths []string) []fileEntry {
	entries := make([]fileEntry, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.StatWorkers)
	for i, path := range paths {
		g.Go(func() error {
			if s.stopped(gctx) {
				return nil
			}
			info, err := s.fs.Stat(path)
			if err != nil || info.IsDir() {
				return nil
			}
			entries[i] = fileEntry{
				path: path,
				size: info.Size(),
				ok:   true,
				dvd:  s.tables.IsDVDFile(path),
				keep: s.tables.KeepFile(path),
			}
			return nil
		})
	}
	_ = g.Wait()

	return entries
}
