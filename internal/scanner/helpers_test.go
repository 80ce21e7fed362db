package scanner

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/releasescan/internal/quality"
)

const mb = 1024 * 1024

// touch creates a sparse file of sizeMB megabytes with an old modification
// time so the still-changing check lets it through.
func touch(t *testing.T, path string, sizeMB int64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(sizeMB*mb))
	require.NoError(t, f.Close())
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
}

func writeText(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
}

var imdbPattern = regexp.MustCompile(`tt\d{7,}`)

type stubIMDb struct{}

func (stubIMDb) IMDbInContent(data []byte) (string, bool) {
	id := imdbPattern.FindString(string(data))
	return id, id != ""
}

func (stubIMDb) IMDbInName(name string) (string, bool) {
	id := imdbPattern.FindString(filepath.Base(name))
	return id, id != ""
}

type stubSearch struct {
	mu      sync.Mutex
	queries []string
	results map[string][]MovieInfo
}

func (s *stubSearch) SearchMovies(_ context.Context, query string, _ int) ([]MovieInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.results[query], nil
}

type stubInfo struct{}

func (stubInfo) FetchMovieInfo(_ context.Context, imdbID string) (*MovieInfo, error) {
	return &MovieInfo{IMDbID: imdbID, Title: "fetched"}, nil
}

type stubStore map[string]*MovieInfo

func (s stubStore) LookupStoredMedia(imdbID string) (*MovieInfo, error) {
	return s[imdbID], nil
}

type stubContainer struct {
	meta *ContainerMeta
	err  error
}

func (c stubContainer) ReadContainer(context.Context, string) (*ContainerMeta, error) {
	return c.meta, c.err
}

type stubHost struct {
	shutting atomic.Bool
	active   atomic.Int64
}

func (h *stubHost) ShuttingDown() bool { return h.shutting.Load() }
func (h *stubHost) ActiveTasks() int   { return int(h.active.Load()) }

func testDelegates() Delegates {
	return Delegates{
		Quality: quality.Guesser{},
		IMDb:    stubIMDb{},
		Info:    stubInfo{},
	}
}

func newTestScanner(d Delegates, opts ...Option) *Scanner {
	return New(DefaultConfig(), d, opts...)
}

func identifiers(res *Result) []string {
	var out []string
	for id := range res.Releases {
		out = append(out, id)
	}
	return out
}
