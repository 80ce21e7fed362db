package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk_ListsRegularFilesSorted(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/media/b/movie.mkv", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/media/a.nfo", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/media/b/c/d/deep.srt", []byte("x"), 0o644))
	require.NoError(t, fs.MkdirAll("/media/empty", 0o755))

	s := newTestScanner(Delegates{}, WithFs(fs))
	files := s.walk(context.Background(), "/media")

	assert.Equal(t, []string{
		filepath.FromSlash("/media/a.nfo"),
		filepath.FromSlash("/media/b/c/d/deep.srt"),
		filepath.FromSlash("/media/b/movie.mkv"),
	}, files)
}

func TestWalk_StopsOnCancel(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/media/movie.mkv", []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestScanner(Delegates{}, WithFs(fs))
	assert.Empty(t, s.walk(ctx, "/media"))
}

func TestWalk_SkipsSymlinksWhenDisabled(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()
	touch(t, filepath.Join(target, "linked.mkv"), 1)
	touch(t, filepath.Join(root, "own.mkv"), 1)
	if err := os.Symlink(target, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	cfg := DefaultConfig()
	cfg.FollowSymlinks = false
	s := New(cfg, Delegates{})
	assert.Equal(t, []string{filepath.Join(root, "own.mkv")}, s.walk(context.Background(), root))

	s = New(DefaultConfig(), Delegates{})
	assert.Len(t, s.walk(context.Background(), root), 2)
}

func TestStatFiles_KeepsOrderAndFlagsMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/m/a.mkv", []byte("abc"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/m/VIDEO_TS/VTS_01_1.VOB", []byte("x"), 0o644))

	s := newTestScanner(Delegates{}, WithFs(fs))
	entries := s.statFiles(context.Background(), []string{"/m/a.mkv", "/m/missing.mkv", "/m/VIDEO_TS/VTS_01_1.VOB"})

	require.Len(t, entries, 3)
	assert.True(t, entries[0].ok)
	assert.Equal(t, int64(3), entries[0].size)
	assert.False(t, entries[1].ok)
	assert.True(t, entries[2].dvd)
}
