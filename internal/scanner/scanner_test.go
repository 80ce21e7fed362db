package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_SplitsOriginalAndSequel(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Iron.Man.2008.720p.mkv"), 900)
	writeText(t, filepath.Join(root, "Iron.Man.2008.720p.srt"), "1\n00:00:01,000 --> 00:00:02,000\nHi\n")
	touch(t, filepath.Join(root, "Iron.Man.2.2010.1080p.mkv"), 1200)

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{Root: root, CheckFileDate: true})
	require.NoError(t, err)

	require.Len(t, res.Releases, 2)
	first := res.Releases["iron man 2008"]
	sequel := res.Releases["iron man 2 2010"]
	require.NotNil(t, first)
	require.NotNil(t, sequel)

	assert.Equal(t, []string{filepath.Join(root, "Iron.Man.2008.720p.mkv")}, first.Movie)
	assert.Equal(t, []string{filepath.Join(root, "Iron.Man.2008.720p.srt")}, first.Subtitle)
	assert.Equal(t, []string{filepath.Join(root, "Iron.Man.2.2010.1080p.mkv")}, sequel.Movie)
	assert.Empty(t, sequel.Subtitle)
	assert.Empty(t, res.Leftovers)

	assert.Equal(t, []string{"iron man 2008 720p", "iron man 2008"}, first.Identifiers)
	assert.Equal(t, "720p", first.Meta.Quality.Identifier)
	assert.Equal(t, "HD", first.Meta.QualityType)
	assert.InDelta(t, 900.0, first.Meta.SizeMB, 0.001)
	assert.False(t, res.Partial)
}

func TestScan_RomanNumeralSequelKeepsItsSubtitle(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Rocky.mkv"), 900)
	touch(t, filepath.Join(root, "Rocky.II.mkv"), 900)
	writeText(t, filepath.Join(root, "Rocky.II.srt"), "1\n00:00:01,000 --> 00:00:02,000\nYo\n")

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)

	require.Len(t, res.Releases, 2)
	require.Contains(t, res.Releases, "rocky")
	require.Contains(t, res.Releases, "rocky ii")
	assert.Empty(t, res.Releases["rocky"].Subtitle)
	assert.Equal(t, []string{filepath.Join(root, "Rocky.II.srt")}, res.Releases["rocky ii"].Subtitle)
}

func TestScan_ReleaseFolderWithExtras(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Iron.Man.2008.720p.BluRay.x264-GRP")
	movie := filepath.Join(dir, "Iron.Man.2008.720p.BluRay.x264-GRP.mkv")
	touch(t, movie, 700)
	writeText(t, filepath.Join(dir, "Iron.Man.2008.720p.BluRay.x264-GRP.nfo"), "imdb: http://www.imdb.com/title/tt0371746/\n")
	writeText(t, filepath.Join(dir, "Iron.Man.2008.720p.BluRay.x264-GRP.en.srt"), "subs")
	touch(t, filepath.Join(dir, "Iron.Man.2008.720p.BluRay.x264-GRP-sample.mkv"), 50)
	touch(t, filepath.Join(dir, "fanart.jpg"), 1)
	writeText(t, filepath.Join(dir, "Thumbs.db"), "x")

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{Root: root, CheckFileDate: true})
	require.NoError(t, err)

	require.Len(t, res.Releases, 1)
	r := res.Releases["iron man 2008"]
	require.NotNil(t, r)

	assert.Equal(t, []string{movie}, r.Movie)
	assert.Len(t, r.NFO, 1)
	assert.Len(t, r.Subtitle, 1)
	assert.Contains(t, r.Leftover, filepath.Join(dir, "Iron.Man.2008.720p.BluRay.x264-GRP-sample.mkv"))
	assert.Equal(t, []string{filepath.Join(dir, "fanart.jpg")}, r.Images.Backdrop)
	assert.NotContains(t, r.Files(), filepath.Join(dir, "Thumbs.db"))

	assert.Equal(t, dir, r.ParentDir)
	assert.Equal(t, "Iron.Man.2008.720p.BluRay.x264-GRP", r.DirName)
	assert.Equal(t, "GRP", r.Meta.Group)
	assert.Equal(t, "BluRay", r.Meta.Source)
	assert.Equal(t, "x264", r.Meta.VideoCodec)
	assert.Equal(t, 1280, r.Meta.Width)

	assert.Equal(t, "tt0371746", r.Media.IMDbID)
	require.NotNil(t, r.Media.Info)
	assert.Equal(t, "fetched", r.Media.Info.Title)
}

func TestScan_EveryFileInExactlyOneRole(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Movie.Name.2010.DVDRip.XviD-GRP")
	touch(t, filepath.Join(dir, "Movie.Name.2010.DVDRip.XviD-GRP.avi"), 700)
	writeText(t, filepath.Join(dir, "Movie.Name.2010.DVDRip.XviD-GRP.nfo"), "nothing")
	writeText(t, filepath.Join(dir, "Movie.Name.2010.DVDRip.XviD-GRP.idx"), "# idx\nid: en, index: 0\n")
	touch(t, filepath.Join(dir, "Movie.Name.2010.DVDRip.XviD-GRP.sub"), 1)
	touch(t, filepath.Join(dir, "Movie.Name.2010.trailer.mp4"), 100)
	writeText(t, filepath.Join(dir, "poster.jpg"), "img")

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{Root: root, CheckFileDate: true})
	require.NoError(t, err)
	require.Len(t, res.Releases, 1)

	r := res.Releases["movie name 2010"]
	require.NotNil(t, r)

	seen := map[string]int{}
	for _, f := range r.Files() {
		seen[f]++
	}
	for f, n := range seen {
		assert.Equal(t, 1, n, f)
	}
	assert.Len(t, seen, 6)
	assert.Len(t, r.Trailer, 1)
	assert.Len(t, r.SubtitleExtra, 1)
	assert.Len(t, r.Subtitle, 1)
	assert.Equal(t, []string{filepath.Join(dir, "poster.jpg")}, r.Images.Other)

	sub := filepath.Join(dir, "Movie.Name.2010.DVDRip.XviD-GRP.sub")
	assert.Equal(t, []string{"en"}, r.SubtitleLanguages[sub])
}

func TestScan_SimpleSkipsSubtitleLanguages(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Movie.2010.mkv"), 800)
	writeText(t, filepath.Join(root, "Movie.2010.idx"), "\nid: de, index: 0\n")
	touch(t, filepath.Join(root, "Movie.2010.sub"), 1)

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{Root: root, Simple: true})
	require.NoError(t, err)

	r := res.Releases["movie 2010"]
	require.NotNil(t, r)
	assert.Empty(t, r.SubtitleLanguages)
}

func TestScan_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A.Movie.2001.mkv"), 700)
	touch(t, filepath.Join(root, "Another.Movie.2002", "another.movie.2002.720p.mkv"), 700)
	writeText(t, filepath.Join(root, "Another.Movie.2002", "movie.nfo"), "x")
	writeText(t, filepath.Join(root, "stray.txt"), "x")

	s := newTestScanner(testDelegates())
	first, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)
	second, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)

	ids1, ids2 := identifiers(first), identifiers(second)
	sort.Strings(ids1)
	sort.Strings(ids2)
	assert.Equal(t, ids1, ids2)
	for id, r := range first.Releases {
		assert.Equal(t, r.Files(), second.Releases[id].Files())
	}
	assert.Equal(t, first.Leftovers, second.Leftovers)
}

func TestScan_ReportsLeftovers(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Movie.2010.mkv"), 700)
	writeText(t, filepath.Join(root, "unrelated", "readme.txt"), "x")

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "unrelated", "readme.txt")}, res.Leftovers)
}

func TestScan_ParentFolderPass(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Heat.1995.1080p")
	touch(t, filepath.Join(dir, "heat-1080p.mkv"), 4000)
	writeText(t, filepath.Join(dir, "Subs", "english.srt"), "x")
	writeText(t, filepath.Join(dir, "info.nfo"), "tt0113277")

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)

	r := res.Releases["heat 1995"]
	require.NotNil(t, r)
	assert.Len(t, r.NFO, 1)
	assert.Equal(t, "tt0113277", r.Media.IMDbID)
	assert.Equal(t, []string{filepath.Join(dir, "Subs", "english.srt")}, r.Subtitle)
	assert.Empty(t, res.Leftovers)
}

func TestScan_DVDStructure(t *testing.T) {
	root := t.TempDir()
	ts := filepath.Join(root, "Up.2009", "VIDEO_TS")
	touch(t, filepath.Join(ts, "VIDEO_TS.IFO"), 0)
	touch(t, filepath.Join(ts, "VTS_01_1.VOB"), 1000)
	touch(t, filepath.Join(ts, "VTS_01_2.VOB"), 1000)

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)

	r := res.Releases["up 2009"]
	require.NotNil(t, r)
	assert.True(t, r.DVD)
	assert.Len(t, r.Movie, 3)
	assert.Equal(t, []string{"up 2009 dvdr", "up 2009"}, r.Identifiers)
	assert.Equal(t, "dvdr", r.Meta.Quality.Identifier)
	assert.Equal(t, "Up.2009", r.DirName)
}

func TestScan_MissingRoot(t *testing.T) {
	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{Root: filepath.Join(t.TempDir(), "nope")})
	require.ErrorIs(t, err, ErrRootNotFound)
	assert.Empty(t, res.Releases)
}

func TestScan_RootIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.mkv")
	touch(t, file, 1)

	s := newTestScanner(testDelegates())
	_, err := s.Scan(context.Background(), Request{Root: file})
	require.ErrorIs(t, err, ErrRootNotFound)
}

func TestScan_SkipsStillChanging(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Fresh.Movie.2020.mkv")
	touch(t, path, 700)
	now := time.Now()
	require.NoError(t, os.Chtimes(path, now, now))

	s := newTestScanner(testDelegates())

	res, err := s.Scan(context.Background(), Request{Root: root, CheckFileDate: true})
	require.NoError(t, err)
	assert.Empty(t, res.Releases)

	res, err = s.Scan(context.Background(), Request{Root: root, CheckFileDate: false})
	require.NoError(t, err)
	assert.Len(t, res.Releases, 1)
}

func TestScan_ExplicitFilesBypassFreshness(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Fresh.Movie.2020.mkv")
	touch(t, path, 700)
	now := time.Now()
	require.NoError(t, os.Chtimes(path, now, now))
	touch(t, filepath.Join(root, "Other.Movie.2019.mkv"), 700)

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{
		Root:          root,
		Files:         []string{"Fresh.Movie.2020.mkv"},
		CheckFileDate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh movie 2020"}, identifiers(res))
}

func TestScan_NewerThan(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Old.Movie.1999.mkv")
	touch(t, path, 700)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	s := newTestScanner(testDelegates())

	res, err := s.Scan(context.Background(), Request{Root: root, NewerThan: time.Now().Add(-24 * time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, res.Releases)

	res, err = s.Scan(context.Background(), Request{Root: root, NewerThan: time.Now().Add(-72 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, res.Releases, 1)
}

func TestScan_IgnoredReleases(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Skip.Me.2011.mkv"), 700)
	writeText(t, filepath.Join(root, "Skip.Me.2011.ignore"), "")
	touch(t, filepath.Join(root, "Keep.Me.2012.mkv"), 700)

	s := newTestScanner(testDelegates())

	var totals []int
	res, err := s.Scan(context.Background(), Request{
		Root:    root,
		OnFound: func(_ *Release, _ int, total int) { totals = append(totals, total) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep me 2012"}, identifiers(res))
	assert.Equal(t, []int{1}, totals)

	res, err = s.Scan(context.Background(), Request{Root: root, ReturnIgnored: true})
	require.NoError(t, err)
	require.Contains(t, res.Releases, "skip me 2011")
	assert.True(t, res.Releases["skip me 2011"].Ignored)
}

func TestScan_OnFoundCounts(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A.Movie.2001.mkv"), 700)
	touch(t, filepath.Join(root, "B.Movie.2002.mkv"), 700)
	touch(t, filepath.Join(root, "C.Movie.2003.mkv"), 700)

	type call struct{ remaining, total int }
	var calls []call

	s := newTestScanner(testDelegates())
	_, err := s.Scan(context.Background(), Request{
		Root: root,
		OnFound: func(_ *Release, remaining, total int) {
			calls = append(calls, call{remaining, total})
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []call{{2, 3}, {1, 3}, {0, 3}}, calls)
}

func TestScan_DownloadDescriptor(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Some.Movie.2015.720p.mkv"), 3500)

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{
		Root:     root,
		Download: &Download{IMDbID: "tt7654321", Quality: "1080p", Is3D: true},
	})
	require.NoError(t, err)

	r := res.Releases["some movie 2015"]
	require.NotNil(t, r)
	assert.Equal(t, "tt7654321", r.Media.IMDbID)
	assert.Equal(t, "1080p", r.Meta.Quality.Identifier)
	assert.True(t, r.Meta.Quality.Is3D)
}

func TestScan_DownloadIgnoredForSeveralReleases(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A.Movie.2001.mkv"), 700)
	touch(t, filepath.Join(root, "B.Movie.2002.mkv"), 700)

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{
		Root:     root,
		Download: &Download{IMDbID: "tt7654321"},
	})
	require.NoError(t, err)
	for _, r := range res.Releases {
		assert.NotEqual(t, "tt7654321", r.Media.IMDbID)
	}
}

func TestScan_StoredMediaPreferred(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Movie.2010.cp(tt1234567).mkv"), 700)

	d := testDelegates()
	d.Store = stubStore{"tt1234567": {IMDbID: "tt1234567", Title: "Stored Movie"}}

	s := newTestScanner(d)
	res, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)

	r := res.Releases["movie 2010"]
	require.NotNil(t, r)
	assert.True(t, r.Media.Stored)
	assert.Equal(t, "Stored Movie", r.Media.Info.Title)
}

func TestScan_SearchFallback(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Heat.1995.720p.mkv"), 3500)

	search := &stubSearch{results: map[string][]MovieInfo{
		"Heat 1995": {{IMDbID: "tt0113277", Title: "Heat", Year: 1995}},
	}}
	d := testDelegates()
	d.Search = search

	s := newTestScanner(d)
	res, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)

	r := res.Releases["heat 1995"]
	require.NotNil(t, r)
	assert.Equal(t, "tt0113277", r.Media.IMDbID)
	assert.NotEmpty(t, search.queries)
}

func TestScan_UnidentifiedReleaseStillReturned(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Mystery.mkv"), 700)

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)

	require.Len(t, res.Releases, 1)
	for _, r := range res.Releases {
		assert.False(t, r.Media.Identified())
	}
}

func TestScan_ContainerMetadata(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Movie.2010.mkv"), 700)

	d := testDelegates()
	d.Container = stubContainer{meta: &ContainerMeta{
		VideoCodec:    "H264",
		AudioCodec:    "DTS",
		AudioChannels: 6,
		Width:         1920,
		Height:        800,
	}}

	s := newTestScanner(d)
	res, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)

	m := res.Releases["movie 2010"].Meta
	assert.Equal(t, "H264", m.VideoCodec)
	assert.Equal(t, "DTS", m.AudioCodec)
	assert.Equal(t, 6.0, m.AudioChannels)
	assert.Equal(t, 2.4, m.Aspect)
	assert.Equal(t, "HD", m.QualityType)
}

func TestScan_ContainerFailureFallsBack(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Movie.2010.DTS.XviD.mkv"), 650)

	d := testDelegates()
	d.Container = stubContainer{err: os.ErrInvalid}

	s := newTestScanner(d)
	res, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)

	m := res.Releases["movie 2010"].Meta
	assert.Equal(t, "Xvid", m.VideoCodec)
	assert.Equal(t, "DTS", m.AudioCodec)
	assert.Equal(t, 2.0, m.AudioChannels)
	assert.Equal(t, "SD", m.QualityType)
}

func TestScan_CancelledContext(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Movie.2010.mkv"), 700)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestScanner(testDelegates())
	res, err := s.Scan(ctx, Request{Root: root})
	require.NoError(t, err)
	assert.Empty(t, res.Releases)
	assert.True(t, res.Partial)
}

func TestScan_HostShutdownStopsEarly(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A.Movie.2001.mkv"), 700)
	touch(t, filepath.Join(root, "B.Movie.2002.mkv"), 700)

	host := &stubHost{}
	d := testDelegates()
	d.Host = host

	s := newTestScanner(d)
	res, err := s.Scan(context.Background(), Request{
		Root:    root,
		OnFound: func(*Release, int, int) { host.shutting.Store(true) },
	})
	require.NoError(t, err)
	assert.Len(t, res.Releases, 1)
	assert.True(t, res.Partial)
}

func TestScan_BackpressureWaitsForCapacity(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A.Movie.2001.mkv"), 700)

	host := &stubHost{}
	host.active.Store(5)
	d := testDelegates()
	d.Host = host

	cfg := DefaultConfig()
	cfg.MaxActiveTasks = 2
	cfg.PollInterval = 10 * time.Millisecond
	cfg.MaxWait = time.Second
	s := New(cfg, d)

	go func() {
		time.Sleep(50 * time.Millisecond)
		host.active.Store(0)
	}()

	start := time.Now()
	found := 0
	_, err := s.Scan(context.Background(), Request{
		Root:    root,
		OnFound: func(*Release, int, int) { found++ },
	})
	require.NoError(t, err)
	assert.Equal(t, 1, found)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestScan_BackpressureGivesUpAfterMaxWait(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A.Movie.2001.mkv"), 700)

	host := &stubHost{}
	host.active.Store(500)
	d := testDelegates()
	d.Host = host

	cfg := DefaultConfig()
	cfg.PollInterval = 5 * time.Millisecond
	cfg.MaxWait = 30 * time.Millisecond
	s := New(cfg, d)

	found := 0
	_, err := s.Scan(context.Background(), Request{
		Root:    root,
		OnFound: func(*Release, int, int) { found++ },
	})
	require.NoError(t, err)
	assert.Equal(t, 1, found)
}

func TestScan_SymlinkLoopTerminates(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Loop.Movie.2005")
	touch(t, filepath.Join(dir, "Loop.Movie.2005.mkv"), 700)
	if err := os.Symlink(root, filepath.Join(dir, "back")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	s := newTestScanner(testDelegates())
	res, err := s.Scan(context.Background(), Request{Root: root})
	require.NoError(t, err)
	assert.Len(t, res.Releases, 1)
}
