package subtitles

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSubtitles(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/m/Iron.Man.2008.720p.mkv",
		"/m/Iron.Man.2008.720p.srt",
		"/m/Iron.Man.2008.720p.en.srt",
		"/m/Iron.Man.2008.720p.forced.fre.srt",
		"/m/Iron.Man.2008.720p.pt-BR.ass",
		"/m/Iron.Man.2008.720p.nfo",
		"/m/Iron.Man.2.2010.de.srt",
	} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}

	found := NewDetector(fs).DetectSubtitles([]string{"/m/Iron.Man.2008.720p.mkv"})

	assert.Equal(t, map[string][]string{
		"/m/Iron.Man.2008.720p.en.srt":         {"en"},
		"/m/Iron.Man.2008.720p.forced.fre.srt": {"fr"},
		"/m/Iron.Man.2008.720p.pt-BR.ass":      {"pt"},
	}, found)
	assert.Equal(t, []string{"en", "fr", "pt"}, Languages(found))
}

func TestDetectSubtitles_MissingDir(t *testing.T) {
	found := NewDetector(afero.NewMemMapFs()).DetectSubtitles([]string{"/nope/movie.mkv"})
	assert.Empty(t, found)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "en", Normalize("eng"))
	assert.Equal(t, "zh", Normalize("chi"))
	assert.Equal(t, "", Normalize("x264"))
	assert.Equal(t, "", Normalize(""))
}

func TestDetectSubtitles_SkipsFlagTokens(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/m/Movie.2010.mkv",
		"/m/Movie.2010.en.sdh.srt",
		"/m/Movie.2010.de.hi.srt",
		"/m/Movie.2010.hi.srt",
		"/m/Movie.2010.dts.srt",
		"/m/Movie.2010.forced.srt",
	} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}

	found := NewDetector(fs).DetectSubtitles([]string{"/m/Movie.2010.mkv"})

	assert.Equal(t, map[string][]string{
		"/m/Movie.2010.en.sdh.srt": {"en"},
		"/m/Movie.2010.de.hi.srt":  {"de"},
	}, found)
}

func TestIsFlag(t *testing.T) {
	assert.True(t, IsFlag("SDH"))
	assert.True(t, IsFlag("forced"))
	assert.False(t, IsFlag("en"))
}
