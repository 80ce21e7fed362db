package scanner

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshnessFixture(t *testing.T, now time.Time, ages ...time.Duration) (*Scanner, *Release) {
	t.Helper()
	fs := afero.NewMemMapFs()
	r := &Release{}
	for i, age := range ages {
		path := "/m/file" + string(rune('a'+i)) + ".mkv"
		require.NoError(t, afero.WriteFile(fs, path, []byte("x"), 0o644))
		ts := now.Add(-age)
		require.NoError(t, fs.Chtimes(path, ts, ts))
		r.unsorted = append(r.unsorted, path)
	}
	s := newTestScanner(Delegates{}, WithFs(fs), WithClock(func() time.Time { return now }))
	return s, r
}

func TestStillChanging(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s, r := freshnessFixture(t, now, 10*time.Second, 30*time.Second)
	assert.True(t, s.stillChanging(r), "all files recent")

	s, r = freshnessFixture(t, now, 10*time.Second, time.Hour)
	assert.False(t, s.stillChanging(r), "one settled file")

	s, r = freshnessFixture(t, now, time.Hour)
	r.unsorted = append(r.unsorted, "/m/gone.mkv")
	assert.True(t, s.stillChanging(r), "vanished file")
}

func TestStillChanging_DisabledWithoutGrace(t *testing.T) {
	now := time.Now()
	s, r := freshnessFixture(t, now, 0)
	s.cfg.GracePeriod = 0
	assert.False(t, s.stillChanging(r))
}

func TestTouchedSince(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s, r := freshnessFixture(t, now, 2*time.Hour, 3*time.Hour)

	assert.True(t, s.touchedSince(r, now.Add(-150*time.Minute)))
	assert.False(t, s.touchedSince(r, now.Add(-time.Hour)))
}
