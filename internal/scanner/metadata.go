package scanner

import (
	"context"
	"math"
	"strings"

	"github.com/Nomadcxx/releasescan/internal/logging"
	"github.com/Nomadcxx/releasescan/internal/naming"
	"github.com/Nomadcxx/releasescan/internal/quality"
)

const megabyte = 1024 * 1024

// metadata summarizes the movie files of a release. Only files in the movie
// size range count; the first of them is probed.
func (s *Scanner) metadata(ctx context.Context, r *Release, root string, sizes map[string]int64, download *Download) Metadata {
	var m Metadata
	probed := false

	for _, path := range r.Movie {
		size := sizes[path]
		if !s.tables.HasMovieSize(size) {
			continue
		}
		if !probed {
			probed = true
			s.probe(ctx, path, &m)
		}
		m.SizeMB += float64(size) / megabyte
	}

	m.Quality = s.pickQuality(r, m, download)
	if m.Width >= 1280 || (m.Quality != nil && m.Quality.HD) {
		m.QualityType = "HD"
	} else {
		m.QualityType = "SD"
	}

	if len(r.Movie) > 0 {
		name := naming.RemoveCPTag(r.Movie[0])
		m.Group = quality.ReleaseGroupTag(strings.TrimPrefix(name, root))
		m.Source = quality.SourceMediaFor(name)
		if m.Quality != nil && m.Quality.Is3D {
			m.ThreeDType = quality.ThreeDTypeFor(name)
		}
	}
	return m
}

// probe fills technical fields from the container and falls back to
// name-derived values for anything the container did not report.
func (s *Scanner) probe(ctx context.Context, path string, m *Metadata) {
	var meta ContainerMeta
	if s.d.Container != nil {
		got, err := s.d.Container.ReadContainer(ctx, path)
		if err != nil {
			s.logger.Debug("scanner", "Container probe failed", logging.F("path", path), logging.F("error", err.Error()))
		} else if got != nil {
			meta = *got
		}
	}

	m.Titles = meta.Titles
	m.VideoCodec = meta.VideoCodec
	if m.VideoCodec == "" {
		m.VideoCodec = quality.VideoCodecFor(path)
	}
	m.AudioCodec = meta.AudioCodec
	if m.AudioCodec == "" {
		m.AudioCodec = quality.AudioCodecFor(path)
	}
	m.AudioChannels = meta.AudioChannels
	if m.AudioChannels == 0 {
		m.AudioChannels = 2.0
	}

	if meta.Width > 0 {
		m.Width = meta.Width
		m.Height = meta.Height
		height := meta.Height
		if height == 0 {
			height = 1
		}
		m.Aspect = math.Round(float64(meta.Width)/float64(height)*100) / 100
		return
	}
	res := quality.ResolutionFor(path)
	m.Width, m.Height, m.Aspect = res.Width, res.Height, res.Aspect
}

// pickQuality prefers the snatched quality, then a guess, then the generic
// disc or rip profile.
func (s *Scanner) pickQuality(r *Release, m Metadata, download *Download) *quality.Descriptor {
	if s.d.Quality == nil {
		return nil
	}

	guess := s.d.Quality.Guess(r.Movie, m.SizeMB, &quality.Extra{Width: m.Width, Height: m.Height})

	if download != nil && download.Quality != "" {
		if snatched := s.d.Quality.Single(download.Quality); snatched != nil {
			q := *snatched
			q.Is3D = download.Is3D
			if guess != nil && guess.Identifier != q.Identifier {
				s.logger.Info("scanner", "Snatched quality differs from detected, keeping snatched",
					logging.F("release", r.Identifier),
					logging.F("snatched", q.Identifier),
					logging.F("detected", guess.Identifier))
			}
			if guess != nil && guess.Is3D != q.Is3D {
				s.logger.Info("scanner", "Snatched 3D flag differs from detected, keeping snatched",
					logging.F("release", r.Identifier),
					logging.F("snatched", q.Is3D),
					logging.F("detected", guess.Is3D))
			}
			return &q
		}
	}

	if guess != nil {
		return guess
	}
	if r.DVD {
		return s.d.Quality.Single("dvdr")
	}
	return s.d.Quality.Single("dvdrip")
}
