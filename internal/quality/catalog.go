package quality

import (
	"sort"
	"strings"
)

// Descriptor is one quality profile a release can be filed under.
type Descriptor struct {
	Identifier string
	Label      string
	HD         bool
	Is3D       bool
	MinSizeMB  float64
	MaxSizeMB  float64
}

// FitsSize reports whether sizeMB lies within the profile's size range.
func (d Descriptor) FitsSize(sizeMB float64) bool {
	return sizeMB >= d.MinSizeMB && (d.MaxSizeMB <= 0 || sizeMB <= d.MaxSizeMB)
}

// With3D returns a copy flagged as 3D.
func (d Descriptor) With3D() *Descriptor {
	d.Is3D = true
	return &d
}

// catalog is ordered best first.
var catalog = []Descriptor{
	{Identifier: "bd50", Label: "BR-Disk", HD: true, MinSizeMB: 20000, MaxSizeMB: 60000},
	{Identifier: "2160p", Label: "2160p", HD: true, MinSizeMB: 10000, MaxSizeMB: 100000},
	{Identifier: "1080p", Label: "1080p", HD: true, MinSizeMB: 4000, MaxSizeMB: 20000},
	{Identifier: "720p", Label: "720p", HD: true, MinSizeMB: 3000, MaxSizeMB: 10000},
	{Identifier: "brrip", Label: "BR-Rip", HD: true, MinSizeMB: 700, MaxSizeMB: 7000},
	{Identifier: "dvdr", Label: "DVD-R", MinSizeMB: 3000, MaxSizeMB: 10000},
	{Identifier: "dvdrip", Label: "DVD-Rip", MinSizeMB: 600, MaxSizeMB: 2400},
	{Identifier: "scr", Label: "Screener", MinSizeMB: 600, MaxSizeMB: 1600},
	{Identifier: "r5", Label: "R5", MinSizeMB: 600, MaxSizeMB: 1000},
	{Identifier: "tc", Label: "TeleCine", MinSizeMB: 600, MaxSizeMB: 1000},
	{Identifier: "ts", Label: "TeleSync", MinSizeMB: 600, MaxSizeMB: 1000},
	{Identifier: "cam", Label: "Cam", MinSizeMB: 600, MaxSizeMB: 1000},
}

// sizeFallback lists the profiles tried, in order, when nothing but the
// total size is known.
var sizeFallback = []string{"bd50", "1080p", "720p", "brrip", "dvdrip"}

// Catalog returns a copy of the known profiles, best first.
func Catalog() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a profile by identifier or label, ignoring case and dashes.
func Lookup(name string) (*Descriptor, bool) {
	key := normalizeKey(name)
	if key == "" {
		return nil, false
	}
	for _, d := range catalog {
		if normalizeKey(d.Identifier) == key || normalizeKey(d.Label) == key {
			d := d
			return &d, true
		}
	}
	return nil, false
}

func normalizeKey(s string) string {
	return strings.NewReplacer("-", "", " ", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Extra carries probed stream data that can sharpen a guess.
type Extra struct {
	Width  int
	Height int
}

// Guesser picks a catalog profile for a set of release files.
type Guesser struct{}

// Guess inspects file names first, then probed resolution, then total size.
// It returns nil when nothing fits.
func (Guesser) Guess(files []string, sizeMB float64, extra *Extra) *Descriptor {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	is3D := false
	for _, f := range sorted {
		info := ParseFromPath(f)
		is3D = is3D || info.Is3D
		if id := identifierFor(info); id != "" {
			return finish(id, is3D)
		}
	}

	if extra != nil {
		switch {
		case extra.Width >= 3840:
			return finish("2160p", is3D)
		case extra.Width >= 1920 || extra.Height >= 1080:
			return finish("1080p", is3D)
		case extra.Width >= 1280 || extra.Height >= 720:
			return finish("720p", is3D)
		}
	}

	if sizeMB > 0 {
		for _, id := range sizeFallback {
			d, _ := Lookup(id)
			if d.FitsSize(sizeMB) {
				return finish(id, is3D)
			}
		}
	}
	return nil
}

// Single normalizes a quality name to its profile.
func (Guesser) Single(name string) *Descriptor {
	d, ok := Lookup(name)
	if !ok {
		return nil
	}
	return d
}

func finish(id string, is3D bool) *Descriptor {
	d, ok := Lookup(id)
	if !ok {
		return nil
	}
	if is3D {
		return d.With3D()
	}
	return d
}

func identifierFor(info *QualityInfo) string {
	if info.IsBD50 {
		return "bd50"
	}
	switch info.Source {
	case SourceREMUX, SourceBluRay, SourceWEBDL, SourceWEBRip, SourceHDTV:
		switch info.Resolution {
		case Resolution2160p:
			return "2160p"
		case Resolution1080p:
			return "1080p"
		case Resolution720p:
			return "720p"
		}
		if info.Source == SourceBluRay || info.Source == SourceREMUX {
			return "brrip"
		}
		return "dvdrip"
	case SourceDVDR:
		return "dvdr"
	case SourceDVDRip:
		return "dvdrip"
	case SourceDVDScr:
		return "scr"
	case SourceR5:
		return "r5"
	case SourceTC:
		return "tc"
	case SourceTS:
		return "ts"
	case SourceCAM:
		return "cam"
	}

	switch info.Resolution {
	case Resolution2160p:
		return "2160p"
	case Resolution1080p:
		return "1080p"
	case Resolution720p:
		return "720p"
	}
	return ""
}
