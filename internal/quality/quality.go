// Package quality detects release quality from file names and maps it onto a
// fixed catalog of quality profiles.
package quality

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Source represents the media source type, ordered by quality.
type Source int

const (
	SourceUnknown Source = iota
	SourceCAM
	SourceTS
	SourceTC
	SourceR5
	SourceDVDScr
	SourceDVDRip
	SourceDVDR
	SourceHDTV
	SourceWEBRip
	SourceWEBDL
	SourceBluRay
	SourceREMUX
)

// Resolution represents video resolution.
type Resolution int

const (
	ResolutionUnknown Resolution = 0
	Resolution480p    Resolution = 480
	Resolution576p    Resolution = 576
	Resolution720p    Resolution = 720
	Resolution1080p   Resolution = 1080
	Resolution2160p   Resolution = 2160
)

// QualityInfo contains parsed quality information from a filename.
type QualityInfo struct {
	Source     Source
	Resolution Resolution
	Is3D       bool
	IsBD50     bool
	Raw        string
}

// Parse extracts quality information from a filename.
func Parse(filename string) *QualityInfo {
	baseName := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	upper := strings.ToUpper(baseName)

	return &QualityInfo{
		Raw:        filename,
		Resolution: parseResolution(upper),
		Source:     parseSource(upper),
		Is3D:       parse3D(upper),
		IsBD50:     parseBD50(upper),
	}
}

// ParseFromPath parses the file name and falls back to the parent directory
// for the source when the file name has none.
func ParseFromPath(path string) *QualityInfo {
	info := Parse(path)

	parent := filepath.Base(filepath.Dir(path))
	if parent == "." || parent == string(filepath.Separator) {
		return info
	}
	parentInfo := Parse(parent + ".dir")
	if info.Source == SourceUnknown {
		info.Source = parentInfo.Source
	}
	if info.Resolution == ResolutionUnknown {
		info.Resolution = parentInfo.Resolution
	}
	info.Is3D = info.Is3D || parentInfo.Is3D
	info.IsBD50 = info.IsBD50 || parentInfo.IsBD50
	return info
}

func (s Source) String() string {
	switch s {
	case SourceCAM:
		return "CAM"
	case SourceTS:
		return "TS"
	case SourceTC:
		return "TC"
	case SourceR5:
		return "R5"
	case SourceDVDScr:
		return "DVDScr"
	case SourceDVDRip:
		return "DVDRip"
	case SourceDVDR:
		return "DVD-R"
	case SourceHDTV:
		return "HDTV"
	case SourceWEBRip:
		return "WEBRip"
	case SourceWEBDL:
		return "WEB-DL"
	case SourceBluRay:
		return "BluRay"
	case SourceREMUX:
		return "REMUX"
	default:
		return "Unknown"
	}
}

func (r Resolution) String() string {
	if r == ResolutionUnknown {
		return "unknown"
	}
	return strconv.Itoa(int(r)) + "p"
}
