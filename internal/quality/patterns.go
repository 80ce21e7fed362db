package quality

import "regexp"

var (
	resolution480p  = regexp.MustCompile(`(?i)\b480[pi]\b`)
	resolution576p  = regexp.MustCompile(`(?i)\b576[pi]\b`)
	resolution720p  = regexp.MustCompile(`(?i)\b720[pi]\b`)
	resolution1080p = regexp.MustCompile(`(?i)\b1080[pi]\b`)
	resolution2160p = regexp.MustCompile(`(?i)\b(2160[pi]|4K|UHD)\b`)

	// Source patterns - order matters for matching
	remuxPattern  = regexp.MustCompile(`(?i)\bREMUX\b`)
	blurayPattern = regexp.MustCompile(`(?i)\b(BluRay|Blu-Ray|BDRip|BRRip|BR-Rip|BD)\b`)
	webdlPattern  = regexp.MustCompile(`(?i)\b(WEB-DL|WEBDL|WEB\.DL)\b`)
	webripPattern = regexp.MustCompile(`(?i)\b(WEBRip|WEB-Rip|WEB)\b`)
	hdtvPattern   = regexp.MustCompile(`(?i)\b(HDTV|PDTV|DSR)\b`)
	dvdrPattern   = regexp.MustCompile(`(?i)\b(DVD-?R|DVD5|DVD9|VIDEO_TS)\b`)
	dvdscrPattern = regexp.MustCompile(`(?i)\b(DVDScr|DVD-Scr|DVDSCREENER|SCREENER|SCR)\b`)
	dvdripPattern = regexp.MustCompile(`(?i)\b(DVDRip|DVD-Rip|DVD)\b`)
	r5Pattern     = regexp.MustCompile(`(?i)\bR5\b`)
	tcPattern     = regexp.MustCompile(`(?i)\b(TC|TELECINE)\b`)
	tsPattern     = regexp.MustCompile(`(?i)\b(TS|TELESYNC|HDTS)\b`)
	camPattern    = regexp.MustCompile(`(?i)\b(CAM|HDCAM|CAMRip)\b`)

	threeDPattern = regexp.MustCompile(`(?i)\b(3D|SBS|HSBS|H-SBS|OU|HOU|H-OU|MVC)\b`)
	bd50Pattern   = regexp.MustCompile(`(?i)\b(BD50|BD-50|COMPLETE\.BLURAY|AVC\.REMUX)\b`)
)

func parseResolution(s string) Resolution {
	switch {
	case resolution2160p.MatchString(s):
		return Resolution2160p
	case resolution1080p.MatchString(s):
		return Resolution1080p
	case resolution720p.MatchString(s):
		return Resolution720p
	case resolution576p.MatchString(s):
		return Resolution576p
	case resolution480p.MatchString(s):
		return Resolution480p
	default:
		return ResolutionUnknown
	}
}

func parseSource(s string) Source {
	switch {
	case remuxPattern.MatchString(s):
		return SourceREMUX
	case blurayPattern.MatchString(s):
		return SourceBluRay
	case webdlPattern.MatchString(s):
		return SourceWEBDL
	case webripPattern.MatchString(s):
		return SourceWEBRip
	case hdtvPattern.MatchString(s):
		return SourceHDTV
	case dvdrPattern.MatchString(s):
		return SourceDVDR
	case dvdscrPattern.MatchString(s):
		return SourceDVDScr
	case dvdripPattern.MatchString(s):
		return SourceDVDRip
	case r5Pattern.MatchString(s):
		return SourceR5
	case tcPattern.MatchString(s):
		return SourceTC
	case tsPattern.MatchString(s):
		return SourceTS
	case camPattern.MatchString(s):
		return SourceCAM
	default:
		return SourceUnknown
	}
}

func parse3D(s string) bool {
	return threeDPattern.MatchString(s)
}

func parseBD50(s string) bool {
	return bd50Pattern.MatchString(s)
}
