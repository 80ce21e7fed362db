package naming

import (
	"regexp"
	"strings"
)

// noiseWords are scene, quality, source and language tags that never belong
// to a title. A "." matches any single separator.
var noiseWords = []string{
	"3d", "hsbs", "sbs", "half.sbs", "full.sbs", "ou", "half.ou", "full.ou",
	"extended", "extended.cut", "directors.cut",
	"french", "fr", "swedisch", "sw", "danish", "dutch", "nl", "swesub", "subs",
	"spanish", "german", "ac3", "dts", "custom", "dc", "divx", "divx5", "dsr",
	"dsrip", "dvd", "dvdr", "dvdrip", "dvdscr", "dvdscreener", "screener",
	"dvdivx", "cam", "fragment", "fs", "hdtv", "hdrip", "hdtvrip", "webdl",
	"web.dl", "webrip", "web.rip", "internal", "limited", "multisubs", "ntsc",
	"ogg", "ogm", "pal", "pdtv", "proper", "repack", "rerip", "retail", "r3",
	"r5", "bd5", "se", "svcd", "swedish", "read.nfo", "nfofix", "unrated",
	"ws", "telesync", "ts", "telecine", "tc", "brrip", "bdrip", "video_ts",
	"audio_ts", "480p", "480i", "576p", "576i", "720p", "720i", "1080p",
	"1080i", "hrhd", "hrhdtv", "hddvd", "bluray", "x264", "h264", "xvid",
	"xvidvd", "xxx", "www.www", "hc", `\[.*\]`,
}

const noiseDelims = `[ _,.()\[\]\-]`

// noiseRegex matches one noise word together with its leading separator (or
// the start of the string) and the separator that follows it. The trailing
// separator is handed back to the input by replaceNoise so that adjacent
// noise words can share it.
var noiseRegex = regexp.MustCompile(`(?:` + noiseDelims + `|^)(` + strings.Join(noiseWords, "|") + `)(?:` + noiseDelims + `|$)`)

// replaceNoise substitutes every noise word (and its leading separator) in s
// with repl.
func replaceNoise(s, repl string) string {
	var sb strings.Builder
	pos := 0
	for pos < len(s) {
		loc := noiseRegex.FindStringSubmatchIndex(s[pos:])
		if loc == nil {
			break
		}
		start, wordStart, wordEnd := pos+loc[0], pos+loc[2], pos+loc[3]
		if start == wordStart && start != 0 {
			// matched through "^" of the substring, which is not a real boundary
			sb.WriteByte(s[pos])
			pos++
			continue
		}
		sb.WriteString(s[pos:start])
		sb.WriteString(repl)
		pos = wordEnd
	}
	if pos < len(s) {
		sb.WriteString(s[pos:])
	}
	return sb.String()
}

// StripNoise removes noise words from an already simplified string.
func StripNoise(s string) string {
	return strings.Join(strings.Fields(replaceNoise(s, " ")), " ")
}
