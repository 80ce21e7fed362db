// Package mediainfo reads container metadata with ffprobe.
package mediainfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoStreams is returned for files ffprobe parsed without finding any
// audio or video stream.
var ErrNoStreams = errors.New("no media streams")

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Prober wraps the ffprobe binary.
type Prober struct {
	Path string
	run  Runner
}

// NewProber returns a prober for the given binary, "ffprobe" when empty.
func NewProber(path string) *Prober {
	if path == "" {
		path = "ffprobe"
	}
	return &Prober{Path: path, run: execRunner}
}

// WithRunner replaces how the binary is executed.
func (p *Prober) WithRunner(run Runner) *Prober {
	p.run = run
	return p
}

// Available reports whether the binary can be found.
func (p *Prober) Available() bool {
	_, err := exec.LookPath(p.Path)
	return err == nil
}

type ProbeResult struct {
	Format  FormatInfo   `json:"format"`
	Streams []StreamInfo `json:"streams"`
}

type FormatInfo struct {
	Filename   string            `json:"filename"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Tags       map[string]string `json:"tags"`
}

type StreamInfo struct {
	CodecType     string            `json:"codec_type"`
	CodecName     string            `json:"codec_name"`
	CodecTag      string            `json:"codec_tag_string"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	Channels      int               `json:"channels"`
	ChannelLayout string            `json:"channel_layout"`
	Tags          map[string]string `json:"tags"`
}

// Probe runs ffprobe on path.
func (p *Prober) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	output, err := p.run(ctx, p.Path, "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if result.firstStream("video") == nil && result.firstStream("audio") == nil {
		return nil, ErrNoStreams
	}
	return &result, nil
}

func (r *ProbeResult) firstStream(kind string) *StreamInfo {
	for i := range r.Streams {
		if r.Streams[i].CodecType == kind {
			return &r.Streams[i]
		}
	}
	return nil
}

// Titles returns the container title and any video stream titles.
func (r *ProbeResult) Titles() []string {
	var titles []string
	if t := strings.TrimSpace(tag(r.Format.Tags, "title")); t != "" {
		titles = append(titles, t)
	}
	for _, s := range r.Streams {
		if s.CodecType != "video" {
			continue
		}
		if t := strings.TrimSpace(tag(s.Tags, "title")); t != "" && !contains(titles, t) {
			titles = append(titles, t)
		}
	}
	return titles
}

// VideoCodec returns the first video stream's codec as a release tag.
func (r *ProbeResult) VideoCodec() string {
	s := r.firstStream("video")
	if s == nil {
		return ""
	}
	switch strings.ToLower(s.CodecName) {
	case "h264":
		return "H264"
	case "hevc":
		return "HEVC"
	case "mpeg4":
		switch strings.ToLower(s.CodecTag) {
		case "xvid":
			return "Xvid"
		case "divx", "dx50", "div3":
			return "DivX"
		}
		return "MPEG4"
	case "mpeg2video":
		return "MPEG2"
	case "vc1":
		return "VC1"
	case "av1":
		return "AV1"
	}
	return strings.ToUpper(s.CodecName)
}

// AudioCodec returns the first audio stream's codec as a release tag.
func (r *ProbeResult) AudioCodec() string {
	s := r.firstStream("audio")
	if s == nil {
		return ""
	}
	switch strings.ToLower(s.CodecName) {
	case "dts":
		return "DTS"
	case "ac3":
		return "AC3"
	case "eac3":
		return "EAC3"
	case "truehd":
		return "TrueHD"
	case "mp3":
		return "MP3"
	case "aac":
		return "AAC"
	case "flac":
		return "FLAC"
	}
	return strings.ToUpper(s.CodecName)
}

// AudioChannels returns the first audio stream's channel count in the
// usual 5.1 notation.
func (r *ProbeResult) AudioChannels() float64 {
	s := r.firstStream("audio")
	if s == nil || s.Channels == 0 {
		return 0
	}
	if strings.Contains(s.ChannelLayout, ".1") || s.Channels == 6 || s.Channels == 8 {
		v, err := strconv.ParseFloat(fmt.Sprintf("%d.1", s.Channels-1), 64)
		if err == nil {
			return v
		}
	}
	return float64(s.Channels)
}

// Dimensions returns the first video stream's frame size.
func (r *ProbeResult) Dimensions() (int, int) {
	s := r.firstStream("video")
	if s == nil {
		return 0, 0
	}
	return s.Width, s.Height
}

func tag(tags map[string]string, key string) string {
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
