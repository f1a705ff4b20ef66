package ffmpeg

import (
	"regexp"
	"strconv"
)

var timeMarker = regexp.MustCompile(`time=(\d{2}):(\d{2}):(\d{2})\.(\d{2})`)

// ProgressParser converts ffmpeg time markers into monotonically increasing
// percentages. Interim values are capped at 99 and only emitted once they
// advance by at least two points.
type ProgressParser struct {
	duration float64
	sink     func(float64)
	last     int
}

// NewProgressParser returns a parser for a media file of the given duration
// in seconds. A non-positive duration disables interim updates.
func NewProgressParser(duration float64, sink func(float64)) *ProgressParser {
	return &ProgressParser{duration: duration, sink: sink, last: -1}
}

// Feed consumes one stderr line.
func (p *ProgressParser) Feed(line string) {
	if p == nil || p.sink == nil || p.duration <= 0 {
		return
	}
	seconds, ok := parseTimeMarker(line)
	if !ok {
		return
	}
	pct := min(int(100*seconds/p.duration), 99)
	if pct > p.last && pct-p.last >= 2 {
		p.last = pct
		p.sink(float64(pct))
	}
}

// Finish emits the terminal value: 100 on success, 0 otherwise.
func (p *ProgressParser) Finish(ok bool) {
	if p == nil || p.sink == nil {
		return
	}
	if ok {
		p.sink(100)
		return
	}
	p.sink(0)
}

func parseTimeMarker(line string) (float64, bool) {
	m := timeMarker.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	cs, _ := strconv.Atoi(m[4])
	return float64(h*3600+mm*60+s) + float64(cs)/100, true
}
