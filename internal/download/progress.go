package download

import (
	"regexp"
	"strconv"

	"github.com/showcase-dl/showcase-dl/internal/state"
)

// yt-dlp's progress output is versioned, line-oriented text. The matchers
// below cover the known shapes; anything unmatched is kept as a raw line
// and never treated as an error.
var (
	reProgress = regexp.MustCompile(
		`^\[download\]\s+(?P<percent>[\d.]+)% of\s+(?P<size>(?:~\s*)?[\d.]+(?:[KMG]i)?B)` +
			`(?: at\s+(?P<speed>(?:~\s*)?(?:[\d.]+(?:[KMG]i)?|Unknown )B/s))?` +
			`(?: ETA\s+(?P<eta>[\d:-]+|Unknown))?` +
			`(?: \(frag (?P<frag>\d+)/(?P<frag_total>\d+)\))?`)

	// The completion line ("100% of 956.44MiB in 00:15 at 63.00MiB/s") does
	// not match the full shape; this keeps the gauge honest anyway.
	rePercentOnly = regexp.MustCompile(`^\[download\]\s+(?P<percent>[\d.]+)%`)

	reDestination = regexp.MustCompile(
		`^\[(?:download|ExtractAudio)\] Destination: (?P<output_file>.+)$`)

	reAlreadyDownloaded = regexp.MustCompile(
		`^\[download\] (?P<output_file>.+?) has already been downloaded$`)

	reMerging = regexp.MustCompile(
		`^\[Merger\] Merging formats into "(?P<output_file>.+?)"$`)
)

// LineUpdate is what one output line contributed: possibly a progress
// update, possibly an output-file path, possibly nothing.
type LineUpdate struct {
	Progress    state.Progress
	HasProgress bool
	OutputFile  string
}

// ParseLine extracts whatever the given output line offers. Unrecognized
// lines yield a zero LineUpdate.
func ParseLine(line string) LineUpdate {
	var u LineUpdate

	if m := reProgress.FindStringSubmatch(line); m != nil {
		p := state.Progress{
			Size:  m[reProgress.SubexpIndex("size")],
			Speed: m[reProgress.SubexpIndex("speed")],
			ETA:   m[reProgress.SubexpIndex("eta")],
		}
		if pct, err := strconv.ParseFloat(m[reProgress.SubexpIndex("percent")], 64); err == nil {
			p.Percent = pct
			p.PercentKnown = true
		}
		if frag := m[reProgress.SubexpIndex("frag")]; frag != "" {
			p.Frag, _ = strconv.Atoi(frag)
			p.FragTotal, _ = strconv.Atoi(m[reProgress.SubexpIndex("frag_total")])
		}
		u.Progress = p
		u.HasProgress = true
	} else if m := rePercentOnly.FindStringSubmatch(line); m != nil {
		if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
			u.Progress = state.Progress{Percent: pct, PercentKnown: true}
			u.HasProgress = true
		}
	}

	if m := reDestination.FindStringSubmatch(line); m != nil {
		u.OutputFile = m[1]
	} else if m := reAlreadyDownloaded.FindStringSubmatch(line); m != nil {
		u.OutputFile = m[1]
	} else if m := reMerging.FindStringSubmatch(line); m != nil {
		u.OutputFile = m[1]
	}

	return u
}
