// Package warptime measures warp-sync timing from a node log file. Warp
// sync runs in two phases, finality-proof download followed by state sync,
// and each phase boundary is announced by a well-known log line.
package warptime

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/parity-tools/logtriage/internal/logging"
)

// Phase boundaries only appear during startup, so scanning past the head
// of the file is wasted work.
const maxLines = 1000

const (
	warpStartMarker = "Warping, Downloading finality proofs"
	warpEndMarker   = "Warp sync is complete"
	stateEndMarker  = "State sync is complete"
)

// Node log lines lead with a local timestamp, e.g.
// "2024-03-01 12:00:05.123  INFO main sync: ...".
const timeLayout = "2006-01-02 15:04:05"

// Report holds the measured durations of one warp sync.
type Report struct {
	Warp      time.Duration
	StateSync time.Duration
	Total     time.Duration
}

// FromFile reads a node log file lossily and measures its warp sync.
func FromFile(path string) (*Report, error) {
	logger := logging.GetLogger("warptime")
	logger.Info("Measuring warp sync time from %s", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading log file: %w", err)
	}

	return Analyze(strings.ToValidUTF8(string(raw), "�"))
}

// Analyze measures the warp sync announced in the given log text. The
// three boundary markers must appear in phase order within the first
// thousand lines.
func Analyze(text string) (*Report, error) {
	lines := strings.Split(text, "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	cursor := 0
	warpStart, err := findPhaseTime(lines, &cursor, warpStartMarker)
	if err != nil {
		return nil, err
	}
	warpEnd, err := findPhaseTime(lines, &cursor, warpEndMarker)
	if err != nil {
		return nil, err
	}
	stateEnd, err := findPhaseTime(lines, &cursor, stateEndMarker)
	if err != nil {
		return nil, err
	}

	return &Report{
		Warp:      warpEnd.Sub(warpStart),
		StateSync: stateEnd.Sub(warpEnd),
		Total:     stateEnd.Sub(warpStart),
	}, nil
}

// Print renders the phase timing table.
func (r *Report) Print(out io.Writer) error {
	fmt.Fprintln(out)
	table := tablewriter.NewTable(out)
	table.Header("Phase", "Time")
	table.Append("Warp", r.Warp.String())
	table.Append("State", r.StateSync.String())
	table.Append("Total", r.Total.String())
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering phase table: %w", err)
	}
	return nil
}

// findPhaseTime scans forward from the cursor for the first line carrying
// the marker and returns its timestamp. The cursor advances past the hit,
// so successive calls enforce phase order.
func findPhaseTime(lines []string, cursor *int, marker string) (time.Time, error) {
	for i := *cursor; i < len(lines); i++ {
		if !strings.Contains(lines[i], marker) {
			continue
		}
		*cursor = i + 1
		return extractTime(lines[i])
	}
	return time.Time{}, fmt.Errorf("no line matching %q in the first %d lines", marker, maxLines)
}

// extractTime parses the leading date and time tokens of a log line.
// Fractional seconds are accepted but not required.
func extractTime(line string) (time.Time, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return time.Time{}, fmt.Errorf("log line %q carries no timestamp", line)
	}

	stamp := tokens[0] + " " + tokens[1]
	parsed, err := time.Parse(timeLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", stamp, err)
	}
	return parsed, nil
}
