// Package report renders the classification outcome: a ranked group table,
// the unknown-line dump with its template digest, and a run summary.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/parity-tools/logtriage/internal/classify"
)

// Reporter writes the final report of one triage run.
type Reporter struct {
	out io.Writer
	raw bool
}

// NewReporter creates a Reporter writing to out. With raw set, every
// non-empty group is re-printed with its raw lines after the table.
func NewReporter(out io.Writer, raw bool) *Reporter {
	return &Reporter{out: out, raw: raw}
}

// Print renders the full report from the classifier state. The stats
// invariant is checked before anything is written.
func (r *Reporter) Print(c *classify.Classifier, elapsed time.Duration) error {
	stats := c.Stats()
	if err := stats.Validate(); err != nil {
		return err
	}

	groups := rankGroups(c.Groups())

	fmt.Fprintln(r.out)
	table := tablewriter.NewTable(r.out)
	table.Header("Count", "Severity", "Key")
	for _, group := range groups {
		table.Append(strconv.Itoa(group.Count()), group.Pattern.Severity, group.Key)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering group table: %w", err)
	}

	unknown := c.Unknown()
	fmt.Fprintf(r.out, "\nUnknown lines [num %d]:\n", len(unknown))
	for _, line := range unknown {
		fmt.Fprintf(r.out, "  %s\n", line)
	}

	if digest := c.Digest(); len(digest) > 0 {
		fmt.Fprintf(r.out, "\nUnknown line templates:\n")
		for _, entry := range digest {
			fmt.Fprintf(r.out, "  %d x %s\n", entry.Count, entry.Template)
		}
	}

	if r.raw {
		r.printRaw(groups)
	}

	fmt.Fprintf(r.out, "\nProcessed %d lines in %s: %d matched, %d empty, %d unknown\n",
		stats.Total, elapsed.Round(time.Millisecond), stats.Matched, stats.Empty, stats.Unknown)

	return nil
}

// printRaw dumps the accumulated lines of every non-empty group, in the
// same ranked order as the table.
func (r *Reporter) printRaw(groups []*classify.Group) {
	for _, group := range groups {
		if group.Count() == 0 {
			continue
		}
		fmt.Fprintf(r.out, "\n%s (%s, %d lines):\n", group.Key, group.Pattern.File, group.Count())
		for _, line := range group.Lines {
			fmt.Fprintf(r.out, "  %s\n", line)
		}
	}
}

// rankGroups orders groups by descending count. Ties keep the classifier's
// insertion order, so equal-count groups appear in first-seen order.
func rankGroups(groups []*classify.Group) []*classify.Group {
	ranked := make([]*classify.Group, len(groups))
	copy(ranked, groups)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count() > ranked[j].Count()
	})
	return ranked
}
