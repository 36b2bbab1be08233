// Package classify streams log lines past the compiled pattern set, tallying
// matches and sub-bucketing designated families by a dedup key.
package classify

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/parity-tools/logtriage/internal/logging"
	"github.com/parity-tools/logtriage/internal/mining"
)

// Stats counts every consumed line into exactly one bucket.
type Stats struct {
	Total   int
	Empty   int
	Matched int
	Unknown int
}

// Validate checks the accounting invariant. A failure means a classifier bug.
func (s Stats) Validate() error {
	if s.Total != s.Empty+s.Matched+s.Unknown {
		return fmt.Errorf("stats out of balance: total=%d, empty=%d + matched=%d + unknown=%d",
			s.Total, s.Empty, s.Matched, s.Unknown)
	}
	return nil
}

// Group accumulates the raw lines of one message family, optionally refined
// by a dedup key.
type Group struct {
	// Key is the pattern expression, shaped "<expr>(<dedup key>)" when a
	// dedup rule applied.
	Key string

	// Pattern is the originating call site.
	Pattern *mining.Pattern

	// Lines holds every raw matching line in arrival order.
	Lines []string
}

// Count returns the number of lines accumulated in the group.
func (g *Group) Count() int {
	return len(g.Lines)
}

// Classifier consumes lines and accumulates match groups, unknowns, and
// stats. Groups grow monotonically across all query chunks of a run.
// Not safe for concurrent use; the pipeline is single-threaded.
type Classifier struct {
	patterns mining.PatternList
	rules    []DedupRule

	groups  map[string]*Group
	order   []string
	unknown []string
	stats   Stats

	digest *UnknownDigest
	logger *logging.Logger
}

// NewClassifier creates a Classifier over the given pattern set with the
// default dedup rules. Pattern order is first-match-wins, so the caller's
// list order is preserved exactly.
func NewClassifier(patterns mining.PatternList) *Classifier {
	return &Classifier{
		patterns: patterns,
		rules:    DefaultDedupRules,
		groups:   make(map[string]*Group),
		digest:   NewUnknownDigest(DefaultDigestConfig()),
		logger:   logging.GetLogger("classify"),
	}
}

// ConsumeOutput classifies every line of one query's stdout. Non-UTF-8
// bytes are lossily replaced before matching.
func (c *Classifier) ConsumeOutput(output []byte) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	// Backend lines can exceed bufio's default 64KiB token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		c.Consume(strings.ToValidUTF8(scanner.Text(), "�"))
	}
}

// Consume classifies a single line into exactly one of: empty, matched
// (first matching pattern wins), unknown.
func (c *Classifier) Consume(line string) {
	c.stats.Total++

	if line == "" {
		c.stats.Empty++
		return
	}

	for i := range c.patterns {
		pattern := &c.patterns[i]
		if !pattern.Regexp.MatchString(line) {
			continue
		}

		key := pattern.Expr
		if suffix, ok := dedupKey(line, c.rules); ok {
			key = fmt.Sprintf("%s(%s)", pattern.Expr, suffix)
		}

		c.append(key, pattern, line)
		c.stats.Matched++
		return
	}

	c.stats.Unknown++
	c.unknown = append(c.unknown, line)
	c.digest.Observe(line)
}

// append adds a line to its group, creating the group on first sight.
// Groups are keyed by call site and dedup key together: two call sites
// emitting the same format string stay distinct.
func (c *Classifier) append(key string, pattern *mining.Pattern, line string) {
	mapKey := pattern.ID + "|" + key
	group, exists := c.groups[mapKey]
	if !exists {
		group = &Group{Key: key, Pattern: pattern}
		c.groups[mapKey] = group
		c.order = append(c.order, mapKey)
	}
	group.Lines = append(group.Lines, line)
}

// Groups returns the match groups in insertion order.
func (c *Classifier) Groups() []*Group {
	groups := make([]*Group, 0, len(c.order))
	for _, key := range c.order {
		groups = append(groups, c.groups[key])
	}
	return groups
}

// Unknown returns the unmatched lines verbatim, in arrival order.
func (c *Classifier) Unknown() []string {
	return c.unknown
}

// Digest returns the clustered templates of the unknown lines.
func (c *Classifier) Digest() []DigestEntry {
	return c.digest.Entries()
}

// Stats returns the accumulated line accounting.
func (c *Classifier) Stats() Stats {
	return c.stats
}
