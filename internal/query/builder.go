// Package query builds and runs logcli commands against the log backend.
//
// The backend query language and transport stay external: this package only
// constructs shell command strings for the logcli binary and collects their
// stdout. Long windows are chunked into one-hour subqueries to keep each
// invocation inside the backend's result limits.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/parity-tools/logtriage/internal/logging"
)

const (
	// DefaultChain is the stream-selector label queried when none is set.
	DefaultChain = "versi-networking"

	// DefaultBatch is the logcli batch size.
	DefaultBatch = 5000

	// DefaultLimit is the logcli result limit per query.
	DefaultLimit = 100000

	// timeFormat is the timestamp layout logcli expects.
	timeFormat = "2006-01-02T15:04:05Z"

	// chunkSize is the sub-window length used by BuildChunks.
	chunkSize = time.Hour
)

// excludeKnownErrors filters message families that drown out everything else:
// telemetry dial errors, PVF security-setting warnings, and validator
// hardware-inadequacy warnings.
const excludeKnownErrors = " != `Error while dialing` != `Some security issues have been detected` != `The hardware does not meet`"

// Builder assembles logcli query commands.
type Builder struct {
	address             string
	chain               string
	startTime           time.Time
	endTime             time.Time
	levels              []string
	batch               int
	limit               int
	excludeCommonErrors bool
	appendedQuery       string
	orgID               string
	node                string

	logger *logging.Logger
	now    func() time.Time
}

// NewBuilder creates a Builder with the defaults: batch 5000, limit 100000,
// common-error exclusion on, window resolved to the last hour at build time.
func NewBuilder() *Builder {
	return &Builder{
		batch:               DefaultBatch,
		limit:               DefaultLimit,
		excludeCommonErrors: true,
		logger:              logging.GetLogger("query"),
		now:                 time.Now,
	}
}

// Address sets the backend base URL.
func (b *Builder) Address(address string) *Builder {
	b.address = address
	return b
}

// Chain sets the chain stream-selector label.
func (b *Builder) Chain(chain string) *Builder {
	b.chain = chain
	return b
}

// Window sets the query time window. Both bounds zero means last hour,
// resolved when a command is built. Setting exactly one bound is rejected
// at build time.
func (b *Builder) Window(start, end time.Time) *Builder {
	b.startTime = start
	b.endTime = end
	return b
}

// Levels restricts the query to the given severity levels.
func (b *Builder) Levels(levels ...string) *Builder {
	b.levels = levels
	return b
}

// Batch overrides the logcli batch size.
func (b *Builder) Batch(batch int) *Builder {
	b.batch = batch
	return b
}

// Limit overrides the logcli result limit.
func (b *Builder) Limit(limit int) *Builder {
	b.limit = limit
	return b
}

// ExcludeCommonErrors toggles the known-noise exclusion clauses.
func (b *Builder) ExcludeCommonErrors(exclude bool) *Builder {
	b.excludeCommonErrors = exclude
	return b
}

// AppendQuery appends a query suffix verbatim inside the selector quotes.
func (b *Builder) AppendQuery(query string) *Builder {
	b.appendedQuery = query
	return b
}

// OrgID forwards an organization ID to logcli.
func (b *Builder) OrgID(orgID string) *Builder {
	b.orgID = orgID
	return b
}

// Node restricts the query to one node via a node=~ selector.
func (b *Builder) Node(node string) *Builder {
	b.node = node
	return b
}

// resolveWindow returns the effective window. Both bounds unset defaults to
// now-1h..now; exactly one bound set is a configuration error.
func (b *Builder) resolveWindow() (time.Time, time.Time, error) {
	switch {
	case b.startTime.IsZero() && b.endTime.IsZero():
		end := b.now().UTC().Truncate(time.Second)
		start := end.Add(-time.Hour)
		b.logger.Debug("Using generated window %s .. %s",
			start.Format(timeFormat), end.Format(timeFormat))
		return start, end, nil
	case !b.startTime.IsZero() && !b.endTime.IsZero():
		return b.startTime.UTC(), b.endTime.UTC(), nil
	default:
		return time.Time{}, time.Time{},
			fmt.Errorf("either both start and end time must be provided or neither")
	}
}

// command renders one logcli invocation for the given window.
func (b *Builder) command(start, end time.Time) string {
	address := b.address
	chain := b.chain
	if chain == "" {
		chain = DefaultChain
	}

	var selector strings.Builder
	fmt.Fprintf(&selector, "{chain=%q", chain)
	if len(b.levels) > 0 {
		fmt.Fprintf(&selector, ", level=~%q", strings.Join(b.levels, "|"))
	}
	if b.node != "" {
		fmt.Fprintf(&selector, ", node=~%q", b.node)
	}
	selector.WriteString("}")

	exclude := ""
	if b.excludeCommonErrors {
		exclude = excludeKnownErrors
	}

	appended := ""
	if b.appendedQuery != "" {
		appended = " " + b.appendedQuery
	}

	orgID := ""
	if b.orgID != "" {
		orgID = fmt.Sprintf(" --org-id='%s'", b.orgID)
	}

	return fmt.Sprintf(
		`logcli query --addr=%s --timezone=UTC --from=%q --to=%q '%s%s%s' --batch %d --limit %d%s`,
		address,
		start.Format(timeFormat),
		end.Format(timeFormat),
		selector.String(),
		exclude,
		appended,
		b.batch,
		b.limit,
		orgID,
	)
}

// Build renders a single query command covering the whole window.
func (b *Builder) Build() (string, error) {
	start, end, err := b.resolveWindow()
	if err != nil {
		return "", err
	}
	return b.command(start, end), nil
}

// BuildChunks partitions the window into consecutive one-hour sub-windows,
// each rendered as an independent query command. A trailing remainder
// shorter than an hour forms a final query ending at the original end.
func (b *Builder) BuildChunks() ([]string, error) {
	start, end, err := b.resolveWindow()
	if err != nil {
		return nil, err
	}

	var commands []string

	chunkStart := start
	chunkEnd := start.Add(chunkSize)
	for chunkEnd.Before(end) {
		commands = append(commands, b.command(chunkStart, chunkEnd))
		chunkStart = chunkEnd
		chunkEnd = chunkEnd.Add(chunkSize)
	}

	if chunkStart.Before(end) {
		commands = append(commands, b.command(chunkStart, end))
	}

	b.logger.Debug("Built %d query chunks for window %s .. %s",
		len(commands), start.Format(timeFormat), end.Format(timeFormat))

	return commands, nil
}
