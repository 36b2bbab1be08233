package classify

import (
	"sort"
	"strings"

	"github.com/faceair/drain"
)

// DigestConfig holds the Drain parameters used to cluster unknown lines.
type DigestConfig struct {
	// LogClusterDepth controls the depth of the parse tree (minimum 3).
	LogClusterDepth int

	// SimTh is the similarity threshold; node logs are fairly structured,
	// so a moderate value keeps families together without over-merging.
	SimTh float64

	// MaxChildren limits branches per node against explosion from
	// variable-starting lines.
	MaxChildren int

	// MaxClusters caps the number of templates (0 = unlimited).
	MaxClusters int

	// ParamString is the wildcard placeholder used in templates.
	ParamString string
}

// DefaultDigestConfig returns the clustering parameters tuned for node logs.
func DefaultDigestConfig() DigestConfig {
	return DigestConfig{
		LogClusterDepth: 4,
		SimTh:           0.4,
		MaxChildren:     100,
		MaxClusters:     0,
		ParamString:     "<*>",
	}
}

// DigestEntry is one clustered template of unknown lines with its count.
type DigestEntry struct {
	Template string
	Count    int
}

// UnknownDigest clusters unmatched lines into templates so operators can
// spot message families the miner produced no pattern for. It never feeds
// back into classification counts.
//
// Counts are keyed by cluster id, not template text: Drain refines a
// cluster's template as it learns, and counting by text would split one
// family across its template revisions.
type UnknownDigest struct {
	drain     *drain.Drain
	counts    map[string]int
	templates map[string]string
}

// NewUnknownDigest creates an empty digest.
func NewUnknownDigest(config DigestConfig) *UnknownDigest {
	return &UnknownDigest{
		drain: drain.New(&drain.Config{
			LogClusterDepth: config.LogClusterDepth,
			SimTh:           config.SimTh,
			MaxChildren:     config.MaxChildren,
			MaxClusters:     config.MaxClusters,
			ParamString:     config.ParamString,
		}),
		counts:    make(map[string]int),
		templates: make(map[string]string),
	}
}

// Observe masks and clusters one unknown line.
func (d *UnknownDigest) Observe(line string) {
	cluster := d.drain.Train(maskLine(line))
	if cluster == nil {
		return
	}

	id, template := parseCluster(cluster.String())
	d.counts[id]++
	d.templates[id] = template
}

// Entries returns the clustered templates sorted by descending count,
// ties broken by template text for deterministic output.
func (d *UnknownDigest) Entries() []DigestEntry {
	entries := make([]DigestEntry, 0, len(d.counts))
	for id, count := range d.counts {
		entries = append(entries, DigestEntry{Template: d.templates[id], Count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Template < entries[j].Template
	})

	return entries
}

// parseCluster splits Drain's cluster string into id and template.
// Drain cluster.String() format: "id={X} : size={Y} : [template]".
func parseCluster(clusterStr string) (id, template string) {
	firstSep := strings.Index(clusterStr, " : ")
	lastSep := strings.LastIndex(clusterStr, " : ")
	if firstSep == -1 {
		return clusterStr, clusterStr
	}
	return clusterStr[:firstSep], strings.TrimSpace(clusterStr[lastSep+3:])
}
