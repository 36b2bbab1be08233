package classify

import "strings"

// DedupRule sub-buckets a high-cardinality message family by a suffix of the
// line. When Marker appears in a line, the line is split at the LAST
// occurrence of Splitter and the suffix becomes the dedup key. The last
// occurrence matters: a line carrying multiple banning reasons buckets by
// the outermost one.
type DedupRule struct {
	Marker   string
	Splitter string
}

// DefaultDedupRules are the families worth sub-bucketing: peer bans (current
// and legacy backend phrasing) and block-import failures.
var DefaultDedupRules = []DedupRule{
	{Marker: "banned, disconnecting, reason:", Splitter: "banned, disconnecting, reason:"},
	{Marker: "Banned, disconnecting.", Splitter: "Reason:"},
	{Marker: "Error importing block", Splitter: ":"},
}

// dedupKey consults the rules in order and returns the key from the first
// rule whose marker appears in the line. At most one rule applies per line;
// a matching marker whose splitter is absent yields no key.
func dedupKey(line string, rules []DedupRule) (string, bool) {
	for _, rule := range rules {
		if !strings.Contains(line, rule.Marker) {
			continue
		}

		idx := strings.LastIndex(line, rule.Splitter)
		if idx < 0 {
			return "", false
		}
		return line[idx+len(rule.Splitter):], true
	}
	return "", false
}
