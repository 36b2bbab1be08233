package mining

import "strings"

// MacroPrefixes are the log-macro invocations mined for patterns, highest
// severity first. The prefix order is part of pattern emission order.
var MacroPrefixes = []string{"error!(", "warn!(", "warn_if_frequent!("}

// callSite is one located macro invocation within a source file.
type callSite struct {
	// start is the byte offset of the macro prefix.
	start int
	// end is the byte offset of the terminator (");" or "),").
	end int
	// region is the argument text between the prefix and the terminator.
	region string
	// severity is the macro name minus its trailing "!(".
	severity string
}

// earliestTerminator returns the offset of the earliest ");" or "),", or -1.
func earliestTerminator(s string) int {
	closeSemi := strings.Index(s, ");")
	closeComma := strings.Index(s, "),")

	switch {
	case closeSemi < 0:
		return closeComma
	case closeComma < 0:
		return closeSemi
	case closeComma < closeSemi:
		return closeComma
	default:
		return closeSemi
	}
}

// scanCallSites finds every invocation of prefix in text.
//
// The cursor advances to each call's terminator, so overlapping calls are not
// re-scanned. A call with no terminator anywhere to end-of-file means the
// file is malformed; the remainder of the file is abandoned for this prefix
// (end-of-file is never treated as a terminator). The returned bool is false
// in that case so the caller can emit a diagnostic.
func scanCallSites(text, prefix string) ([]callSite, bool) {
	severity := strings.TrimSuffix(prefix, "!(")

	var sites []callSite
	base := 0
	rest := text

	for {
		start := strings.Index(rest, prefix)
		if start < 0 {
			return sites, true
		}

		end := earliestTerminator(rest[start:])
		if end < 0 {
			return sites, false
		}

		sites = append(sites, callSite{
			start:    base + start,
			end:      base + start + end,
			region:   rest[start+len(prefix) : start+end],
			severity: severity,
		})

		base += start + end
		rest = rest[start+end:]
	}
}
