// Package mining statically mines warning/error log call sites from source
// files and compiles each call's format literal into a regex pattern.
//
// The extractor is deliberately forgiving: call sites span multiple lines,
// interleave structured fields with the format string, and nest parentheses
// inside format arguments. It generalises only the variable parts of a
// literal ({} placeholders become .*) and keeps enough literal text to
// discriminate message families.
package mining

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/parity-tools/logtriage/internal/fetch"
	"github.com/parity-tools/logtriage/internal/logging"
)

// minPatternLength rejects patterns too short to discriminate anything.
const minPatternLength = 10

// povSizePrefix is a known ambiguity in the mined corpus: the "PoV size"
// family extracts inconsistently across call sites, so any pattern starting
// with it collapses to a single wildcard family.
const povSizePrefix = "PoV size"

// regexEscaper escapes exactly the four bracketing meta characters. Other
// regex meta characters (., ?, +, *) are emitted raw; node log strings
// rarely contain them and the approximation keeps patterns readable.
var regexEscaper = strings.NewReplacer(
	"(", `\(`,
	")", `\)`,
	"[", `\[`,
	"]", `\]`,
)

// Miner turns source files into compiled log patterns.
type Miner struct {
	prefixes []string
	logger   *logging.Logger
}

// NewMiner creates a Miner scanning the default macro prefix set.
func NewMiner() *Miner {
	return &Miner{
		prefixes: MacroPrefixes,
		logger:   logging.GetLogger("mining"),
	}
}

// BuildPatterns scans every file for log-macro call sites and returns the
// compiled patterns in emission order: per-file scan order, within the
// prefix iteration order, across files in input order.
//
// A malformed call site (no terminator) is a logged diagnostic, not an
// error. A regex that fails to compile is impossible by construction of the
// transformation rules; if it happens anyway the whole run aborts.
func (m *Miner) BuildPatterns(files []fetch.SourceFile) (PatternList, error) {
	var patterns PatternList

	for _, file := range files {
		for _, prefix := range m.prefixes {
			sites, ok := scanCallSites(file.Text, prefix)
			if !ok {
				m.logger.Error("File %s is malformed: %s call without terminator", file.Path, prefix)
			}

			for _, site := range sites {
				expr, ok := buildExpr(site.region)
				if !ok {
					continue
				}

				compiled, err := regexp.Compile(expr)
				if err != nil {
					return nil, fmt.Errorf("compile pattern %q from %s: %w", expr, file.Path, err)
				}

				patterns = append(patterns, Pattern{
					ID:       GeneratePatternID(file.Path, expr),
					Expr:     expr,
					Regexp:   compiled,
					File:     file.Path,
					Start:    site.start,
					End:      site.end,
					Severity: site.severity,
				})
			}
		}
	}

	m.logger.Info("Compiled %d patterns from %d files", len(patterns), len(files))
	return patterns, nil
}

// buildExpr transforms a call-site argument region into a regex source.
// The returned bool is false when the region yields no usable pattern:
// extraction failed, the literal is placeholders only, the result has no
// alphabetic character, or it is shorter than minPatternLength.
func buildExpr(region string) (string, bool) {
	literal := extractFormatLiteral(region)
	if literal == "" {
		return "", false
	}

	normalized, numBraces := normalizeBraces(literal)

	// Literals that are nothing but {} placeholders match everything.
	if len(normalized) == numBraces*2 {
		return "", false
	}

	expr := strings.ReplaceAll(normalized, "{}", ".*")
	expr = regexEscaper.Replace(expr)

	if !hasAlphabetic(expr) {
		return "", false
	}
	if len(expr) < minPatternLength {
		return "", false
	}

	if strings.HasPrefix(expr, povSizePrefix) {
		expr = povSizePrefix + " .*"
	}

	return expr, true
}
