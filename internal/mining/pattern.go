package mining

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
)

// Pattern is a compiled matcher derived from one log-macro call site.
type Pattern struct {
	// ID is a SHA-256 hash (hex-encoded) of file|expr for stable
	// identification of a call site across runs.
	ID string

	// Expr is the regex source derived from the format literal.
	Expr string

	// Regexp is Expr compiled. The transformation rules guarantee it
	// compiles; a failure there aborts the run.
	Regexp *regexp.Regexp

	// File is the archive path of the source file the call site lives in.
	File string

	// Start and End are byte offsets of the call-site span within File:
	// Start points at the macro prefix, End at the terminator.
	Start int
	End   int

	// Severity is the macro name minus its trailing "!(",
	// e.g. "error", "warn", "warn_if_frequent".
	Severity string
}

// GeneratePatternID creates a stable SHA-256 hash for a call-site pattern.
// Deterministic across runs so raw-dump bookkeeping can key on it.
func GeneratePatternID(file, expr string) string {
	canonical := fmt.Sprintf("%s|%s", file, expr)
	hash := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(hash[:])
}

// PatternList is an ordered collection of patterns.
//
// Order is semantically observable: the classifier applies first-match-wins,
// so this must stay a list in emission order, never a set.
type PatternList []Pattern

// Exprs returns the regex sources in emission order.
func (pl PatternList) Exprs() []string {
	exprs := make([]string, len(pl))
	for i := range pl {
		exprs[i] = pl[i].Expr
	}
	return exprs
}

// FindByID performs a linear search for a pattern by ID.
// Linear search is fine at the scale of one mined corpus (a few thousand).
func (pl PatternList) FindByID(id string) *Pattern {
	for i := range pl {
		if pl[i].ID == id {
			return &pl[i]
		}
	}
	return nil
}
