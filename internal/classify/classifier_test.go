package classify

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parity-tools/logtriage/internal/mining"
)

func testPattern(expr string) mining.Pattern {
	return mining.Pattern{
		ID:       mining.GeneratePatternID("test.rs", expr),
		Expr:     expr,
		Regexp:   regexp.MustCompile(expr),
		File:     "test.rs",
		Severity: "warn",
	}
}

func TestClassifierStatsAccounting(t *testing.T) {
	patterns := mining.PatternList{testPattern("Failed to prove .* parachain")}
	c := NewClassifier(patterns)

	c.Consume("Failed to prove 2021 parachain")
	c.Consume("Failed to prove 2022 parachain")
	c.Consume("Failed to prove 2023 parachain")
	c.Consume("")
	c.Consume("")

	stats := c.Stats()
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Empty)
	assert.Equal(t, 3, stats.Matched)
	assert.Equal(t, 0, stats.Unknown)
	require.NoError(t, stats.Validate())

	groups := c.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Failed to prove .* parachain", groups[0].Key)
	assert.Equal(t, 3, groups[0].Count())
}

func TestClassifierUnknownLines(t *testing.T) {
	c := NewClassifier(mining.PatternList{testPattern("known family .*")})

	c.Consume("known family one")
	c.Consume("never seen this before")
	c.Consume("or this either")

	stats := c.Stats()
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 2, stats.Unknown)
	require.NoError(t, stats.Validate())

	assert.Equal(t, []string{"never seen this before", "or this either"}, c.Unknown())
}

func TestClassifierFirstMatchWins(t *testing.T) {
	// Both patterns match the line; only the first accrues.
	first := testPattern("peer .* disconnected")
	second := testPattern("peer abc disconnected")

	c := NewClassifier(mining.PatternList{first, second})
	c.Consume("peer abc disconnected")

	groups := c.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, first.Expr, groups[0].Key)

	// Swapping two patterns changes group attribution, never totals.
	swapped := NewClassifier(mining.PatternList{second, first})
	swapped.Consume("peer abc disconnected")

	assert.Equal(t, c.Stats(), swapped.Stats())
	require.Len(t, swapped.Groups(), 1)
	assert.Equal(t, second.Expr, swapped.Groups()[0].Key)
}

func TestClassifierIdempotence(t *testing.T) {
	patterns := mining.PatternList{testPattern("session info .* missing")}

	lines := []string{
		"session info 12 missing",
		"",
		"unmatched line",
		"session info 99 missing",
	}

	c := NewClassifier(patterns)
	for i := 0; i < 2; i++ {
		for _, line := range lines {
			c.Consume(line)
		}
	}

	stats := c.Stats()
	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 2, stats.Empty)
	assert.Equal(t, 4, stats.Matched)
	assert.Equal(t, 2, stats.Unknown)
	require.NoError(t, stats.Validate())

	// Exactly doubled counts per group
	groups := c.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, 4, groups[0].Count())
}

func TestClassifierDedupGrouping(t *testing.T) {
	patterns := mining.PatternList{testPattern(".* banned, disconnecting, reason: .*")}
	c := NewClassifier(patterns)

	c.Consume("peer123 banned, disconnecting, reason: BEEFY gossip")
	c.Consume("peer456 banned, disconnecting, reason: BEEFY gossip")
	c.Consume("peer789 banned, disconnecting, reason: Duplicate gossip")

	groups := c.Groups()
	require.Len(t, groups, 2)

	assert.Equal(t, ".* banned, disconnecting, reason: .*( BEEFY gossip)", groups[0].Key)
	assert.Equal(t, 2, groups[0].Count())
	assert.Equal(t, ".* banned, disconnecting, reason: .*( Duplicate gossip)", groups[1].Key)
	assert.Equal(t, 1, groups[1].Count())
}

func TestClassifierConsumeOutput(t *testing.T) {
	patterns := mining.PatternList{testPattern("Running panic query11")}
	c := NewClassifier(patterns)

	output := []byte("Running panic query11\n\nsomething else\nRunning panic query11\n")
	c.ConsumeOutput(output)

	stats := c.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Empty)
	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, 1, stats.Unknown)
	require.NoError(t, stats.Validate())
}

func TestClassifierConsumeOutputLossyUTF8(t *testing.T) {
	patterns := mining.PatternList{testPattern("valid line here")}
	c := NewClassifier(patterns)

	// 0xff is not valid UTF-8; the line must still be consumed
	c.ConsumeOutput([]byte("valid line here\nbroken \xff bytes\n"))

	stats := c.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 1, stats.Unknown)
	require.NoError(t, stats.Validate())
}

func TestClassifierDistinctCallSitesStayDistinct(t *testing.T) {
	// Same expression mined from two files: first-match-wins sends every
	// line to the first call site, the second never accrues.
	a := testPattern("duplicated expression .*")
	b := a
	b.ID = mining.GeneratePatternID("other.rs", b.Expr)
	b.File = "other.rs"

	c := NewClassifier(mining.PatternList{a, b})
	c.Consume("duplicated expression once")
	c.Consume("duplicated expression twice")

	groups := c.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "test.rs", groups[0].Pattern.File)
	assert.Equal(t, 2, groups[0].Count())
}

func TestStatsValidate(t *testing.T) {
	good := Stats{Total: 5, Empty: 2, Matched: 3, Unknown: 0}
	assert.NoError(t, good.Validate())

	bad := Stats{Total: 5, Empty: 1, Matched: 3, Unknown: 0}
	assert.Error(t, bad.Validate())
}
