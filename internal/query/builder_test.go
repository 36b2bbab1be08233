package query

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedBuilder() *Builder {
	b := NewBuilder().Address("http://loki.example.io")
	b.now = func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return b
}

func window(b *Builder, startHour, endHour int) *Builder {
	return b.Window(
		time.Date(2024, 3, 1, startHour, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, endHour, 0, 0, 0, time.UTC),
	)
}

func TestBuildDefaults(t *testing.T) {
	cmd, err := fixedBuilder().Build()
	require.NoError(t, err)

	// Window defaults to the last hour relative to now
	assert.Contains(t, cmd, `--from="2024-03-01T11:00:00Z"`)
	assert.Contains(t, cmd, `--to="2024-03-01T12:00:00Z"`)

	assert.Contains(t, cmd, "logcli query --addr=http://loki.example.io --timezone=UTC")
	assert.Contains(t, cmd, `{chain="versi-networking"}`)
	assert.Contains(t, cmd, "--batch 5000")
	assert.Contains(t, cmd, "--limit 100000")

	// Common-error exclusions are on by default
	assert.Contains(t, cmd, "!= `Error while dialing`")
	assert.Contains(t, cmd, "!= `Some security issues have been detected`")
	assert.Contains(t, cmd, "!= `The hardware does not meet`")

	assert.NotContains(t, cmd, "--org-id")
	assert.NotContains(t, cmd, "node=~")
}

func TestBuildFullOptions(t *testing.T) {
	b := window(fixedBuilder(), 8, 9).
		Chain("kusama").
		Levels("WARN", "ERROR").
		Node("validator-7").
		Batch(100).
		Limit(2000).
		OrgID("parity").
		AppendQuery(`|= "panic"`)

	cmd, err := b.Build()
	require.NoError(t, err)

	assert.Contains(t, cmd, `{chain="kusama", level=~"WARN|ERROR", node=~"validator-7"}`)
	assert.Contains(t, cmd, `--from="2024-03-01T08:00:00Z"`)
	assert.Contains(t, cmd, `--to="2024-03-01T09:00:00Z"`)
	assert.Contains(t, cmd, `|= "panic"'`)
	assert.Contains(t, cmd, "--batch 100")
	assert.Contains(t, cmd, "--limit 2000")
	assert.Contains(t, cmd, "--org-id='parity'")
}

func TestBuildExcludeDisabled(t *testing.T) {
	cmd, err := fixedBuilder().ExcludeCommonErrors(false).Build()
	require.NoError(t, err)
	assert.NotContains(t, cmd, "Error while dialing")
}

func TestBuildAsymmetricWindow(t *testing.T) {
	b := fixedBuilder().Window(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), time.Time{})
	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both start and end")

	b = fixedBuilder().Window(time.Time{}, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	_, err = b.BuildChunks()
	require.Error(t, err)
}

func TestBuildChunksExactHours(t *testing.T) {
	cmds, err := window(fixedBuilder(), 6, 9).BuildChunks()
	require.NoError(t, err)
	require.Len(t, cmds, 3)

	for i, cmd := range cmds {
		assert.Contains(t, cmd, fmt.Sprintf(`--from="2024-03-01T%02d:00:00Z"`, 6+i))
		assert.Contains(t, cmd, fmt.Sprintf(`--to="2024-03-01T%02d:00:00Z"`, 7+i))
	}
}

func TestBuildChunksRemainder(t *testing.T) {
	b := fixedBuilder().Window(
		time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC),
	)

	cmds, err := b.BuildChunks()
	require.NoError(t, err)
	require.Len(t, cmds, 3)

	// The trailing remainder ends at the original end time
	assert.Contains(t, cmds[2], `--from="2024-03-01T08:00:00Z"`)
	assert.Contains(t, cmds[2], `--to="2024-03-01T08:30:00Z"`)
}

func TestBuildChunksSingleHourWindow(t *testing.T) {
	cmds, err := window(fixedBuilder(), 6, 7).BuildChunks()
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Contains(t, cmds[0], `--from="2024-03-01T06:00:00Z"`)
	assert.Contains(t, cmds[0], `--to="2024-03-01T07:00:00Z"`)
}

func TestBuildChunksSubHourWindow(t *testing.T) {
	b := fixedBuilder().Window(
		time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 6, 20, 0, 0, time.UTC),
	)

	cmds, err := b.BuildChunks()
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Contains(t, cmds[0], `--to="2024-03-01T06:20:00Z"`)
}

func TestBuildChunksAscendingOrder(t *testing.T) {
	cmds, err := window(fixedBuilder(), 0, 5).BuildChunks()
	require.NoError(t, err)
	require.Len(t, cmds, 5)

	var previous string
	for _, cmd := range cmds {
		from := cmd[strings.Index(cmd, "--from="):]
		assert.True(t, previous < from || previous == "",
			"chunks must be in ascending time order")
		previous = from
	}
}
