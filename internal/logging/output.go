package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

const levelFatal = "FATAL"

// writeLog formats and emits one log line.
// ERROR and FATAL go to stderr; everything else goes to stdout. Report output
// is written to stdout by the reporter, so routing diagnostics away from it
// matters for piping.
func (l *Logger) writeLog(level, msg string, fields map[string]interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s: %s", GetTimestamp(), level, l.name, msg)

	if len(fields) > 0 {
		// Sorted keys keep output deterministic for tests
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}

	if level == strError || level == levelFatal {
		fmt.Fprintln(os.Stderr, b.String())
	} else {
		fmt.Fprintln(os.Stdout, b.String())
	}
}

// logf handles printf-style messages, carrying the logger's persistent fields
func (l *Logger) logf(level, msg string, args ...interface{}) {
	formatted := fmt.Sprintf(msg, args...)

	var fields map[string]interface{}
	if len(l.fields) > 0 {
		fields = cloneFields(l.fields)
	}

	l.writeLog(level, formatted, fields)
}

// GetTimestamp returns an RFC3339 timestamp.
// The LOG_TIMESTAMP env var overrides it for deterministic test output.
func GetTimestamp() string {
	if override := os.Getenv("LOG_TIMESTAMP"); override != "" {
		return override
	}
	return time.Now().Format(time.RFC3339)
}
