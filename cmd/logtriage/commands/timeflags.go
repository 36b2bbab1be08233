package commands

import (
	"fmt"
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

// parseTimeFlag parses a --start-time/--end-time value. The documented
// format "YYYY-MM-DDTHH:MM:SSZ" is the fast path; anything else goes
// through the human-date parser ("yesterday", "2 hours ago", "March 1").
// fieldName is used for error messages. An empty value is not an error,
// it means the flag was not set.
func parseTimeFlag(value, fieldName string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}

	parser := dps.Parser{}
	cfg := &dps.Configuration{
		PreferredDateSource: dps.CurrentPeriod,
	}

	parsed, err := parser.Parse(cfg, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339 or a human-readable date: %v", fieldName, err)
	}
	if parsed.Time.IsZero() {
		return time.Time{}, fmt.Errorf("%s could not be parsed as a date: %s", fieldName, value)
	}

	return parsed.Time.UTC(), nil
}
