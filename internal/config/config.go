// Package config holds the run configuration shared by the triage commands.
package config

import (
	"fmt"
	"time"
)

// Defaults for the query backend and the pattern source.
const (
	DefaultAddress     = "http://loki.parity-versi.parity.io"
	DefaultChain       = "versi-networking"
	DefaultRegexRepo   = "https://github.com/paritytech/polkadot-sdk"
	DefaultRegexBranch = "master"
	DefaultBatch       = 5000
	DefaultLimit       = 100000
)

// Config holds everything one triage run needs: where to query, which time
// window, and where the pattern source lives.
type Config struct {
	// Address is the logcli backend endpoint.
	Address string `yaml:"address"`

	// Chain selects the stream by chain label.
	Chain string `yaml:"chain"`

	// Node optionally narrows the stream to one node.
	Node string `yaml:"node"`

	// OrgID is the optional backend tenant.
	OrgID string `yaml:"orgId"`

	// StartTime and EndTime bound the query window. Both zero means the
	// last hour; setting exactly one is invalid.
	StartTime time.Time `yaml:"-"`
	EndTime   time.Time `yaml:"-"`

	// Batch and Limit are passed through to logcli.
	Batch int `yaml:"batch"`
	Limit int `yaml:"limit"`

	// ExcludeCommonErrors appends the stock infrastructure-noise filters
	// to the query.
	ExcludeCommonErrors bool `yaml:"excludeCommonErrors"`

	// AppendedQuery is extra query text placed after the stream selector.
	AppendedQuery string `yaml:"appendedQuery"`

	// RegexRepo and RegexBranch locate the source tree the patterns are
	// mined from.
	RegexRepo   string `yaml:"regexRepo"`
	RegexBranch string `yaml:"regexBranch"`

	// SkipRegexBuild disables mining; every line lands in the unknowns.
	SkipRegexBuild bool `yaml:"skipRegexBuild"`

	// File, when set, classifies a local log file instead of querying.
	File string `yaml:"file"`

	// Raw re-prints each group's raw lines after the report table.
	Raw bool `yaml:"raw"`
}

// NewConfig returns a Config carrying the defaults.
func NewConfig() *Config {
	return &Config{
		Address:             DefaultAddress,
		Chain:               DefaultChain,
		Batch:               DefaultBatch,
		Limit:               DefaultLimit,
		ExcludeCommonErrors: true,
		RegexRepo:           DefaultRegexRepo,
		RegexBranch:         DefaultRegexBranch,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.StartTime.IsZero() != c.EndTime.IsZero() {
		return NewConfigError("StartTime and EndTime must be set together or not at all")
	}
	if !c.StartTime.IsZero() && !c.EndTime.After(c.StartTime) {
		return NewConfigError("EndTime must be after StartTime")
	}

	if !c.SkipRegexBuild {
		if c.RegexRepo == "" {
			return NewConfigError("RegexRepo must not be empty when pattern mining is enabled")
		}
		if c.RegexBranch == "" {
			return NewConfigError("RegexBranch must not be empty when pattern mining is enabled")
		}
	}

	if c.File == "" {
		if c.Address == "" {
			return NewConfigError("Address must not be empty when querying the backend")
		}
		if c.Chain == "" {
			return NewConfigError("Chain must not be empty when querying the backend")
		}
		if c.Batch < 1 {
			return NewConfigError(fmt.Sprintf("Batch must be at least 1, got %d", c.Batch))
		}
		if c.Limit < 1 {
			return NewConfigError(fmt.Sprintf("Limit must be at least 1, got %d", c.Limit))
		}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}
