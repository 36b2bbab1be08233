package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/parity-tools/logtriage/internal/classify"
	"github.com/parity-tools/logtriage/internal/config"
	"github.com/parity-tools/logtriage/internal/fetch"
	"github.com/parity-tools/logtriage/internal/logging"
	"github.com/parity-tools/logtriage/internal/mining"
	"github.com/parity-tools/logtriage/internal/query"
	"github.com/parity-tools/logtriage/internal/report"
)

const fetchTimeout = 5 * time.Minute

// triageMode is what distinguishes the warn-err and panics pipelines: how
// the backend query is shaped, which local-file lines are kept, and whether
// subprocess failures are retried.
type triageMode struct {
	name string

	// levels narrows the stream selector; empty means no level filter.
	levels []string

	// appendedQuery is extra query text after the stream selector.
	appendedQuery string

	// prefilterTerms keeps only local-file lines containing at least one
	// term. The backend applies the equivalent filter server-side.
	prefilterTerms []string

	// retry wraps each subprocess run in the bounded retry loop.
	retry bool
}

// triageFlags is the flag set shared by warn-err and panics.
type triageFlags struct {
	address        string
	chain          string
	node           string
	file           string
	startTime      string
	endTime        string
	orgID          string
	skipRegexBuild bool
	regexRepo      string
	regexBranch    string
	raw            bool
	configFile     string
}

// register wires the shared flag set onto a command.
func (f *triageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.address, "address", config.DefaultAddress, "Query backend base URL")
	cmd.Flags().StringVar(&f.chain, "chain", config.DefaultChain, "Chain label of the stream selector")
	cmd.Flags().StringVar(&f.node, "node", "", "Optional node=~ selector")
	cmd.Flags().StringVar(&f.file, "file", "", "Classify a local log file instead of querying")
	cmd.Flags().StringVar(&f.startTime, "start-time", "", "Window start, YYYY-MM-DDTHH:MM:SSZ or human-readable")
	cmd.Flags().StringVar(&f.endTime, "end-time", "", "Window end, YYYY-MM-DDTHH:MM:SSZ or human-readable")
	cmd.Flags().StringVar(&f.orgID, "org-id", "", "Backend tenant forwarded as --org-id")
	cmd.Flags().BoolVar(&f.skipRegexBuild, "skip-regex-build", false, "Skip pattern mining, classify with an empty pattern set")
	cmd.Flags().StringVar(&f.regexRepo, "regex-repo", config.DefaultRegexRepo, "Source repository URL to mine patterns from")
	cmd.Flags().StringVar(&f.regexBranch, "regex-branch", config.DefaultRegexBranch, "Source branch to mine patterns from")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "Dump raw matched lines per group")
	cmd.Flags().StringVar(&f.configFile, "config", "", "Optional YAML config file, flags win over file values")
}

// buildConfig merges the optional config file with the flags. Flags that
// were explicitly set override file values; everything else keeps the file
// value or the default.
func (f *triageFlags) buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	if f.configFile != "" {
		loaded, err := config.LoadFile(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	override := func(flag string, apply func()) {
		if f.configFile == "" || cmd.Flags().Changed(flag) {
			apply()
		}
	}
	override("address", func() { cfg.Address = f.address })
	override("chain", func() { cfg.Chain = f.chain })
	override("node", func() { cfg.Node = f.node })
	override("file", func() { cfg.File = f.file })
	override("org-id", func() { cfg.OrgID = f.orgID })
	override("skip-regex-build", func() { cfg.SkipRegexBuild = f.skipRegexBuild })
	override("regex-repo", func() { cfg.RegexRepo = f.regexRepo })
	override("regex-branch", func() { cfg.RegexBranch = f.regexBranch })
	override("raw", func() { cfg.Raw = f.raw })

	start, err := parseTimeFlag(f.startTime, "start-time")
	if err != nil {
		return nil, err
	}
	end, err := parseTimeFlag(f.endTime, "end-time")
	if err != nil {
		return nil, err
	}
	cfg.StartTime = start
	cfg.EndTime = end

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runTriage executes the full pipeline: mine patterns, gather lines from
// the backend or a local file, classify, and print the report.
func runTriage(cfg *config.Config, mode triageMode) error {
	logger := logging.GetLogger("triage")
	started := time.Now()

	patterns, err := buildPatterns(cfg)
	if err != nil {
		return err
	}
	logger.Info("Classifying with %d patterns", len(patterns))

	classifier := classify.NewClassifier(patterns)

	if cfg.File != "" {
		if err := classifyFile(classifier, cfg.File, mode.prefilterTerms); err != nil {
			return err
		}
	} else {
		if err := classifyBackend(classifier, cfg, mode); err != nil {
			return err
		}
	}

	return report.NewReporter(os.Stdout, cfg.Raw).Print(classifier, time.Since(started))
}

// buildPatterns fetches the source tree and mines it, unless mining was
// skipped.
func buildPatterns(cfg *config.Config) (mining.PatternList, error) {
	if cfg.SkipRegexBuild {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	files, err := fetch.NewFetcher(fetchTimeout).Fetch(ctx, cfg.RegexRepo, cfg.RegexBranch)
	if err != nil {
		return nil, fmt.Errorf("fetching pattern source: %w", err)
	}

	return mining.NewMiner().BuildPatterns(files)
}

// classifyFile feeds a local log file through the classifier, keeping only
// lines containing one of the prefilter terms.
func classifyFile(classifier *classify.Classifier, path string, terms []string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading log file: %w", err)
	}

	text := strings.ToValidUTF8(string(raw), "�")
	for _, line := range strings.Split(text, "\n") {
		if !containsAny(line, terms) {
			continue
		}
		classifier.Consume(line)
	}
	return nil
}

// classifyBackend runs the chunked backend queries and feeds each chunk's
// stdout through the classifier.
func classifyBackend(classifier *classify.Classifier, cfg *config.Config, mode triageMode) error {
	logger := logging.GetLogger("triage")

	builder := query.NewBuilder().
		Address(cfg.Address).
		Chain(cfg.Chain).
		Window(cfg.StartTime, cfg.EndTime).
		Levels(mode.levels...).
		Batch(cfg.Batch).
		Limit(cfg.Limit).
		ExcludeCommonErrors(cfg.ExcludeCommonErrors).
		AppendQuery(mode.appendedQuery).
		OrgID(cfg.OrgID).
		Node(cfg.Node)

	commands, err := builder.BuildChunks()
	if err != nil {
		return err
	}

	runner := query.NewRunner()
	for i, command := range commands {
		logger.Info("Query chunk %d/%d", i+1, len(commands))

		var output []byte
		if mode.retry {
			output, err = runner.RunRetry(command)
		} else {
			output, err = runner.Run(command)
		}
		if err != nil {
			return fmt.Errorf("query %d/%d failed: %w", i+1, len(commands), err)
		}

		classifier.ConsumeOutput(output)
	}
	return nil
}

// containsAny reports whether the line contains at least one term. An
// empty term list keeps every line.
func containsAny(line string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, term := range terms {
		if strings.Contains(line, term) {
			return true
		}
	}
	return false
}
