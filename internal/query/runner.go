package query

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/parity-tools/logtriage/internal/logging"
)

const (
	// retryAttempts bounds RunRetry: the panic scan tolerates transient
	// backend failures, the warn-err path does not.
	retryAttempts = 3

	// retryBackoff is the pause between attempts.
	retryBackoff = 5 * time.Second
)

// Runner executes query commands through a shell and collects stdout.
type Runner struct {
	logger *logging.Logger
}

// NewRunner creates a Runner.
func NewRunner() *Runner {
	return &Runner{logger: logging.GetLogger("query.runner")}
}

// Run executes one command via `sh -c` and returns its stdout bytes.
// A non-zero exit status is an error carrying the command's stderr.
func (r *Runner) Run(command string) ([]byte, error) {
	r.logger.Info("Running query: %s", command)
	start := time.Now()

	cmd := exec.Command("sh", "-c", command)
	stdout, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("query failed: %s: %s", exitErr, exitErr.Stderr)
		}
		return nil, fmt.Errorf("query failed: %w", err)
	}

	r.logger.Info("Query completed in %v", time.Since(start).Round(time.Millisecond))
	return stdout, nil
}

// RunRetry executes a command with a bounded retry budget. Used by the panic
// scan, where an hour-long sweep should survive a flaky backend chunk.
func (r *Runner) RunRetry(command string) ([]byte, error) {
	var stdout []byte

	operation := func() error {
		var err error
		stdout, err = r.Run(command)
		if err != nil {
			r.logger.Warn("Query attempt failed, retrying: %v", err)
		}
		return err
	}

	policy := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(retryBackoff),
		retryAttempts-1,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("query failed after %d attempts: %w", retryAttempts, err)
	}

	return stdout, nil
}
