// Package fetch downloads a source repository branch tarball and yields the
// source files the pattern miner scans.
package fetch

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/parity-tools/logtriage/internal/logging"
)

// SourceExtension selects which archive entries are loaded.
// The fleet's node software is Rust, so call sites live in .rs files.
const SourceExtension = ".rs"

// SourceFile is one extracted archive entry.
type SourceFile struct {
	// Path is the entry path inside the archive (includes the top level
	// "<repo>-<branch>/" directory github prepends).
	Path string

	// Text is the full file content, assumed UTF-8.
	Text string
}

// Fetcher downloads and unpacks branch tarballs.
type Fetcher struct {
	httpClient *http.Client
	logger     *logging.Logger
}

// NewFetcher creates a Fetcher with a tuned HTTP client.
// timeout bounds the whole download; archives run to hundreds of MB.
func NewFetcher(timeout time.Duration) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &Fetcher{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		logger: logging.GetLogger("fetch"),
	}
}

// ArchiveURL builds the canonical branch tarball URL for a repository.
func ArchiveURL(repoURL, branch string) string {
	return fmt.Sprintf("%s/archive/%s.tar.gz", strings.TrimSuffix(repoURL, "/"), branch)
}

// Fetch downloads <repoURL>/archive/<branch>.tar.gz and returns every entry
// whose path ends in SourceExtension, fully buffered in memory.
// Any network, HTTP-status, gzip, or tar error fails the whole fetch.
func (f *Fetcher) Fetch(ctx context.Context, repoURL, branch string) ([]SourceFile, error) {
	url := ArchiveURL(repoURL, branch)
	f.logger.Info("Fetching source archive from %s", url)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create archive request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain the body so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch archive: unexpected status %d for %s", resp.StatusCode, url)
	}

	files, err := extractArchive(resp.Body)
	if err != nil {
		return nil, err
	}

	f.logger.InfoWithFields("Fetched source files",
		logging.Field("files", len(files)),
		logging.Field("elapsed", time.Since(start).Round(time.Millisecond)),
	)

	return files, nil
}

// extractArchive walks a gzip-compressed tar stream and loads matching files.
func extractArchive(r io.Reader) ([]SourceFile, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)

	var files []SourceFile
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read archive entry: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}
		if !strings.HasSuffix(header.Name, SourceExtension) {
			continue
		}

		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read archive entry %s: %w", header.Name, err)
		}

		files = append(files, SourceFile{
			Path: header.Name,
			Text: string(content),
		})
	}

	return files, nil
}
