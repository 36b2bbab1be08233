package classify

import "regexp"

// Masking patterns compiled once at package initialization. Unknown lines
// are masked before clustering so that hashes, peer IDs, and addresses do
// not splinter one family into thousands of single-line templates.
var (
	// Block/extrinsic hashes and other 0x-prefixed values
	hexValuePattern = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`)

	// Bare long hex sequences (peer IDs, session keys)
	longHexPattern = regexp.MustCompile(`\b[0-9a-fA-F]{16,}\b`)

	// ISO timestamps as emitted by node log lines
	timestampPattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?\b`)

	// IPv4 addresses with optional port
	ipv4Pattern = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}(:\d+)?\b`)

	// libp2p peer IDs (base58, 12D3Koo prefix)
	peerIDPattern = regexp.MustCompile(`\b12D3Koo[1-9A-HJ-NP-Za-km-z]+\b`)

	// Block numbers in the "#1234567" form
	blockNumberPattern = regexp.MustCompile(`#\d+\b`)

	// Generic standalone numbers
	numberPattern = regexp.MustCompile(`\b\d+\b`)
)

// maskLine replaces the variable parts of an unknown log line with
// placeholders, specific patterns before generic ones.
func maskLine(line string) string {
	line = timestampPattern.ReplaceAllString(line, "<TS>")
	line = hexValuePattern.ReplaceAllString(line, "<HASH>")
	line = longHexPattern.ReplaceAllString(line, "<HASH>")
	line = peerIDPattern.ReplaceAllString(line, "<PEER>")
	line = ipv4Pattern.ReplaceAllString(line, "<ADDR>")
	line = blockNumberPattern.ReplaceAllString(line, "#<NUM>")
	line = numberPattern.ReplaceAllString(line, "<NUM>")
	return line
}
