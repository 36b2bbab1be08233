package mining

import (
	"strings"
	"unicode"
)

// isNoiseChar matches the characters trimmed from the edges of a candidate
// literal: stray quotes, commas, spaces, and escape backslashes.
func isNoiseChar(r rune) bool {
	return r == '"' || r == ',' || r == ' ' || r == '\\'
}

// extractFormatLiteral pulls the format-string literal out of a call-site
// argument region.
//
// The region has one of two shapes. In the leading-literal form the region
// starts with a quote and the format string is simply everything up to the
// closing quote. In the structured-field form
// (`target: X, ?session, "message {}"`) we walk comma-separated segments: a
// segment whose content between the comma and the next quote is pure
// whitespace introduces the literal, and the text inside that quote pair is
// the candidate. A multi-line candidate keeps only its first line; the rest
// is format-args spillover. If no segment qualifies, the remaining region
// trimmed of edge noise is used.
//
// An empty result means extraction failed.
func extractFormatLiteral(region string) string {
	// Leading literal: the format string is the first argument.
	if trimmed := strings.TrimLeftFunc(region, unicode.IsSpace); strings.HasPrefix(trimmed, `"`) {
		return clipCandidate(trimmed[1:])
	}

	line := region

	for {
		inStart := strings.Index(line, ",")
		if inStart < 0 {
			break
		}

		inStr := line[inStart+1:]

		// Advance for the next search.
		line = inStr

		inEnd := strings.Index(inStr, `"`)
		if inEnd < 0 {
			inEnd = 0
		}

		toFind := inStr[:inEnd]
		if !isAllWhitespace(toFind) {
			continue
		}

		if len(inStr) < inEnd+1 {
			break
		}

		return clipCandidate(inStr[inEnd+1:])
	}

	// No comma-scan candidate. Use what is left of the region.
	rest := strings.TrimSpace(line)
	rest = strings.TrimRightFunc(rest, isNoiseChar)
	rest = strings.TrimLeftFunc(rest, isNoiseChar)
	return rest
}

// clipCandidate takes the text following an opening quote and returns the
// candidate literal: everything up to the closing quote, clipped to its
// first line (spillover belongs to format args), with trailing noise
// trimmed. Returns "" when no closing quote follows.
func clipCandidate(afterQuote string) string {
	end := strings.Index(afterQuote, `"`)
	if end < 0 {
		end = 0
	}
	candidate := afterQuote[:end]

	if nl := strings.IndexByte(candidate, '\n'); nl >= 0 {
		candidate = candidate[:nl]
	}

	return strings.TrimRightFunc(candidate, isNoiseChar)
}

// isAllWhitespace reports whether s contains only whitespace.
// The empty string qualifies.
func isAllWhitespace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// normalizeBraces elides everything strictly inside {...} pairs, reducing
// every format placeholder ({}, {:?}, {x:?}) to the two-character sequence
// "{}". Returns the normalized literal and the number of opening braces.
// An unbalanced trailing "{" gets a closing brace appended.
func normalizeBraces(literal string) (string, int) {
	var b strings.Builder
	depth := 0
	numBraces := 0

	for _, r := range literal {
		switch {
		case r == '{':
			depth++
			numBraces++
			b.WriteRune(r)
		case r == '}':
			depth--
			b.WriteRune(r)
		case depth == 0:
			b.WriteRune(r)
		}
	}

	if depth > 0 {
		b.WriteByte('}')
	}

	return b.String(), numBraces
}

// hasAlphabetic reports whether s contains at least one letter.
func hasAlphabetic(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
