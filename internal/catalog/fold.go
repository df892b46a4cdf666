package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes text for case-insensitive comparison: NFC, Unicode case
// folding, trimmed. Book duplicate keys, genre keys and search text are all
// stored folded.
func Fold(s string) string {
	// cases.Caser is stateful, so one per call.
	return strings.TrimSpace(cases.Fold().String(norm.NFC.String(s)))
}

// SearchText is the folded haystack matched by text search.
func SearchText(title, author, description string) string {
	return Fold(title) + "\n" + Fold(author) + "\n" + Fold(description)
}

// UserSearchText is the folded haystack matched by user search.
func UserSearchText(username, displayName string) string {
	return Fold(username) + "\n" + Fold(displayName)
}
