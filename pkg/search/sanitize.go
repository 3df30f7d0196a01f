package search

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxQueryLength = 100

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SanitizeFTSQuery escapes FTS5 special characters and wraps in quotes for literal matching.
// FTS5 has its own query language with operators (AND, OR, NOT, *, NEAR(), :, ", etc.).
// Even with parameterized queries, the FTS5 engine interprets these.
// This function ensures user input is treated as a literal phrase.
func SanitizeFTSQuery(input string) string {
	// 1. Trim and limit length, backing up to a rune boundary so a multi-byte
	// character is never cut in half
	input = strings.TrimSpace(input)
	if len(input) > maxQueryLength {
		cut := maxQueryLength
		for cut > 0 && !utf8.RuneStart(input[cut]) {
			cut--
		}
		input = input[:cut]
	}
	if input == "" {
		return ""
	}

	// 2. Escape double quotes (used for phrase matching in FTS5)
	input = strings.ReplaceAll(input, `"`, `""`)

	// 3. Wrap in double quotes to treat as literal phrase
	// This prevents operators like AND/OR/NOT from being interpreted
	return `"` + input + `"`
}

// BuildColumnPrefixQuery creates an FTS5 query scoped to a single column with
// a wildcard appended for prefix matching, e.g. `title:"ok comp"*`.
func BuildColumnPrefixQuery(column, userInput string) string {
	sanitized := SanitizeFTSQuery(userInput)
	if sanitized == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s*", column, sanitized)
}

// LikePattern wraps user input in wildcards for substring matching, escaping
// the LIKE metacharacters so they match literally. The resulting pattern must
// be used with ESCAPE '\'.
func LikePattern(input string) string {
	return "%" + likeEscaper.Replace(input) + "%"
}
