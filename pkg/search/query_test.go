package search

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestParseTerms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		op    TermOp
		terms []string
	}{
		{"single term", "rock", TermSingle, []string{"rock"}},
		{"single term trims and lowers", "  Rock  ", TermSingle, []string{"rock"}},
		{"and query", "rock and alternative", TermAnd, []string{"rock", "alternative"}},
		{"or query", "rock or jazz", TermOr, []string{"rock", "jazz"}},
		{"and with three terms", "a and b and c", TermAnd, []string{"a", "b", "c"}},
		{"and takes priority over or", "rock and jazz or blues", TermAnd, []string{"rock", "jazz or blues"}},
		{"empty terms dropped", "rock and  and jazz", TermAnd, []string{"rock", "jazz"}},
		{"embedded and without spaces is literal", "band", TermSingle, []string{"band"}},
		{"empty query", "   ", TermSingle, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tq := ParseTerms(tt.query)
			require.Equal(t, tt.op, tq.Op)
			require.Equal(t, tt.terms, tq.Terms)
		})
	}
}

func TestBuildColumnPrefixQuery(t *testing.T) {
	t.Parallel()

	require.Equal(t, `title:"ok computer"*`, BuildColumnPrefixQuery("title", "ok computer"))
	require.Equal(t, `notes:"say ""hi"""*`, BuildColumnPrefixQuery("notes", `say "hi"`))
	require.Equal(t, "", BuildColumnPrefixQuery("title", "   "))
}

func TestSanitizeFTSQuery_TruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// 40 three-byte runes = 120 bytes; the 100-byte cap falls mid-rune
	input := strings.Repeat("€", 40)
	out := SanitizeFTSQuery(input)

	require.True(t, utf8.ValidString(out))
	require.Equal(t, strings.Repeat("€", 33), strings.Trim(out, `"`))
}

func TestLikePattern(t *testing.T) {
	t.Parallel()

	require.Equal(t, `%ok computer%`, LikePattern("ok computer"))
	require.Equal(t, `%100\% dynamite%`, LikePattern("100% dynamite"))
	require.Equal(t, `%a\_b\\c%`, LikePattern(`a_b\c`))
}
