package search

import "strings"

// TermOp describes how the terms of a parsed genre/tag query combine.
type TermOp int

const (
	// TermSingle is a plain substring query with no boolean operator.
	TermSingle TermOp = iota
	// TermAnd requires every term to match (set intersection).
	TermAnd
	// TermOr requires at least one term to match (set union).
	TermOr
)

// TermQuery is the parsed form of a genre/tag query. The genre and tag
// channels support a tiny boolean grammar: terms joined by " and " or by
// " or ". AND is checked before OR, so a query containing both splits on
// " and " only.
type TermQuery struct {
	Op    TermOp
	Terms []string
}

// ParseTerms lower-cases and trims the query, then splits it on " and " or
// " or " into non-empty trimmed terms. Queries without either operator come
// back as a single term.
func ParseTerms(query string) TermQuery {
	query = strings.ToLower(strings.TrimSpace(query))

	switch {
	case strings.Contains(query, " and "):
		return TermQuery{Op: TermAnd, Terms: splitTerms(query, " and ")}
	case strings.Contains(query, " or "):
		return TermQuery{Op: TermOr, Terms: splitTerms(query, " or ")}
	default:
		if query == "" {
			return TermQuery{Op: TermSingle, Terms: []string{}}
		}
		return TermQuery{Op: TermSingle, Terms: []string{query}}
	}
}

func splitTerms(query, sep string) []string {
	parts := strings.Split(query, sep)
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			terms = append(terms, part)
		}
	}
	return terms
}
