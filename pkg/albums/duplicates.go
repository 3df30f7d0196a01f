package albums

import (
	"context"
	"sort"
	"strings"

	"github.com/discvault/discvault/pkg/models"
	"github.com/pkg/errors"
)

// FindDuplicates returns existing albums that plausibly represent the same
// release as the candidate, for use as a pre-insert warning. Two independent
// passes, unioned by album id in first-seen order:
//
//  1. barcode pass: exact match on the stored barcode (definitive)
//  2. title+artist pass: case-insensitive full title equality plus an exact
//     sorted-multiset match on artist names (partial overlap doesn't count)
func (svc *Service) FindDuplicates(ctx context.Context, title string, artistNames []string, barcode string) ([]*models.Album, error) {
	duplicates := []*models.Album{}
	seen := map[int]bool{}

	if barcode != "" {
		matches := []*models.Album{}
		err := hydrate(svc.db.NewSelect().Model(&matches)).
			Where("a.upc_ean = ?", barcode).
			Scan(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		for _, album := range matches {
			if !seen[album.ID] {
				seen[album.ID] = true
				duplicates = append(duplicates, album)
			}
		}
	}

	title = strings.TrimSpace(title)
	if title != "" && len(artistNames) > 0 {
		candidates := []*models.Album{}
		err := hydrate(svc.db.NewSelect().Model(&candidates)).
			Where("LOWER(a.title) = LOWER(?)", title).
			Scan(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		want := sortedNames(artistNames)
		for _, album := range candidates {
			if seen[album.ID] {
				continue
			}
			if namesEqual(want, sortedNames(album.ArtistNames())) {
				seen[album.ID] = true
				duplicates = append(duplicates, album)
			}
		}
	}

	return duplicates, nil
}

func sortedNames(names []string) []string {
	sorted := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			sorted = append(sorted, name)
		}
	}
	sort.Strings(sorted)
	return sorted
}

func namesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
