package tracks

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// ParsedTrack is one row produced by the tracklist parser.
type ParsedTrack struct {
	Position int     `json:"position"`
	Title    string  `json:"title"`
	Duration *string `json:"duration"`
	DiscNo   int     `json:"disc_no"`
}

// ParseTracklist parses pasted CSV-ish tracklist text into track rows. The
// expected full format is "<no>, <title>, <duration>", but shorter rows are
// handled heuristically:
//
//   - 3+ columns: number, title, duration (a non-numeric first column falls
//     back to the row index)
//   - 2 columns: "number, title" when the first column parses as an integer,
//     otherwise "title, duration"
//   - 1 column: title only
//
// Blank titles become "Track N" from the row index; missing durations stay
// null; every row lands on disc 1.
func ParseTracklist(text string) ([]ParsedTrack, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		// Fall back to treating each line as a bare title when the text
		// isn't valid CSV at all.
		records = nil
		for _, line := range strings.Split(text, "\n") {
			records = append(records, []string{line})
		}
	}

	parsed := []ParsedTrack{}
	for i, row := range records {
		if isBlankRow(row) {
			continue
		}

		position := i + 1
		title := ""
		duration := ""

		switch {
		case len(row) >= 3:
			if no, err := strconv.Atoi(strings.TrimSpace(row[0])); err == nil {
				position = no
			}
			title = row[1]
			duration = row[2]
		case len(row) == 2:
			if no, err := strconv.Atoi(strings.TrimSpace(row[0])); err == nil {
				position = no
				title = row[1]
			} else {
				title = row[0]
				duration = row[1]
			}
		case len(row) == 1:
			title = row[0]
		}

		title = strings.TrimSpace(title)
		if title == "" {
			title = fmt.Sprintf("Track %d", i+1)
		}

		track := ParsedTrack{
			Position: position,
			Title:    title,
			DiscNo:   1,
		}
		if d := strings.TrimSpace(duration); d != "" {
			track.Duration = &d
		}

		parsed = append(parsed, track)
	}

	return parsed, nil
}

func isBlankRow(row []string) bool {
	for _, col := range row {
		if strings.TrimSpace(col) != "" {
			return false
		}
	}
	return true
}
