package tracks

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestParseTracklist(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []ParsedTrack
	}{
		{
			name: "full three column format",
			text: "1, Airbag, 4:44\n2, Paranoid Android, 6:23",
			want: []ParsedTrack{
				{Position: 1, Title: "Airbag", Duration: strptr("4:44"), DiscNo: 1},
				{Position: 2, Title: "Paranoid Android", Duration: strptr("6:23"), DiscNo: 1},
			},
		},
		{
			name: "two columns with leading number",
			text: "1, Airbag\n2, Paranoid Android",
			want: []ParsedTrack{
				{Position: 1, Title: "Airbag", DiscNo: 1},
				{Position: 2, Title: "Paranoid Android", DiscNo: 1},
			},
		},
		{
			name: "two columns without leading number",
			text: "Airbag, 4:44",
			want: []ParsedTrack{
				{Position: 1, Title: "Airbag", Duration: strptr("4:44"), DiscNo: 1},
			},
		},
		{
			name: "title only",
			text: "Airbag\nParanoid Android",
			want: []ParsedTrack{
				{Position: 1, Title: "Airbag", DiscNo: 1},
				{Position: 2, Title: "Paranoid Android", DiscNo: 1},
			},
		},
		{
			name: "bad track number falls back to row index",
			text: "one, Airbag, 4:44\n2, Paranoid Android, 6:23",
			want: []ParsedTrack{
				{Position: 1, Title: "Airbag", Duration: strptr("4:44"), DiscNo: 1},
				{Position: 2, Title: "Paranoid Android", Duration: strptr("6:23"), DiscNo: 1},
			},
		},
		{
			name: "blank title gets a default",
			text: "1, , 3:00",
			want: []ParsedTrack{
				{Position: 1, Title: "Track 1", Duration: strptr("3:00"), DiscNo: 1},
			},
		},
		{
			name: "quoted title containing a comma",
			text: `1, "Stop, Look and Listen", 2:55`,
			want: []ParsedTrack{
				{Position: 1, Title: "Stop, Look and Listen", Duration: strptr("2:55"), DiscNo: 1},
			},
		},
		{
			name: "surrounding whitespace trimmed",
			text: "  1,  Airbag ,  4:44  \n",
			want: []ParsedTrack{
				{Position: 1, Title: "Airbag", Duration: strptr("4:44"), DiscNo: 1},
			},
		},
		{
			name: "empty input",
			text: "   \n  ",
			want: []ParsedTrack{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTracklist(tt.text)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
