package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"newlines", "Alice\nBob\nCarol", []string{"Alice", "Bob", "Carol"}},
		{"commas", "Alice, Bob ,Carol", []string{"Alice", "Bob", "Carol"}},
		{"mixed with blanks", "Alice,,Bob\n\n  \n,Carol,\r\nDan", []string{"Alice", "Bob", "Carol", "Dan"}},
		{"duplicates kept", "Alice\nAlice", []string{"Alice", "Alice"}},
		{"quotes do not join names", `"Smith, John",Jane`, []string{`"Smith`, `John"`, "Jane"}},
		{"unterminated quote stops at the line", "\"Alice\nBob,Carol", []string{`"Alice`, "Bob", "Carol"}},
		{"quoted word then comma", "\"Big\" Joe,Ann\nCarl", []string{`"Big" Joe`, "Ann", "Carl"}},
		{"stray quote", `O"Brien`, []string{`O"Brien`}},
		{"empty", "", []string{}},
		{"only separators", " ,\n, ", []string{}},
		{"unicode", "王小明\n李大華，\n張美麗", []string{"王小明", "李大華，", "張美麗"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseText(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseNamesFromFile(t *testing.T) {
	file := "name\nAlice,Bob\n\nCarol\n"
	got, err := ParseNames(strings.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, []string{"name", "Alice", "Bob", "Carol"}, got)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestParseNamesReadError(t *testing.T) {
	_, err := ParseNames(failingReader{})
	require.ErrorContains(t, err, "disk gone")
}

func TestNewParticipants(t *testing.T) {
	ps := NewParticipants([]string{"Alice", " ", "Alice", " Bob "})
	require.Len(t, ps, 3)
	require.Equal(t, []string{"Alice", "Alice", "Bob"}, Names(ps))

	ids := map[string]bool{}
	for _, p := range ps {
		require.NotEmpty(t, p.ID)
		require.False(t, ids[p.ID], "ids must be unique")
		ids[p.ID] = true
	}
}
