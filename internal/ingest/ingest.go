package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"funhub/internal/models"
)

// ParseNames reads a name list: one name per line and/or comma separated.
// Every newline and comma separates names; quotes carry no meaning. Names are
// trimmed and blank entries are dropped; duplicates are kept.
func ParseNames(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}

	names := make([]string, 0)
	for _, field := range strings.FieldsFunc(string(data), isSeparator) {
		if name := strings.TrimSpace(field); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func isSeparator(r rune) bool {
	return r == '\n' || r == '\r' || r == ','
}

// ParseText is ParseNames over pasted text.
func ParseText(text string) ([]string, error) {
	return ParseNames(strings.NewReader(text))
}

// NewParticipants gives every name a fresh participant id.
func NewParticipants(names []string) []models.Participant {
	ps := make([]models.Participant, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		ps = append(ps, models.Participant{ID: uuid.NewString(), Name: n})
	}
	return ps
}

// Names returns the display names of ps in order.
func Names(ps []models.Participant) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}
