package naming

import (
	"context"
	"fmt"
)

// StaticNamer returns the placeholder names "Team 1".."Team N".
// It stands in for the generator when no API key is configured.
type StaticNamer struct{}

func (StaticNamer) GroupNames(_ context.Context, count int, _ string) []string {
	return Placeholders(count)
}

// Placeholders returns count deterministic names.
func Placeholders(count int) []string {
	if count <= 0 {
		return []string{}
	}
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("Team %d", i+1)
	}
	return names
}
