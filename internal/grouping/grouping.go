package grouping

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"funhub/internal/models"
	"funhub/internal/randomizer"
)

// Namer supplies creative group names. Implementations never fail: on any
// problem they return fewer names, or placeholder names.
type Namer interface {
	GroupNames(ctx context.Context, count int, theme string) []string
}

// Partitioner splits participants into randomly composed, named groups.
type Partitioner struct {
	rng   randomizer.Randomizer
	namer Namer
	newID func() string
}

// NewPartitioner creates a Partitioner. Group ids are random UUIDs.
func NewPartitioner(rng randomizer.Randomizer, namer Namer) *Partitioner {
	return &Partitioner{
		rng:   rng,
		namer: namer,
		newID: uuid.NewString,
	}
}

// GroupCount returns how many groups of size members n participants make.
func GroupCount(n, size int) int {
	if n <= 0 || size < 1 {
		return 0
	}
	return (n + size - 1) / size
}

// FallbackName is the name of the group at 1-based ordinal when no creative
// name is available.
func FallbackName(ordinal int) string {
	return fmt.Sprintf("Team %d", ordinal)
}

// Partition shuffles participants and cuts them into groups of size members;
// the last group holds the remainder. It returns no groups when there is
// nobody to group or size is below 1.
func (p *Partitioner) Partition(ctx context.Context, participants []models.Participant, size int, theme string) []models.Group {
	count := GroupCount(len(participants), size)
	if count == 0 {
		return nil
	}

	shuffled := randomizer.Shuffle(p.rng, participants)
	names := p.namer.GroupNames(ctx, count, theme)

	groups := make([]models.Group, 0, count)
	for i := 0; i < count; i++ {
		end := (i + 1) * size
		if end > len(shuffled) {
			end = len(shuffled)
		}
		groups = append(groups, models.Group{
			ID:      p.newID(),
			Name:    nameAt(names, i),
			Members: shuffled[i*size : end : end],
		})
	}
	return groups
}

func nameAt(names []string, i int) string {
	if i < len(names) {
		if name := strings.TrimSpace(names[i]); name != "" {
			return name
		}
	}
	return FallbackName(i + 1)
}
