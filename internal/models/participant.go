package models

// Participant is a single entry of the participant list.
// Identity is the ID; names may repeat across participants.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Group is one chunk produced by the auto grouping, with its display name.
type Group struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Members []Participant `json:"members"`
}

// Theme is a naming theme offered for group names.
type Theme struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// IDs returns the set of participant ids in ps.
func IDs(ps []Participant) map[string]struct{} {
	ids := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		ids[p.ID] = struct{}{}
	}
	return ids
}
