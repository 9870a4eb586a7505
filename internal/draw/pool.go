package draw

import "funhub/internal/models"

// Candidates returns the participants eligible for the next draw. With repeats
// allowed every participant is eligible; otherwise previous winners are left out.
func Candidates(participants, history []models.Participant, allowRepeat bool) []models.Participant {
	if allowRepeat {
		return append([]models.Participant(nil), participants...)
	}
	won := models.IDs(history)
	pool := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		if _, ok := won[p.ID]; !ok {
			pool = append(pool, p)
		}
	}
	return pool
}
