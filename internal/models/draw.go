package models

// DrawStatus is the state of the lucky draw for a session.
type DrawStatus string

const (
	DrawIdle     DrawStatus = "idle"
	DrawSpinning DrawStatus = "spinning"
	DrawSettled  DrawStatus = "settled"
)

// DrawState is a snapshot of the lucky draw, as shown to the user.
// History is most-recent-first.
type DrawState struct {
	Status      DrawStatus    `json:"status"`
	AllowRepeat bool          `json:"allowRepeat"`
	Current     *Participant  `json:"current,omitempty"`
	Winner      *Participant  `json:"winner,omitempty"`
	History     []Participant `json:"history"`
	Remaining   int           `json:"remaining"`
}

// WinnerRecord is one row of the winners export. Ordinal 1 is the first draw.
type WinnerRecord struct {
	Ordinal       int    `json:"ordinal"`
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
}

// WinnerRecords numbers a most-recent-first history by draw order.
func WinnerRecords(history []Participant) []WinnerRecord {
	records := make([]WinnerRecord, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		records = append(records, WinnerRecord{
			Ordinal:       len(history) - i,
			ParticipantID: history[i].ID,
			Name:          history[i].Name,
		})
	}
	return records
}

// SpinTick is one step of a running spin, streamed to the browser.
type SpinTick struct {
	Candidate Participant `json:"candidate"`
	Step      int         `json:"step"`
	Steps     int         `json:"steps"`
}
