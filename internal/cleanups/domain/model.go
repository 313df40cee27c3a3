package domain

import "time"

// Event is a community cleanup. Participants and reports only ever
// accumulate; deleting the whole event is the creator's call.
type Event struct {
	ID               string        `json:"_id"`
	Title            string        `json:"title"`
	Location         string        `json:"location"`
	Date             string        `json:"date"`
	CreatedBy        string        `json:"createdBy"`
	CreatedByName    string        `json:"createdByName"`
	Participants     []Participant `json:"participants"`
	ParticipantCount int           `json:"participantCount"`
	Reports          []Report      `json:"reports"`
	CreatedAt        time.Time     `json:"createdAt"`
}

type Participant struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Report is a participant's progress note for an event.
type Report struct {
	UserID           string    `json:"userId"`
	UserName         string    `json:"userName"`
	ReportText       string    `json:"reportText"`
	TrashCollectedKg float64   `json:"trashCollectedKg"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}
