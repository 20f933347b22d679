package sync

import "time"

const (
	EventLibraryUpdate  = "library.update"
	EventLibraryDelete  = "library.delete"
	EventProgressUpdate = "progress.update"
)

// Event is the line-delimited JSON payload pushed to every connected
// sync client when a user's library or progress changes.
type Event struct {
	Type    string    `json:"type"`
	UserID  int64     `json:"user_id"`
	TitleID int64     `json:"title_id,omitempty"`
	UnitID  int64     `json:"unit_id,omitempty"`
	Status  string    `json:"status,omitempty"`
	At      time.Time `json:"at"`
}

func LibraryUpdated(userID, titleID int64) Event {
	return Event{Type: EventLibraryUpdate, UserID: userID, TitleID: titleID, At: time.Now().UTC()}
}

func LibraryDeleted(userID, titleID int64) Event {
	return Event{Type: EventLibraryDelete, UserID: userID, TitleID: titleID, At: time.Now().UTC()}
}

func ProgressUpdated(userID, unitID int64, status string) Event {
	return Event{Type: EventProgressUpdate, UserID: userID, UnitID: unitID, Status: status, At: time.Now().UTC()}
}
