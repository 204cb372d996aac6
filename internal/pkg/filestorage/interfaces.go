package filestorage

import "time"

// Artifact describes one stored message file.
type Artifact struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// StoredMessage is a parsed message file.
type StoredMessage struct {
	Name      string
	CourseID  int64
	Kind      string
	Recipient string
	Subject   string
	Body      string
}

// MessageStore keeps undeliverable messages on disk so they can be inspected
// or redelivered later.
type MessageStore interface {
	// SaveMessage writes a new file and returns its path. Existing files are never overwritten.
	SaveMessage(courseID int64, kind, recipient, subject, body string) (string, error)

	// List returns the stored messages ordered by name
	List() ([]Artifact, error)

	// Read parses a stored message by file name
	Read(name string) (*StoredMessage, error)

	// Delete removes a stored message. Missing files are not an error.
	Delete(name string) error
}
