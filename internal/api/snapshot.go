package api

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/ajramos/mailpilot/internal/models"
)

//go:embed snapshot/mock_inbox.json
var bundled embed.FS

const bundledSnapshotPath = "snapshot/mock_inbox.json"

// snapshotRecord is the raw shape of a snapshot entry. Ids and flags are
// derived at load time.
type snapshotRecord struct {
	Sender    string                `json:"sender"`
	Subject   string                `json:"subject"`
	Body      string                `json:"body"`
	Timestamp string                `json:"timestamp"`
	Metadata  *models.EmailMetadata `json:"metadata,omitempty"`
}

// Snapshot loads the static sample inbox used when the backend is unreachable
type Snapshot struct {
	fsys fs.FS
	path string
}

// NewSnapshot reads the snapshot at path inside fsys
func NewSnapshot(fsys fs.FS, path string) *Snapshot {
	return &Snapshot{fsys: fsys, path: path}
}

// BundledSnapshot returns the snapshot compiled into the binary
func BundledSnapshot() *Snapshot {
	return NewSnapshot(bundled, bundledSnapshotPath)
}

// SnapshotID is the identifier assigned to the record at position i
func SnapshotID(i int) string {
	return fmt.Sprintf("mock-%d", i)
}

// Emails parses the snapshot. The result depends only on the file content.
func (s *Snapshot) Emails() ([]models.Email, error) {
	if s == nil || s.fsys == nil {
		return nil, fmt.Errorf("%w: no snapshot configured", ErrFallbackExhausted)
	}
	data, err := fs.ReadFile(s.fsys, s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrFallbackExhausted, s.path, err)
	}
	var records []snapshotRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrFallbackExhausted, s.path, err)
	}
	emails := make([]models.Email, 0, len(records))
	for i, r := range records {
		emails = append(emails, models.Email{
			ID:        SnapshotID(i),
			Sender:    r.Sender,
			Subject:   r.Subject,
			Body:      r.Body,
			Timestamp: r.Timestamp,
			IsRead:    false,
			Processed: false,
			Metadata:  r.Metadata,
		})
	}
	return emails, nil
}

// Email returns the snapshot entry whose positional id matches
func (s *Snapshot) Email(id string) (*models.Email, error) {
	emails, err := s.Emails()
	if err != nil {
		return nil, err
	}
	for i := range emails {
		if emails[i].ID == id {
			e := emails[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
