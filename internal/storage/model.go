package storage

import (
	"time"

	"github.com/google/uuid"
)

// Run is a single flagstat pass over a CASA log
type Run struct {
	ID        int64     `json:"ID"`
	UUID      uuid.UUID `json:"uuid"`
	CreatedAt time.Time `json:"createdAt"`
	LogPath   string    `json:"logPath"`
	Found     int       `json:"found"`     // points plotms found
	Unflagged int       `json:"unflagged"` // unflagged points among them
	Reported  int       `json:"reported"`  // points printed to the log
	Truncated bool      `json:"truncated"`
	FullScan  bool      `json:"fullScan"` // no selection marker, the whole log was parsed
	Records   int       `json:"records"`  // selection records stored for the run
}
