package revisions

import (
	"encoding/json"
	"time"
)

// Source identifies which surface persisted the document.
type Source string

const (
	SourceAdmin  Source = "admin"
	SourceAPI    Source = "api"
	SourceImport Source = "import"
	SourceDrive  Source = "drive"
	SourceCLI    Source = "cli"
)

// Revision is one persisted write of the content document.
type Revision struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Source    Source          `json:"source"`
	Actor     string          `json:"actor"`
	Summary   string          `json:"summary"`
	Published bool            `json:"published"`
	Content   json.RawMessage `json:"content,omitempty"`
}
