package history

import (
	"time"
)

// Record describes one delivered export.
type Record struct {
	ID          string            `bson:"_id" json:"id"`
	WorkspaceID string            `bson:"workspace_id" json:"workspace_id"`
	UserID      string            `bson:"user_id" json:"user_id"`
	RequestID   string            `bson:"request_id,omitempty" json:"request_id,omitempty"`
	EventType   string            `bson:"event_type" json:"event_type"`
	Columns     []string          `bson:"columns" json:"columns"`
	Interval    string            `bson:"interval" json:"interval"`
	Start       time.Time         `bson:"start" json:"start"`
	End         time.Time         `bson:"end" json:"end"`
	LinkID      string            `bson:"link_id,omitempty" json:"link_id,omitempty"`
	FolderID    string            `bson:"folder_id,omitempty" json:"folder_id,omitempty"`
	Filters     map[string]string `bson:"filters,omitempty" json:"filters,omitempty"`
	Rows        int               `bson:"rows" json:"rows"`
	Truncated   bool              `bson:"truncated" json:"truncated"`
	SizeBytes   int               `bson:"size_bytes" json:"size_bytes"`
	DurationMs  int64             `bson:"duration_ms" json:"duration_ms"`
	CreatedAt   time.Time         `bson:"created_at" json:"created_at"`
}
