package model

import "time"

// Document represents a stored product manual in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Brand       string     `json:"brand"`
	Model       string     `json:"model"`
	Description string     `json:"description,omitempty"`
	FileURL     string     `json:"file_url"`
	FileName    string     `json:"file_name,omitempty"`
	FileSize    int64      `json:"file_size,omitempty"`
	FileType    string     `json:"file_type,omitempty"`
	UploadedBy  string     `json:"uploaded_by,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Deleted reports whether the document has been soft-deleted.
func (d *Document) Deleted() bool { return d.DeletedAt != nil }
