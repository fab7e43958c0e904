package repository

import (
	"context"

	"docuvault/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations. Documents are
// soft-deleted: reads exclude rows whose deleted_at is set.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a live (non-deleted) document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of live documents and the total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Search matches name, brand, or model case-insensitively.
	Search(ctx context.Context, term string, pq PageQuery) (*PageResult[model.Document], error)

	// Update persists mutable metadata fields and returns the stored row.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// SoftDelete marks a document deleted. Returns sql.ErrNoRows if no live
	// row matched.
	SoftDelete(ctx context.Context, id string) error
}
