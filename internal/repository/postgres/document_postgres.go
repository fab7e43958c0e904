package postgres

import (
	"context"
	"database/sql"

	"docuvault/internal/model"
	"docuvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, name, brand, model, description, file_url, file_name, file_size, file_type, uploaded_by, deleted_at, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	var description, fileName, fileType, uploadedBy sql.NullString
	var fileSize sql.NullInt64
	var deletedAt sql.NullTime
	if err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Brand,
		&d.Model,
		&description,
		&d.FileURL,
		&fileName,
		&fileSize,
		&fileType,
		&uploadedBy,
		&deletedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Description = description.String
	d.FileName = fileName.String
	d.FileSize = fileSize.Int64
	d.FileType = fileType.String
	d.UploadedBy = uploadedBy.String
	if deletedAt.Valid {
		t := deletedAt.Time
		d.DeletedAt = &t
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, name, brand, model, description, file_url, file_name, file_size, file_type, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Name,
		doc.Brand,
		doc.Model,
		doc.Description,
		doc.FileURL,
		doc.FileName,
		doc.FileSize,
		doc.FileType,
		doc.UploadedBy,
		doc.CreatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single live document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND deleted_at IS NULL
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns live documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents WHERE deleted_at IS NULL`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// Search matches name, brand, or model case-insensitively against the term.
func (r *DocumentPostgres) Search(ctx context.Context, term string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	pattern := "%" + term + "%"

	const qCount = `
		SELECT COUNT(*) FROM documents
		WHERE deleted_at IS NULL
		  AND (name ILIKE $1 OR brand ILIKE $1 OR model ILIKE $1)
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, pattern).Scan(&total); err != nil {
		return nil, err
	}

	const qSearch = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE deleted_at IS NULL
		  AND (name ILIKE $1 OR brand ILIKE $1 OR model ILIKE $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qSearch, pattern, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// Update persists mutable metadata fields and returns the stored row.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET name = $2, brand = $3, model = $4, description = $5,
		    file_url = $6, file_name = $7, file_size = $8, file_type = $9,
		    updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Name,
		doc.Brand,
		doc.Model,
		doc.Description,
		doc.FileURL,
		doc.FileName,
		doc.FileSize,
		doc.FileType,
	)
	return scanDocument(row)
}

// SoftDelete marks a document deleted; it returns sql.ErrNoRows when no live
// row matched so callers can distinguish missing documents.
func (r *DocumentPostgres) SoftDelete(ctx context.Context, id string) error {
	const q = `
		UPDATE documents
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func collectDocuments(rows *sql.Rows) ([]model.Document, error) {
	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
