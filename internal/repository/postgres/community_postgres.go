package postgres

import (
	"context"
	"database/sql"

	"docuvault/internal/model"
	"docuvault/internal/repository"
)

// CommunityPostgres is a PostgreSQL implementation of repository.CommunityRepository.
type CommunityPostgres struct {
	db *sql.DB
}

// NewCommunityPostgres creates a new CommunityPostgres repository.
func NewCommunityPostgres(db *sql.DB) *CommunityPostgres {
	return &CommunityPostgres{db: db}
}

var _ repository.CommunityRepository = (*CommunityPostgres)(nil)

// List returns all communities ordered by number.
func (r *CommunityPostgres) List(ctx context.Context) ([]model.Community, error) {
	const q = `SELECT id, number, name, created_at FROM communities ORDER BY number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Community, 0)
	for rows.Next() {
		var c model.Community
		if err := rows.Scan(&c.ID, &c.Number, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByNumber fetches a single community by its number.
func (r *CommunityPostgres) FindByNumber(ctx context.Context, number int) (*model.Community, error) {
	const q = `SELECT id, number, name, created_at FROM communities WHERE number = $1`
	var c model.Community
	if err := r.db.QueryRowContext(ctx, q, number).Scan(&c.ID, &c.Number, &c.Name, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
