package model

import "time"

// Community is a tenant grouping documents and users share access through.
type Community struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
