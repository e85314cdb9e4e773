// Package anchorstore is the relay's connection to the platform database.
// It resolves the entity fields needed for hashing and keeps the anchor
// status table up to date; the relay core itself persists nothing.
package anchorstore

import (
	_ "github.com/lib/pq"
)

// AnchorStore reads anchor targets and records anchor outcomes in Postgres.
type AnchorStore struct {
	dbConnStr string
}

// NewAnchorStore creates a new AnchorStore instance with the provided
// connection string.
//
// Parameters:
// - connStr: the database connection string.
//
// Returns:
// - *AnchorStore: a pointer to the newly created AnchorStore instance.
// - error: an error if the creation of the AnchorStore instance fails.
func NewAnchorStore(connStr string) (*AnchorStore, error) {
	return &AnchorStore{
		dbConnStr: connStr,
	}, nil
}
