// Package storage persists career maps so they can be laid out and rendered
// later by ID.
//
// # Backends
//
//   - [MemoryStore]: process-local, for tests and a single API instance
//   - [FileStore]: one JSON file per map, for the CLI
//   - storage/mongostore: MongoDB collection, for shared API deployments
//   - storage/neo4jstore: graph database, roles and transitions stored as nodes
//     and relationships next to the document
//
// Every backend returns [ErrNotFound] (wrapped) for unknown IDs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/graph"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("map not found")

// Document is a stored career map.
type Document struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name" bson:"name"`
	Map       graph.CareerMap `json:"map" bson:"map"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
}

// Summary is the listing view of a document.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Paths     int       `json:"paths"`
	Roles     int       `json:"roles"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summarize returns the listing view of d.
func (d Document) Summarize() Summary {
	return Summary{
		ID:        d.ID,
		Name:      d.Name,
		Paths:     len(d.Map.Paths),
		Roles:     d.Map.RoleCount(),
		UpdatedAt: d.UpdatedAt,
	}
}

// Store is the interface for map storage backends.
type Store interface {
	// Save inserts or replaces a document. Documents without an ID get a
	// new UUID; CreatedAt is kept across replacements.
	Save(ctx context.Context, doc Document) (Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (Document, error)

	// List returns every document, most recently updated first.
	List(ctx context.Context) ([]Document, error)

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NewDocument returns a document for m with a fresh ID.
func NewDocument(m graph.CareerMap) Document {
	return Document{ID: uuid.NewString(), Name: m.Name, Map: m}
}

// Prepare validates doc and fills ID, Name and timestamps before a save.
// existing is the stored version, if any.
func Prepare(doc Document, existing *Document, now time.Time) (Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	} else if err := errs.ValidateMapID(doc.ID); err != nil {
		return Document{}, err
	}
	if err := doc.Map.Validate(); err != nil {
		return Document{}, err
	}
	if doc.Name == "" {
		doc.Name = doc.Map.Name
	}
	now = now.UTC().Truncate(time.Millisecond)
	doc.CreatedAt = now
	if existing != nil && !existing.CreatedAt.IsZero() {
		doc.CreatedAt = existing.CreatedAt
	}
	doc.UpdatedAt = now
	return doc, nil
}

// NotFound wraps ErrNotFound with the map ID and the MAP_NOT_FOUND code.
func NotFound(id string) error {
	return errs.Wrap(errs.ErrCodeMapNotFound, fmt.Errorf("%w: %s", ErrNotFound, id), "map %s not found", id)
}
