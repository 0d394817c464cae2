package records

import "context"

// Direction is the sort direction of an ordered query.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Document is one stored record: the store-assigned ID plus its fields.
type Document struct {
	ID     string
	Fields map[string]any
}

// DocumentStore is the schemaless collaborator behind the repository.
// Add assigns the document ID. OrderedBy returns every document of the
// collection ordered by field; ties keep the store's own order.
type DocumentStore interface {
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	OrderedBy(ctx context.Context, collection, field string, dir Direction) ([]Document, error)
}
