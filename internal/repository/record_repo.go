package repository

import (
	"context"

	"github.com/user/catalog-imager/internal/entity"
)

// RecordRepository defines the read-only queries over the catalog store.
type RecordRepository interface {
	// ListSourced returns (record, source URL) pairs from the structured
	// sources column, ordered by record identifier then source position.
	ListSourced(ctx context.Context, limit int) ([]entity.SourcedRow, error)
	// ListLinked returns records with a non-null free-form links column,
	// ordered by record identifier.
	ListLinked(ctx context.Context, limit int) ([]entity.LinkedRow, error)
}
