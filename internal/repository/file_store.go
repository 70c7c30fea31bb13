package repository

import (
	"context"

	"github.com/user/catalog-imager/internal/entity"
)

// FileStore defines where downloaded images and the run artifact are written.
type FileStore interface {
	// Prepare makes sure the output location exists.
	Prepare(ctx context.Context) error
	// SaveImage writes data under name, replacing any previous file.
	SaveImage(ctx context.Context, name string, data []byte) error
	// WriteMapping replaces the run artifact wholesale.
	WriteMapping(ctx context.Context, mapping *entity.Mapping) error
	// MappingPath reports where the artifact is written.
	MappingPath() string
}
