package repository

import (
	"context"

	"github.com/user/catalog-imager/internal/entity"
)

// RunJournal records summaries of finished batch runs.
type RunJournal interface {
	Append(ctx context.Context, summary *entity.RunSummary) error
	// Recent returns up to n summaries, newest first.
	Recent(ctx context.Context, n int) ([]entity.RunSummary, error)
}
