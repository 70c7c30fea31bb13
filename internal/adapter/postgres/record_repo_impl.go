package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/catalog-imager/internal/entity"
)

// RecordRepoImpl provides a concrete implementation for the RecordRepository interface using PostgreSQL.
type RecordRepoImpl struct {
	db    *pgxpool.Pool
	table string
}

// NewRecordRepo creates a new instance of RecordRepoImpl reading from table.
func NewRecordRepo(db *pgxpool.Pool, table string) *RecordRepoImpl {
	return &RecordRepoImpl{db: db, table: pgx.Identifier{table}.Sanitize()}
}

// Ping checks the database connection.
func (r *RecordRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// sourcedQuery expands the JSONB sources array of each entry. Non-array
// values are replaced by an empty array so jsonb_array_elements never fails.
func sourcedQuery(table string) string {
	return fmt.Sprintf(`
		SELECT e.entry_number, e.title, s.elem->>'url' AS url, s.elem->>'publisher' AS publisher
		FROM %s e
		CROSS JOIN LATERAL jsonb_array_elements(
			CASE WHEN jsonb_typeof(e.sources) = 'array' THEN e.sources ELSE '[]'::jsonb END
		) WITH ORDINALITY AS s(elem, pos)
		WHERE jsonb_typeof(s.elem) = 'object' AND s.elem ? 'url'
		ORDER BY e.entry_number, s.pos
		LIMIT $1;
	`, table)
}

func linkedQuery(table string) string {
	return fmt.Sprintf(`
		SELECT entry_number, title, entry_links::text
		FROM %s
		WHERE entry_links IS NOT NULL
		ORDER BY entry_number
		LIMIT $1;
	`, table)
}

// ListSourced returns (entry, source URL) pairs ordered by entry number and
// source position.
func (r *RecordRepoImpl) ListSourced(ctx context.Context, limit int) ([]entity.SourcedRow, error) {
	rows, err := r.db.Query(ctx, sourcedQuery(r.table), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sourced entries: %w", err)
	}
	defer rows.Close()

	var out []entity.SourcedRow
	for rows.Next() {
		var (
			row   entity.SourcedRow
			title *string
			url   *string
		)
		if err := rows.Scan(&row.ID, &title, &url, &row.Publisher); err != nil {
			return nil, err
		}
		if title != nil {
			row.Title = *title
		}
		if url != nil {
			row.URL = *url
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListLinked returns the raw entry_links text of entries that have one.
func (r *RecordRepoImpl) ListLinked(ctx context.Context, limit int) ([]entity.LinkedRow, error) {
	rows, err := r.db.Query(ctx, linkedQuery(r.table), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked entries: %w", err)
	}
	defer rows.Close()

	var out []entity.LinkedRow
	for rows.Next() {
		var (
			row   entity.LinkedRow
			title *string
		)
		if err := rows.Scan(&row.ID, &title, &row.Links); err != nil {
			return nil, err
		}
		if title != nil {
			row.Title = *title
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
