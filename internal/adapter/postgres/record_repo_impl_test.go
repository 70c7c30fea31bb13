package postgres

import (
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestQueriesQuoteTable(t *testing.T) {
	table := pgx.Identifier{`entries"; DROP TABLE x; --`}.Sanitize()

	for name, q := range map[string]string{
		"sourced": sourcedQuery(table),
		"linked":  linkedQuery(table),
	} {
		if !strings.Contains(q, `"entries""; DROP TABLE x; --"`) {
			t.Errorf("%s query does not quote the table name:\n%s", name, q)
		}
		if !strings.Contains(q, "LIMIT $1") {
			t.Errorf("%s query is missing the limit placeholder", name)
		}
	}
}

func TestSourcedQueryOrdersBySourcePosition(t *testing.T) {
	q := sourcedQuery(`"catalog_entries"`)
	if !strings.Contains(q, "ORDER BY e.entry_number, s.pos") {
		t.Errorf("sourced query must order by entry and source position:\n%s", q)
	}
	if !strings.Contains(q, "WITH ORDINALITY") {
		t.Error("sourced query must keep the source position")
	}
}
