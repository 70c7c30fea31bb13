package entity

// SourceRef is one cited source of a record.
type SourceRef struct {
	URL       string
	Publisher *string
}

// Record mirrors a row of the catalog entries table, reduced to the fields
// needed for image enrichment.
type Record struct {
	ID      int64
	Title   string
	Sources []SourceRef
}

// SelectionOrigin tells which column a selected URL came from.
type SelectionOrigin string

const (
	OriginSources SelectionOrigin = "sources"
	OriginLinks   SelectionOrigin = "links"
)

// Selection pairs a record with the single page URL chosen for it.
type Selection struct {
	ID        int64           `json:"entry_number"`
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	Publisher *string         `json:"publisher"`
	Origin    SelectionOrigin `json:"origin"`
}

// SourcedRow is one (record, source) pair from the primary query.
type SourcedRow struct {
	ID        int64
	Title     string
	URL       string
	Publisher *string
}

// LinkedRow carries the raw link blob of a record for the fallback query.
type LinkedRow struct {
	ID    int64
	Title string
	Links string
}
