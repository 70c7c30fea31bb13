package entity

// MappingEntry associates a record with its downloaded lead image.
type MappingEntry struct {
	EntryNumber int64   `json:"entry_number"`
	Title       string  `json:"title"`
	PageURL     string  `json:"page_url"`
	ImageURL    string  `json:"image_url"`
	File        string  `json:"file"`
	Publisher   *string `json:"publisher"`
}

// Mapping is the run artifact written once at the end of a batch run.
type Mapping struct {
	TotalSaved int            `json:"total_saved"`
	Items      []MappingEntry `json:"items"`
}

// Add appends an entry and keeps TotalSaved in step with Items.
func (m *Mapping) Add(e MappingEntry) {
	m.Items = append(m.Items, e)
	m.TotalSaved = len(m.Items)
}
