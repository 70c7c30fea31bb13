package entity

import "time"

// Resolution is the outcome of resolving a page to its lead image.
type Resolution struct {
	PageURL    string     `json:"page_url"`
	Host       string     `json:"host"`
	ImageURL   string     `json:"image_url,omitempty"`
	Strategy   string     `json:"strategy,omitempty"` // "meta", "jsonld", "largest_img"
	Found      bool       `json:"found"`
	Cached     bool       `json:"cached"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
