package response

import (
	"time"

	"github.com/user/catalog-imager/internal/entity"
)

// ResolveResponse is a DTO for a page resolution, mirroring entity.Resolution.
type ResolveResponse struct {
	PageURL    string     `json:"page_url"`
	Host       string     `json:"host"`
	ImageURL   string     `json:"image_url,omitempty"`
	Strategy   string     `json:"strategy,omitempty"` // "meta", "jsonld", "largest_img"
	Found      bool       `json:"found"`
	Cached     bool       `json:"cached"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

type NormalizeResponse struct {
	URL  string `json:"url"`
	Host string `json:"host"`
}

type SelectionResponse struct {
	Count int                `json:"count"`
	Items []entity.Selection `json:"items"`
}

type RunsResponse struct {
	Runs []entity.RunSummary `json:"runs"`
}
