package request

// ResolveRequest asks for the lead image of a single page.
type ResolveRequest struct {
	URL   string `json:"url"`
	Force bool   `json:"force"` // bypass and refresh the resolution cache
}
