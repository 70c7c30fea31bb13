package entity

import "time"

// Page is a fetched source document.
type Page struct {
	URL            string
	FinalURL       string // after redirects
	HTTPStatusCode int
	ContentType    string
	Markup         string
	ResponseTimeMS int
	FetchedAt      time.Time
}

// BaseURL is the URL relative references on the page resolve against.
func (p *Page) BaseURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}
