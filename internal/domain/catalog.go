package domain

// CatalogEntry is one searchable meme image: where it lives, its tags and any
// OCR text extracted from it.
type CatalogEntry struct {
	ID   int64    `json:"id"`
	URL  string   `json:"url"`
	Tags []string `json:"tag"`
	Text string   `json:"text"`
}
