package domain

// CatalogItem is one promotable drama from the ranking catalog.
type CatalogItem struct {
	ID          int      `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Views       string   `json:"views" yaml:"views"`
	Score       int      `json:"score" yaml:"score"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
	Image       string   `json:"image" yaml:"image"`
}
