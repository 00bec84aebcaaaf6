package models

// NewsItem is an entry of the "Aktuelles" section.
type NewsItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Time        string `json:"time"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
