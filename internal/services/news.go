package services

import (
	"strings"

	"moschee-backend/internal/models"
)

var defaultNews = []models.NewsItem{
	{
		ID:          "1",
		Title:       "Anmeldung zum neuen Koran-Semester",
		Category:    "Bildung",
		Time:        "20. Oktober 2023",
		Image:       "https://images.unsplash.com/photo-1585036156171-384164a8c675?q=80&w=1000&auto=format&fit=crop",
		Description: "Die neuen Kurse für Tajweed und Arabisch beginnen in Kürze. Sichern Sie sich jetzt einen Platz.",
	},
	{
		ID:          "2",
		Title:       "Gemeinschafts-Iftar im Ramadan",
		Category:    "Events",
		Time:        "15. März 2024",
		Image:       "https://images.unsplash.com/photo-1519817650390-64a93db51149?q=80&w=1000&auto=format&fit=crop",
		Description: "Wir laden alle Erfurter herzlich zu unserem täglichen Iftar ein. Gemeinsam fasten brechen.",
	},
	{
		ID:          "3",
		Title:       "Winterhilfe: Kleiderspende erfolgreich",
		Category:    "Soziales",
		Time:        "10. Januar 2024",
		Image:       "https://images.unsplash.com/photo-1469571486292-0ba58a3f068b?q=80&w=1000&auto=format&fit=crop",
		Description: "Dank Ihrer Unterstützung konnten wir über 500 Pakete an Bedürftige verteilen.",
	},
}

// NewsCatalog serves the site's news and activity items in display order.
type NewsCatalog struct {
	items []models.NewsItem
}

func NewNewsCatalog(items []models.NewsItem) *NewsCatalog {
	if items == nil {
		items = defaultNews
	}
	return &NewsCatalog{items: items}
}

// List returns all items, or only those whose category matches (case-insensitive).
func (c *NewsCatalog) List(category string) []models.NewsItem {
	category = strings.TrimSpace(category)
	out := make([]models.NewsItem, 0, len(c.items))
	for _, item := range c.items {
		if category != "" && !strings.EqualFold(item.Category, category) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (c *NewsCatalog) Get(id string) (*models.NewsItem, error) {
	for i := range c.items {
		if c.items[i].ID == id {
			item := c.items[i]
			return &item, nil
		}
	}
	return nil, &NotFoundError{Message: "News item not found"}
}
