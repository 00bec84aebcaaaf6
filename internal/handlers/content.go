package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"moschee-backend/internal/models"
	"moschee-backend/internal/services"
)

type prayerSchedules interface {
	Today(ctx context.Context) (*models.PrayerSchedule, error)
	ForDate(ctx context.Context, day time.Time) (*models.PrayerSchedule, error)
}

type newsCatalog interface {
	List(category string) []models.NewsItem
	Get(id string) (*models.NewsItem, error)
}

type donationDesk interface {
	Options() models.DonationOptions
	CreateIntent(req models.DonationIntentRequest) (*models.DonationIntent, error)
}

// ContentHandler serves the informational sections of the site.
type ContentHandler struct {
	prayers   prayerSchedules
	news      newsCatalog
	donations donationDesk
}

func NewContentHandler(prayers prayerSchedules, news newsCatalog, donations donationDesk) *ContentHandler {
	return &ContentHandler{prayers: prayers, news: news, donations: donations}
}

// GET /api/v1/prayer-times?date=YYYY-MM-DD
func (h *ContentHandler) PrayerTimes(w http.ResponseWriter, r *http.Request) {
	var (
		schedule *models.PrayerSchedule
		err      error
	)
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, perr := time.Parse("2006-01-02", raw)
		if perr != nil {
			handleServiceError(w, r, &services.ValidationError{Fields: map[string]string{"date": "Date must be YYYY-MM-DD"}})
			return
		}
		schedule, err = h.prayers.ForDate(r.Context(), day)
	} else {
		schedule, err = h.prayers.Today(r.Context())
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, schedule)
}

// GET /api/v1/news?category=
func (h *ContentHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	items := h.news.List(r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// GET /api/v1/news/{id}
func (h *ContentHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	item, err := h.news.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GET /api/v1/donations/options
func (h *ContentHandler) DonationOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.donations.Options())
}

// POST /api/v1/donations/intents
func (h *ContentHandler) CreateDonationIntent(w http.ResponseWriter, r *http.Request) {
	var req models.DonationIntentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	intent, err := h.donations.CreateIntent(req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}
