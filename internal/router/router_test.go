package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"moschee-backend/internal/assistant"
	"moschee-backend/internal/handlers"
	"moschee-backend/internal/middleware"
	"moschee-backend/internal/models"
	"moschee-backend/internal/services"
	"moschee-backend/internal/websocket"
)

type staticPrayers struct{}

func (staticPrayers) Today(ctx context.Context) (*models.PrayerSchedule, error) {
	return &models.PrayerSchedule{Date: "2026-03-20"}, nil
}

func (staticPrayers) ForDate(ctx context.Context, day time.Time) (*models.PrayerSchedule, error) {
	return &models.PrayerSchedule{Date: day.Format("2006-01-02")}, nil
}

type offlineBackend struct{}

func (offlineBackend) Configured() bool { return false }

func (offlineBackend) StartConversation(ctx context.Context) (assistant.Conversation, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, messagesPerMinute int) http.Handler {
	t.Helper()
	reg := assistant.NewRegistry(offlineBackend{}, time.Hour)
	limiter := middleware.NewRateLimiter(messagesPerMinute, time.Minute)
	t.Cleanup(limiter.Stop)

	hub := websocket.NewHub(nil, func(id uuid.UUID) bool {
		_, ok := reg.Get(id)
		return ok
	}, nil)

	return New(
		handlers.NewHealthHandler(nil),
		handlers.NewContentHandler(staticPrayers{}, services.NewNewsCatalog(nil), services.NewDonationService()),
		handlers.NewAssistantHandler(reg, nil, nil),
		limiter,
		hub,
		"http://localhost:5173",
	)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "203.0.113.5:4321"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_AssistantFlow(t *testing.T) {
	h := newTestRouter(t, 10)

	rr := do(t, h, http.MethodPost, "/api/v1/assistant/sessions", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected %d, got %d", http.StatusCreated, rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("expected a request id header")
	}
	var snap assistant.Snapshot
	json.NewDecoder(rr.Body).Decode(&snap)
	base := "/api/v1/assistant/sessions/" + snap.ID.String()

	if rr := do(t, h, http.MethodPost, base+"/open", ""); rr.Code != http.StatusOK {
		t.Fatalf("open: expected 200, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, base+"/messages", `{"message":"Wann ist Fajr?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", rr.Code)
	}
	var resp models.ChatResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Reply == nil || resp.Reply.Message.Text != assistant.UnavailableText {
		t.Fatalf("expected the unavailable notice, got %+v", resp.Reply)
	}
	if !resp.Session.Open || len(resp.Session.Transcript) != 3 {
		t.Fatalf("unexpected session %+v", resp.Session)
	}

	if rr := do(t, h, http.MethodDelete, base, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, base, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rr.Code)
	}
}

func TestRouter_MessagesAreRateLimited(t *testing.T) {
	h := newTestRouter(t, 1)

	rr := do(t, h, http.MethodPost, "/api/v1/assistant/sessions", "")
	var snap assistant.Snapshot
	json.NewDecoder(rr.Body).Decode(&snap)
	path := "/api/v1/assistant/sessions/" + snap.ID.String() + "/messages"

	if rr := do(t, h, http.MethodPost, path, `{"message":"Salam"}`); rr.Code != http.StatusOK {
		t.Fatalf("first message: expected 200, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, path, `{"message":"Salam"}`); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second message: expected 429, got %d", rr.Code)
	}
}

func TestRouter_ContentRoutes(t *testing.T) {
	h := newTestRouter(t, 10)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/prayer-times", "", http.StatusOK},
		{http.MethodGet, "/api/v1/news", "", http.StatusOK},
		{http.MethodGet, "/api/v1/news/1", "", http.StatusOK},
		{http.MethodGet, "/api/v1/donations/options", "", http.StatusOK},
		{http.MethodPost, "/api/v1/donations/intents", `{"amount":"20","frequency":"once"}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			if rr := do(t, h, tc.method, tc.path, tc.body); rr.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rr.Code)
			}
		})
	}
}
