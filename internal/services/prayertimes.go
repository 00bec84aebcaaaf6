package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"moschee-backend/internal/models"
)

const (
	prayerCacheTTL    = 24 * time.Hour
	prayerCachePrefix = "prayer_times:"
	noIqamah          = "-"
)

// iqamahRule derives the congregation time from the computed prayer time.
type iqamahRule struct {
	name   string // display name on the site
	key    string // Aladhan timings key
	offset int    // minutes after the prayer time
	fixed  string // fixed congregation time, overrides offset
	none   bool   // no congregation
}

var iqamahRules = []iqamahRule{
	{name: "Fajr", key: "Fajr", offset: 30},
	{name: "Sonnenaufgang", key: "Sunrise", none: true},
	{name: "Dhuhr", key: "Dhuhr", fixed: "13:00"},
	{name: "Asr", key: "Asr", offset: 15},
	{name: "Maghrib", key: "Maghrib", offset: 5},
	{name: "Ischa", key: "Isha", offset: 15},
}

// prayerCache is the subset of *redis.Client used for caching schedules.
type prayerCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type PrayerService struct {
	baseURL    string
	latitude   float64
	longitude  float64
	method     int
	httpClient *http.Client
	cache      prayerCache
	logger     *slog.Logger
	loc        *time.Location
	now        func() time.Time
}

// NewPrayerService queries the Aladhan timings API. cache may be nil.
func NewPrayerService(baseURL string, latitude, longitude float64, method int, cache prayerCache, logger *slog.Logger) *PrayerService {
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		logger.Warn("Europe/Berlin time zone unavailable, using UTC", "error", err)
		loc = time.UTC
	}
	return &PrayerService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		latitude:   latitude,
		longitude:  longitude,
		method:     method,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
	}
}

// Today returns the schedule for the current local day.
func (s *PrayerService) Today(ctx context.Context) (*models.PrayerSchedule, error) {
	return s.ForDate(ctx, s.now().In(s.loc))
}

func (s *PrayerService) ForDate(ctx context.Context, day time.Time) (*models.PrayerSchedule, error) {
	day = day.In(s.loc)
	key := prayerCachePrefix + day.Format("2006-01-02")

	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	schedule, err := s.fetch(ctx, day)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, key, schedule)
	return schedule, nil
}

// Refresh bypasses the cache and stores a fresh copy of the day's schedule.
func (s *PrayerService) Refresh(ctx context.Context) (*models.PrayerSchedule, error) {
	day := s.now().In(s.loc)
	schedule, err := s.fetch(ctx, day)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, prayerCachePrefix+day.Format("2006-01-02"), schedule)
	return schedule, nil
}

func (s *PrayerService) fromCache(ctx context.Context, key string) (*models.PrayerSchedule, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("prayer cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var schedule models.PrayerSchedule
	if err := json.Unmarshal([]byte(raw), &schedule); err != nil {
		s.logger.Warn("prayer cache entry unreadable", "key", key, "error", err)
		return nil, false
	}
	return &schedule, true
}

func (s *PrayerService) toCache(ctx context.Context, key string, schedule *models.PrayerSchedule) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(schedule)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, prayerCacheTTL).Err(); err != nil {
		s.logger.Warn("prayer cache write failed", "key", key, "error", err)
	}
}

type aladhanResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   *struct {
		Timings map[string]string `json:"timings"`
		Date    struct {
			Readable string `json:"readable"`
			Hijri    struct {
				Day   string `json:"day"`
				Year  string `json:"year"`
				Month struct {
					En string `json:"en"`
				} `json:"month"`
			} `json:"hijri"`
		} `json:"date"`
	} `json:"data"`
}

func (s *PrayerService) fetch(ctx context.Context, day time.Time) (*models.PrayerSchedule, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(s.latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(s.longitude, 'f', -1, 64))
	q.Set("method", strconv.Itoa(s.method))
	endpoint := fmt.Sprintf("%s/v1/timings/%d?%s", s.baseURL, day.Unix(), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build prayer times request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Service: "aladhan", Err: err}
	}
	defer resp.Body.Close()

	var body aladhanResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &UpstreamError{Service: "aladhan", Err: fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)}
	}
	if body.Code != http.StatusOK || body.Data == nil || len(body.Data.Timings) == 0 {
		return nil, &UpstreamError{Service: "aladhan", Err: fmt.Errorf("unexpected response code=%d status=%q", body.Code, body.Status)}
	}

	times, err := buildSchedule(body.Data.Timings)
	if err != nil {
		return nil, &UpstreamError{Service: "aladhan", Err: err}
	}

	hijri := body.Data.Date.Hijri
	hijriText := ""
	if hijri.Day != "" && hijri.Year != "" {
		hijriText = fmt.Sprintf("%s %s %s H.", hijri.Day, hijri.Month.En, hijri.Year)
	}

	return &models.PrayerSchedule{
		Date:      day.Format("2006-01-02"),
		Gregorian: body.Data.Date.Readable,
		Hijri:     hijriText,
		Method:    s.method,
		Times:     times,
		FetchedAt: s.now().UTC(),
	}, nil
}

// buildSchedule applies the congregation rules to the Aladhan timings.
func buildSchedule(timings map[string]string) ([]models.PrayerTime, error) {
	out := make([]models.PrayerTime, 0, len(iqamahRules))
	for _, rule := range iqamahRules {
		raw, ok := timings[rule.key]
		if !ok {
			return nil, fmt.Errorf("timings missing %s", rule.key)
		}
		at, err := normalizeClock(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rule.key, err)
		}

		iqamah := noIqamah
		switch {
		case rule.none:
		case rule.fixed != "":
			iqamah = rule.fixed
		default:
			iqamah, err = addMinutes(at, rule.offset)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", rule.key, err)
			}
		}

		out = append(out, models.PrayerTime{Name: rule.name, Time: at, Iqamah: iqamah})
	}
	return out, nil
}

// normalizeClock turns "05:12 (CET)" or "5:12" into "05:12".
func normalizeClock(raw string) (string, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty time")
	}
	h, m, err := parseClock(fields[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// addMinutes shifts an HH:MM clock time, wrapping around midnight.
func addMinutes(clock string, mins int) (string, error) {
	h, m, err := parseClock(clock)
	if err != nil {
		return "", err
	}
	total := ((h*60+m+mins)%1440 + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

func parseClock(clock string) (int, int, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q", clock)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", clock)
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return h, m, nil
}
