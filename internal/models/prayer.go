package models

import "time"

// PrayerTime is one row of the daily schedule. Iqamah is "-" when no
// congregation is held.
type PrayerTime struct {
	Name   string `json:"name"`
	Time   string `json:"time"`
	Iqamah string `json:"iqamah"`
}

type PrayerSchedule struct {
	Date      string       `json:"date"` // YYYY-MM-DD, local to the mosque
	Gregorian string       `json:"gregorian"`
	Hijri     string       `json:"hijri"`
	Method    int          `json:"method"`
	Times     []PrayerTime `json:"times"`
	FetchedAt time.Time    `json:"fetched_at"`
}
