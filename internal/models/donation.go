package models

import (
	"time"

	"github.com/google/uuid"
)

type DonationOptions struct {
	Currency    string   `json:"currency"`
	Amounts     []string `json:"amounts"`
	Default     string   `json:"default_amount"`
	Frequencies []string `json:"frequencies"`
}

type DonationIntentRequest struct {
	Amount    string `json:"amount"`
	Frequency string `json:"frequency"` // "once" | "monthly"
}

// DonationIntent acknowledges a validated donation form. No payment is taken.
type DonationIntent struct {
	ID          uuid.UUID `json:"id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Frequency   string    `json:"frequency"`
	Notice      string    `json:"notice"`
	CreatedAt   time.Time `json:"created_at"`
}
