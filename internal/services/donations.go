package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"moschee-backend/internal/models"
)

const (
	donationCurrency       = "EUR"
	donationMaxAmountCents = 10000 * 100
	donationNotice         = "Vielen Dank! Dies ist eine Vorschau: es wird keine Zahlung ausgeführt."
)

var (
	donationPresets     = []string{"20", "50", "100"}
	donationFrequencies = []string{"once", "monthly"}
)

// DonationService backs the donation form. It validates input and
// acknowledges the intent; it never processes payments.
type DonationService struct {
	now func() time.Time
}

func NewDonationService() *DonationService {
	return &DonationService{now: time.Now}
}

func (s *DonationService) Options() models.DonationOptions {
	return models.DonationOptions{
		Currency:    donationCurrency,
		Amounts:     append([]string(nil), donationPresets...),
		Default:     "50",
		Frequencies: append([]string(nil), donationFrequencies...),
	}
}

// Validate parses the amount (a euro value, "," or "." as decimal separator)
// and checks the frequency.
func (s *DonationService) Validate(req models.DonationIntentRequest) (int64, error) {
	fields := map[string]string{}

	cents, ok := parseEuroCents(req.Amount)
	switch {
	case !ok:
		fields["amount"] = "Amount must be a number"
	case cents <= 0:
		fields["amount"] = "Amount must be greater than zero"
	case cents > donationMaxAmountCents:
		fields["amount"] = "Amount must not exceed 10000"
	}

	if !isDonationFrequency(req.Frequency) {
		fields["frequency"] = "Frequency must be 'once' or 'monthly'"
	}

	if len(fields) > 0 {
		return 0, &ValidationError{Fields: fields}
	}
	return cents, nil
}

func (s *DonationService) CreateIntent(req models.DonationIntentRequest) (*models.DonationIntent, error) {
	cents, err := s.Validate(req)
	if err != nil {
		return nil, err
	}
	return &models.DonationIntent{
		ID:          uuid.New(),
		AmountCents: cents,
		Currency:    donationCurrency,
		Frequency:   req.Frequency,
		Notice:      donationNotice,
		CreatedAt:   s.now().UTC(),
	}, nil
}

func parseEuroCents(raw string) (int64, bool) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "€"))
	if raw == "" {
		return 0, false
	}
	raw = strings.Replace(raw, ",", ".", 1)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Round(f * 100)), true
}

func isDonationFrequency(freq string) bool {
	for _, f := range donationFrequencies {
		if f == freq {
			return true
		}
	}
	return false
}
