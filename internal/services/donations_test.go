package services

import (
	"errors"
	"testing"

	"moschee-backend/internal/models"
)

func TestDonationService_Validate(t *testing.T) {
	svc := NewDonationService()

	tests := []struct {
		name      string
		req       models.DonationIntentRequest
		wantCents int64
		badFields []string
	}{
		{"preset amount", models.DonationIntentRequest{Amount: "50", Frequency: "once"}, 5000, nil},
		{"custom with comma", models.DonationIntentRequest{Amount: "12,50", Frequency: "monthly"}, 1250, nil},
		{"euro suffix", models.DonationIntentRequest{Amount: "20 €", Frequency: "once"}, 2000, nil},
		{"zero amount", models.DonationIntentRequest{Amount: "0", Frequency: "once"}, 0, []string{"amount"}},
		{"negative amount", models.DonationIntentRequest{Amount: "-5", Frequency: "once"}, 0, []string{"amount"}},
		{"too large", models.DonationIntentRequest{Amount: "10000.01", Frequency: "once"}, 0, []string{"amount"}},
		{"not a number", models.DonationIntentRequest{Amount: "viel", Frequency: "once"}, 0, []string{"amount"}},
		{"unknown frequency", models.DonationIntentRequest{Amount: "50", Frequency: "weekly"}, 0, []string{"frequency"}},
		{"both invalid", models.DonationIntentRequest{Amount: "", Frequency: ""}, 0, []string{"amount", "frequency"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cents, err := svc.Validate(tc.req)
			if len(tc.badFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if cents != tc.wantCents {
					t.Fatalf("expected %d cents, got %d", tc.wantCents, cents)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tc.badFields) {
				t.Fatalf("expected fields %v, got %v", tc.badFields, verr.Fields)
			}
			for _, f := range tc.badFields {
				if _, ok := verr.Fields[f]; !ok {
					t.Errorf("expected field %q to be reported", f)
				}
			}
		})
	}
}

func TestDonationService_CreateIntent(t *testing.T) {
	svc := NewDonationService()

	intent, err := svc.CreateIntent(models.DonationIntentRequest{Amount: "100", Frequency: "monthly"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.AmountCents != 10000 || intent.Currency != "EUR" || intent.Frequency != "monthly" {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if intent.Notice == "" {
		t.Fatalf("expected a notice that no payment is processed")
	}
}

func TestDonationService_OptionsAreCopies(t *testing.T) {
	svc := NewDonationService()
	opts := svc.Options()
	opts.Amounts[0] = "1"

	if svc.Options().Amounts[0] != "20" {
		t.Fatalf("options must not share backing arrays")
	}
	if svc.Options().Default != "50" {
		t.Fatalf("expected default amount 50")
	}
}
