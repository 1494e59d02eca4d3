package domain

import (
	"errors"
	"testing"

	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

func TestNormalizeCreateDefaults(t *testing.T) {
	cases := []struct {
		name        string
		rawType     string
		impact      string
		urgency     string
		wantType    TicketType
		wantImpact  Level
		wantUrgency Level
	}{
		{"valid values kept", "REQ", "High", "Low", TicketTypeRequest, LevelHigh, LevelLow},
		{"lowercase normalized", "chg", "high", "low", TicketTypeChange, LevelHigh, LevelLow},
		{"unknown type defaults to INC", "BOGUS", "High", "High", TicketTypeIncident, LevelHigh, LevelHigh},
		{"unknown levels default to Medium", "INC", "Critical", "Severe", TicketTypeIncident, LevelMedium, LevelMedium},
		{"empty everything defaults", "", "", "", TicketTypeIncident, LevelMedium, LevelMedium},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ticket, err := NormalizeCreate(tc.rawType, "printer on fire", tc.impact, tc.urgency)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ticket.Type != tc.wantType {
				t.Errorf("type = %q, want %q", ticket.Type, tc.wantType)
			}
			if ticket.Impact != tc.wantImpact {
				t.Errorf("impact = %q, want %q", ticket.Impact, tc.wantImpact)
			}
			if ticket.Urgency != tc.wantUrgency {
				t.Errorf("urgency = %q, want %q", ticket.Urgency, tc.wantUrgency)
			}
		})
	}
}

func TestNormalizeCreateNeverRejectsWithDescription(t *testing.T) {
	// Any enum garbage must default, never fail, as long as a description
	// is present.
	for _, rawType := range []string{"", "XXX", "incident", "123"} {
		for _, level := range []string{"", "urgent", "HIGHEST", "??"} {
			if _, err := NormalizeCreate(rawType, "vpn is down", level, level); err != nil {
				t.Fatalf("NormalizeCreate(%q, _, %q, %q) rejected: %v", rawType, level, level, err)
			}
		}
	}
}

func TestNormalizeCreateRequiresDescription(t *testing.T) {
	for _, desc := range []string{"", "   ", "\t\n"} {
		_, err := NormalizeCreate("INC", desc, "High", "High")
		if err == nil {
			t.Fatalf("expected error for description %q", desc)
		}
		var domainErr *apperrors.DomainError
		if !errors.As(err, &domainErr) {
			t.Fatalf("expected DomainError, got %T", err)
		}
		if domainErr.Code != apperrors.CodeMissingField {
			t.Errorf("code = %q, want %q", domainErr.Code, apperrors.CodeMissingField)
		}
		if domainErr.HTTPStatus != 400 {
			t.Errorf("status = %d, want 400", domainErr.HTTPStatus)
		}
	}
}

func TestNormalizeCreateTrimsDescription(t *testing.T) {
	ticket, err := NormalizeCreate("INC", "  disk full  ", "Low", "Low")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.Description != "disk full" {
		t.Errorf("description = %q, want %q", ticket.Description, "disk full")
	}
}

func TestValidateTicketNumber(t *testing.T) {
	valid := map[string]string{
		"INC12345678":   "INC12345678",
		"req00000001":   "REQ00000001",
		" CHG99999999 ": "CHG99999999",
	}
	for input, want := range valid {
		got, err := ValidateTicketNumber(input)
		if err != nil {
			t.Errorf("ValidateTicketNumber(%q) error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ValidateTicketNumber(%q) = %q, want %q", input, got, want)
		}
	}

	invalid := []string{"", "INC1234567", "INC123456789", "ABC12345678", "INC1234567a", "12345678"}
	for _, input := range invalid {
		if _, err := ValidateTicketNumber(input); err == nil {
			t.Errorf("ValidateTicketNumber(%q) accepted, want error", input)
		} else if code := apperrors.ToDomainError(err).Code; code != apperrors.CodeInvalidFormat {
			t.Errorf("ValidateTicketNumber(%q) code = %q, want %q", input, code, apperrors.CodeInvalidFormat)
		}
	}
}

func TestStringOrNone(t *testing.T) {
	if got := StringOrNone(nil); got != "None" {
		t.Errorf("StringOrNone(nil) = %q, want %q", got, "None")
	}
	val := "Resolved"
	if got := StringOrNone(&val); got != "Resolved" {
		t.Errorf("StringOrNone = %q, want %q", got, "Resolved")
	}
}
