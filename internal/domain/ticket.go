package domain

import (
	"regexp"
	"strings"

	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

// TicketType enumerates ITSM ticket categories.
type TicketType string

const (
	TicketTypeIncident TicketType = "INC"
	TicketTypeRequest  TicketType = "REQ"
	TicketTypeChange   TicketType = "CHG"
)

// Level enumerates impact and urgency ratings.
type Level string

const (
	LevelHigh   Level = "High"
	LevelMedium Level = "Medium"
	LevelLow    Level = "Low"
)

var ticketNumberPattern = regexp.MustCompile(`^(INC|REQ|CHG)\d{8}$`)

// CreateTicket is a fully normalized ticket creation request. Immutable once
// validated; consumed once by the backend invoker.
type CreateTicket struct {
	Type        TicketType `json:"tickettype"`
	Description string     `json:"description"`
	Impact      Level      `json:"impact"`
	Urgency     Level      `json:"urgency"`
}

// TicketRecord is the read-only lookup response from the backend. All fields
// beyond status are optional.
type TicketRecord struct {
	TicketNumber  *string `json:"ticketNumber,omitempty"`
	TicketStatus  string  `json:"ticketStatus"`
	TicketDesc    *string `json:"ticketDesc,omitempty"`
	TicketImpact  *string `json:"ticketImpact,omitempty"`
	TicketUrgency *string `json:"ticketUrgency,omitempty"`
	CreatedAt     *string `json:"createdAt,omitempty"`
}

// NormalizeCreate applies the validate-or-default rules for ticket creation.
// Only an empty description is a hard failure; every other field falls back
// to its documented default rather than being rejected. Downstream behavior
// depends on this leniency, so invalid enum values must never error here.
func NormalizeCreate(rawType, description, impact, urgency string) (CreateTicket, error) {
	ticketType := TicketType(strings.ToUpper(strings.TrimSpace(rawType)))
	switch ticketType {
	case TicketTypeIncident, TicketTypeRequest, TicketTypeChange:
	default:
		ticketType = TicketTypeIncident
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return CreateTicket{}, apperrors.NewMissingField("description")
	}

	return CreateTicket{
		Type:        ticketType,
		Description: description,
		Impact:      normalizeLevel(impact),
		Urgency:     normalizeLevel(urgency),
	}, nil
}

// ValidateTicketNumber checks the INC/REQ/CHG + 8 digit shape after
// uppercasing. No defaulting: a bad ticket number always propagates.
func ValidateTicketNumber(raw string) (string, error) {
	candidate := strings.ToUpper(strings.TrimSpace(raw))
	if !ticketNumberPattern.MatchString(candidate) {
		return "", apperrors.NewInvalidFormat(
			"ticket number must match INC/REQ/CHG followed by 8 digits",
			map[string]any{"ticketNumber": raw},
		)
	}
	return candidate, nil
}

func normalizeLevel(raw string) Level {
	level := Level(titleCase(strings.TrimSpace(raw)))
	switch level {
	case LevelHigh, LevelMedium, LevelLow:
		return level
	default:
		return LevelMedium
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// StringOrNone renders an optional field as its string form, using the
// literal "None" when absent. The downstream contract was built against this
// exact rendering, so it is preserved deliberately.
func StringOrNone(val *string) string {
	if val == nil {
		return "None"
	}
	return *val
}
