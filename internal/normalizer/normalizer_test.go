package normalizer

import (
	"testing"
)

func TestClassifyIntentPrecedence(t *testing.T) {
	cases := []struct {
		message string
		want    Intent
	}{
		{"please create a ticket for my laptop", IntentCreateTicket},
		{"I have a problem with the VPN", IntentCreateTicket},
		{"lookup INC12345678", IntentLookupTicket},
		{"what's the status of my request", IntentLookupTicket},
		{"how do I reset my password", IntentKnowledge},
		{"where is the documentation", IntentKnowledge},
		{"good morning", IntentGeneral},
		// "check" alone hits the lookup rule before knowledge's "how".
		{"check how things are going", IntentLookupTicket},
		// create rules run before lookup rules.
		{"create then check", IntentCreateTicket},
		{"CREATE A TICKET", IntentCreateTicket},
	}

	for _, tc := range cases {
		if got := ClassifyIntent(tc.message); got != tc.want {
			t.Errorf("ClassifyIntent(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestExtractTicketNumber(t *testing.T) {
	got, err := ExtractTicketNumber("foo INC12345678 bar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "INC12345678" {
		t.Errorf("got %q, want INC12345678", got)
	}

	// Case-insensitive match, uppercase output, first match wins.
	got, err = ExtractTicketNumber("see req00000042 and also CHG11112222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "REQ00000042" {
		t.Errorf("got %q, want REQ00000042", got)
	}

	if _, err := ExtractTicketNumber("no ticket here"); err == nil {
		t.Error("expected error for text without ticket number")
	}
}

func testActionRequest(props []Property) ActionRequest {
	return ActionRequest{
		ActionGroup:    "itsm",
		APIPath:        "/lookup",
		HTTPMethod:     "GET",
		MessageVersion: 1,
		RequestBody: RequestBody{
			Content: map[string]ContentBlock{
				"application/json": {Properties: props},
			},
		},
	}
}

func TestActionRequestProperty(t *testing.T) {
	req := testActionRequest([]Property{
		{Name: "ticketNumber", Value: "INC12345678"},
		{Name: "ticketNumber", Value: "INC99999999"},
	})

	// First match wins.
	val, ok := req.Property("ticketNumber")
	if !ok || val != "INC12345678" {
		t.Errorf("Property = %q, %v; want INC12345678, true", val, ok)
	}

	if _, ok := req.Property("description"); ok {
		t.Error("expected miss for absent property")
	}
}

func TestActionRequestRequireProperty(t *testing.T) {
	req := testActionRequest(nil)
	if _, err := req.RequireProperty("ticketNumber"); err == nil {
		t.Error("expected missing-field error")
	}

	empty := ActionRequest{}
	if _, err := empty.RequireProperty("ticketNumber"); err == nil {
		t.Error("expected missing-field error for empty request body")
	}
}
