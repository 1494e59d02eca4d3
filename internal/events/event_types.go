package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketLookedUp EventType = "ticket_looked_up"
	EventKnowledgeQuery EventType = "knowledge_query"
)

// Event represents a bridge event emitted after a completed operation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string `json:"ticket_number"`
	TicketType   string `json:"ticket_type"`
	Impact       string `json:"impact"`
	Urgency      string `json:"urgency"`
}

// TicketLookedUpPayload payload.
type TicketLookedUpPayload struct {
	TicketNumber string `json:"ticket_number"`
	Status       string `json:"status"`
}

// KnowledgeQueryPayload payload.
type KnowledgeQueryPayload struct {
	Query       string `json:"query"`
	ResultCount int    `json:"result_count"`
	FromCache   bool   `json:"from_cache"`
}
