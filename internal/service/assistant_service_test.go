package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-agent-bridge/internal/backend"
	"github.com/spec-kit/itsm-agent-bridge/internal/domain"
	"github.com/spec-kit/itsm-agent-bridge/internal/events"
	"github.com/spec-kit/itsm-agent-bridge/internal/knowledge"
	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

type fakeInvoker struct {
	createInput  domain.CreateTicket
	createResult *backend.CreateResult
	createErr    error
	lookupInput  string
	lookupRecord *domain.TicketRecord
	lookupErr    error
}

func (f *fakeInvoker) CreateTicket(ctx context.Context, ticket domain.CreateTicket) (*backend.CreateResult, error) {
	f.createInput = ticket
	return f.createResult, f.createErr
}

func (f *fakeInvoker) LookupTicket(ctx context.Context, ticketNumber string) (*domain.TicketRecord, error) {
	f.lookupInput = ticketNumber
	return f.lookupRecord, f.lookupErr
}

type fakeQuerier struct {
	results []knowledge.QueryResult
	err     error
}

func (f *fakeQuerier) Query(ctx context.Context, query string) ([]knowledge.QueryResult, error) {
	return f.results, f.err
}

type fakeResponder struct {
	answer string
	err    error
}

func (f *fakeResponder) Reply(ctx context.Context, prompt string) (string, error) {
	return f.answer, f.err
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func newTestService(invoker *fakeInvoker, querier *fakeQuerier, responder Responder, dispatcher events.Dispatcher) *AssistantService {
	return NewAssistantService(AssistantDependencies{
		Invoker:    invoker,
		Retriever:  querier,
		Responder:  responder,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
}

func TestHandleMessageEmptyPrompt(t *testing.T) {
	s := newTestService(&fakeInvoker{}, &fakeQuerier{}, nil, nil)

	reply := s.HandleMessage(context.Background(), "sess-1", "   ")
	if reply.StatusCode != http.StatusBadRequest {
		t.Errorf("statusCode = %d, want 400", reply.StatusCode)
	}
	if reply.Message != "No prompt provided." {
		t.Errorf("message = %q", reply.Message)
	}
}

func TestHandleMessageGeneratesSessionID(t *testing.T) {
	s := newTestService(&fakeInvoker{}, &fakeQuerier{}, &fakeResponder{answer: "hi"}, nil)

	reply := s.HandleMessage(context.Background(), "", "good morning")
	if reply.SessionID == "" {
		t.Error("sessionId not generated")
	}

	reply = s.HandleMessage(context.Background(), "sess-keep", "good morning")
	if reply.SessionID != "sess-keep" {
		t.Errorf("sessionId = %q, want sess-keep", reply.SessionID)
	}
}

func TestHandleMessageCreateTicket(t *testing.T) {
	invoker := &fakeInvoker{createResult: &backend.CreateResult{TicketNumber: "REQ00001234"}}
	dispatcher := &recordingDispatcher{}
	s := newTestService(invoker, &fakeQuerier{}, nil, dispatcher)

	reply := s.HandleMessage(context.Background(), "sess-1", "I need a new ticket to request software access")
	if reply.StatusCode != http.StatusOK {
		t.Fatalf("statusCode = %d: %s", reply.StatusCode, reply.Message)
	}
	if reply.Message != "I've created your ticket: REQ00001234" {
		t.Errorf("message = %q", reply.Message)
	}

	if invoker.createInput.Type != domain.TicketTypeRequest {
		t.Errorf("inferred type = %s, want REQ", invoker.createInput.Type)
	}
	if invoker.createInput.Impact != domain.LevelMedium {
		t.Errorf("impact = %s, want Medium default", invoker.createInput.Impact)
	}

	if len(dispatcher.published) != 1 || dispatcher.published[0].Type != events.EventTicketCreated {
		t.Errorf("published events = %v", dispatcher.published)
	}
}

func TestHandleMessageCreateTicketBackendFailure(t *testing.T) {
	invoker := &fakeInvoker{createErr: apperrors.NewConnectionFailure(errors.New("refused"))}
	s := newTestService(invoker, &fakeQuerier{}, nil, nil)

	reply := s.HandleMessage(context.Background(), "sess-1", "create a ticket for my broken laptop")
	if reply.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("statusCode = %d, want 503", reply.StatusCode)
	}
	if !strings.HasPrefix(reply.Message, "Failed to create ticket") {
		t.Errorf("message = %q", reply.Message)
	}
}

func TestHandleMessageLookupTicket(t *testing.T) {
	invoker := &fakeInvoker{lookupRecord: &domain.TicketRecord{TicketStatus: "In Progress"}}
	dispatcher := &recordingDispatcher{}
	s := newTestService(invoker, &fakeQuerier{}, nil, dispatcher)

	reply := s.HandleMessage(context.Background(), "sess-1", "check the status of inc00001234 please")
	if reply.StatusCode != http.StatusOK {
		t.Fatalf("statusCode = %d: %s", reply.StatusCode, reply.Message)
	}
	if invoker.lookupInput != "INC00001234" {
		t.Errorf("lookup number = %q", invoker.lookupInput)
	}
	if reply.Message != "Ticket Status: In Progress" {
		t.Errorf("message = %q", reply.Message)
	}
	if len(dispatcher.published) != 1 || dispatcher.published[0].Type != events.EventTicketLookedUp {
		t.Errorf("published events = %v", dispatcher.published)
	}
}

func TestHandleMessageLookupWithoutNumber(t *testing.T) {
	s := newTestService(&fakeInvoker{}, &fakeQuerier{}, nil, nil)

	reply := s.HandleMessage(context.Background(), "sess-1", "check the status of my incident")
	if reply.StatusCode != http.StatusBadRequest {
		t.Errorf("statusCode = %d, want 400", reply.StatusCode)
	}
	if reply.Message != "Please provide a valid ticket number (e.g., INC12345678)." {
		t.Errorf("message = %q", reply.Message)
	}
}

func TestHandleMessageKnowledgeQuery(t *testing.T) {
	querier := &fakeQuerier{results: []knowledge.QueryResult{
		{Content: "first", ConfidenceScore: 0.95},
		{Content: "second", ConfidenceScore: 0.9},
		{Content: "third", ConfidenceScore: 0.85},
		{Content: "fourth", ConfidenceScore: 0.8},
	}}
	s := newTestService(&fakeInvoker{}, querier, nil, nil)

	reply := s.HandleMessage(context.Background(), "sess-1", "how do I reset my password")
	if reply.StatusCode != http.StatusOK {
		t.Fatalf("statusCode = %d: %s", reply.StatusCode, reply.Message)
	}
	if reply.Message != "first\n\nsecond\n\nthird" {
		t.Errorf("message = %q, want top three joined", reply.Message)
	}
	if len(reply.Results) != 3 {
		t.Errorf("toolResults = %d, want 3", len(reply.Results))
	}
}

func TestHandleMessageKnowledgeNoResults(t *testing.T) {
	s := newTestService(&fakeInvoker{}, &fakeQuerier{}, nil, nil)

	reply := s.HandleMessage(context.Background(), "sess-1", "how do I configure the vpn")
	if reply.StatusCode != http.StatusOK {
		t.Fatalf("statusCode = %d", reply.StatusCode)
	}
	if reply.Message != "I could not find relevant information in the knowledge base for your query." {
		t.Errorf("message = %q", reply.Message)
	}
}

func TestHandleMessageGeneralConversation(t *testing.T) {
	s := newTestService(&fakeInvoker{}, &fakeQuerier{}, &fakeResponder{answer: "hello there"}, nil)
	reply := s.HandleMessage(context.Background(), "sess-1", "good morning")
	if reply.Message != "hello there" {
		t.Errorf("message = %q", reply.Message)
	}

	s = newTestService(&fakeInvoker{}, &fakeQuerier{}, &fakeResponder{err: errors.New("model unavailable")}, nil)
	reply = s.HandleMessage(context.Background(), "sess-1", "good morning")
	if reply.StatusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200 on degraded path", reply.StatusCode)
	}
	if reply.Message != degradedReply {
		t.Errorf("message = %q, want degraded reply", reply.Message)
	}

	s = newTestService(&fakeInvoker{}, &fakeQuerier{}, nil, nil)
	reply = s.HandleMessage(context.Background(), "sess-1", "good morning")
	if reply.Message != degradedReply {
		t.Errorf("message = %q, want degraded reply without responder", reply.Message)
	}
}

func TestInferTicketType(t *testing.T) {
	cases := map[string]string{
		"please request access to the shared drive": "REQ",
		"change my mailbox quota":                   "CHG",
		"my laptop is broken":                       "INC",
	}
	for message, want := range cases {
		if got := inferTicketType(message); got != want {
			t.Errorf("inferTicketType(%q) = %s, want %s", message, got, want)
		}
	}
}
