// Package normalizer extracts canonical operation parameters from the two
// heterogeneous inbound shapes: the agent-platform action payload with its
// flat property list, and free-text conversational prompts.
package normalizer

import (
	"regexp"
	"strings"

	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

// Intent identifies the operation a free-text prompt maps to.
type Intent string

const (
	IntentCreateTicket Intent = "create_ticket"
	IntentLookupTicket Intent = "lookup_ticket"
	IntentKnowledge    Intent = "knowledge_query"
	IntentGeneral      Intent = "general_conversation"
)

// ActionRequest is the agent-platform tool invocation payload.
type ActionRequest struct {
	ActionGroup    string      `json:"actionGroup"`
	APIPath        string      `json:"apiPath"`
	HTTPMethod     string      `json:"httpMethod"`
	MessageVersion float64     `json:"messageVersion"`
	RequestBody    RequestBody `json:"requestBody"`
}

// RequestBody carries the nested content map of an action payload.
type RequestBody struct {
	Content map[string]ContentBlock `json:"content"`
}

// ContentBlock holds the property list for one content type.
type ContentBlock struct {
	Properties []Property `json:"properties"`
}

// Property is one name/value pair from the action payload.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

var ticketNumberExtract = regexp.MustCompile(`(?i)(INC|REQ|CHG)\d{8}`)

// intentRule pairs a match predicate with the intent it selects. Rules are
// evaluated in order, first match wins, so precedence is explicit and
// testable.
type intentRule struct {
	keywords []string
	intent   Intent
}

var intentRules = []intentRule{
	{keywords: []string{"create", "new", "ticket", "issue", "problem"}, intent: IntentCreateTicket},
	{keywords: []string{"lookup", "find", "search", "status", "check"}, intent: IntentLookupTicket},
	{keywords: []string{"help", "how", "what", "knowledge", "documentation"}, intent: IntentKnowledge},
}

// Property returns the value of the first property with the given name from
// the application/json content block.
func (r ActionRequest) Property(name string) (string, bool) {
	block, ok := r.RequestBody.Content["application/json"]
	if !ok {
		return "", false
	}
	for _, prop := range block.Properties {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return "", false
}

// RequireProperty returns the named property or a missing-field error.
func (r ActionRequest) RequireProperty(name string) (string, error) {
	val, ok := r.Property(name)
	if !ok {
		return "", apperrors.NewMissingField(name)
	}
	return val, nil
}

// ClassifyIntent maps a free-text prompt onto an intent using the ordered
// keyword rules. No match falls through to the general conversational path.
func ClassifyIntent(message string) Intent {
	lowered := strings.ToLower(message)
	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}

// ExtractTicketNumber finds the first ticket-number shaped token in free
// text, normalized to uppercase. Absence is a terminal validation failure
// for a lookup request.
func ExtractTicketNumber(text string) (string, error) {
	match := ticketNumberExtract.FindString(text)
	if match == "" {
		return "", apperrors.NewInvalidFormat(
			"no ticket number found; expected INC/REQ/CHG followed by 8 digits",
			map[string]any{"text": text},
		)
	}
	return strings.ToUpper(match), nil
}
