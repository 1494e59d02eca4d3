package dto

// InvokeRequest is the conversational runtime payload. Either prompt or
// message carries the user text; prompt wins when both are set.
type InvokeRequest struct {
	Prompt    string `json:"prompt"`
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	ActorID   string `json:"actor_id"`
}

// Text returns the user text from whichever field carries it.
func (r InvokeRequest) Text() string {
	if r.Prompt != "" {
		return r.Prompt
	}
	return r.Message
}
