package completion

// ChatRequest is the chat-completions request body
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatMessage represents a message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

// Reason classifies why no description was obtained.
type Reason string

const (
	ReasonNoCredential Reason = "no_credential"
	ReasonTimeout      Reason = "timeout"
	ReasonRequest      Reason = "request_failed"
	ReasonUnexpected   Reason = "unexpected_response"
	ReasonEmpty        Reason = "empty_content"
	ReasonInvalidJSON  Reason = "invalid_json"
)

// Error is a completion failure. Its message is meant to be shown to the user.
type Error struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }
