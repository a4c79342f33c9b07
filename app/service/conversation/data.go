package conversation

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

type Turn struct {
	Sender Sender `json:"sender" validate:"required,oneof=user assistant"`
	Text   string `json:"text" validate:"max=4000"`
}

const (
	ReasonEmptyResponse     = "empty_model_response"
	ReasonDuplicateResponse = "duplicate_model_response"
)

// Result is returned for every turn. Success means Message was generated;
// otherwise Message is a canned reply.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}
