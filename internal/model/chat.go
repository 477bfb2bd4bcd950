package model

// Chat actions
const (
	ChatActionChat           = "chat"
	ChatActionGetSuggestions = "get_suggestions"
	ChatActionClearContext   = "clear_context"
)

// Chat attachment types
const (
	AttachmentProducts        = "products"
	AttachmentCategories      = "categories"
	AttachmentRecommendations = "recommendations"
	AttachmentOrders          = "orders"
)

// ChatRequest is the body posted to the chat endpoint
type ChatRequest struct {
	Action  string `json:"action" form:"action"`
	Message string `json:"message" form:"message"`
}

// ChatAttachment is structured data rendered next to a reply
type ChatAttachment struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ChatResponse is the body returned by the chat endpoint
type ChatResponse struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message,omitempty"`
	Reply       string           `json:"reply,omitempty"`
	Actions     []ChatAttachment `json:"actions,omitempty"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Intent      string           `json:"intent,omitempty"`
	Confidence  *float64         `json:"confidence,omitempty"`
}
