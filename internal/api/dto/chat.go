package dto

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message string `json:"message" example:"I have been feeling anxious lately"`
}
