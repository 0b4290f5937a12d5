package api

import "time"

type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	Reply      string `json:"reply"`
	TokensUsed int64  `json:"tokensUsed"`
}

type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationParams struct {
	Limit int `schema:"limit"`
}

type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SessionUsage struct {
	SessionID  string    `json:"sessionId"`
	Turns      int64     `json:"turns"`
	TokensUsed int64     `json:"tokensUsed"`
	Fallbacks  int64     `json:"fallbacks"`
	LastTurnAt time.Time `json:"lastTurnAt"`
}

type UsageResponse struct {
	Turns      int64          `json:"turns"`
	TokensUsed int64          `json:"tokensUsed"`
	Fallbacks  int64          `json:"fallbacks"`
	Sessions   []SessionUsage `json:"sessions"`
}
