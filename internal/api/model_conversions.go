package api

import (
	"support-chat/internal/database"
	"support-chat/internal/messaging"
	"support-chat/pkg/api"
)

func convertMessages(messages []database.ChatMessage) []api.ConversationMessage {
	out := make([]api.ConversationMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, api.ConversationMessage{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	return out
}

func convertSessions(sessions []database.ChatSession) []api.Session {
	out := make([]api.Session, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, api.Session{ID: s.ID, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt})
	}
	return out
}

func convertUsage(summary messaging.UsageSummary) api.UsageResponse {
	out := api.UsageResponse{
		Turns:      summary.Turns,
		TokensUsed: summary.TokensUsed,
		Fallbacks:  summary.Fallbacks,
		Sessions:   make([]api.SessionUsage, 0, len(summary.Sessions)),
	}
	for _, s := range summary.Sessions {
		out.Sessions = append(out.Sessions, api.SessionUsage{
			SessionID:  s.SessionID,
			Turns:      s.Turns,
			TokensUsed: s.TokensUsed,
			Fallbacks:  s.Fallbacks,
			LastTurnAt: s.LastTurnAt,
		})
	}
	return out
}
