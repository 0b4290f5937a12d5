package api

import (
	"errors"
	"log/slog"
	"net/http"

	"support-chat/internal/chat"
	"support-chat/internal/messaging"
	"support-chat/pkg/api"

	"github.com/go-chi/chi/v5"
)

type ChatService struct {
	conversations *chat.ConversationService
	usage         *messaging.UsageTracker
}

func NewChatService(conversations *chat.ConversationService, usage *messaging.UsageTracker) *ChatService {
	return &ChatService{conversations: conversations, usage: usage}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(s.Health))
	r.Post("/chat", RestHandler(s.Chat))
	r.Get("/conversations/{session_id}", RestHandler(s.GetConversation))
	r.Get("/sessions", RestHandler(s.ListSessions))
	r.Get("/usage", RestHandler(s.GetUsage))
}

func (s *ChatService) Health(w http.ResponseWriter, r *http.Request) (any, error) {
	return nil, nil
}

func (s *ChatService) Chat(w http.ResponseWriter, r *http.Request) (any, error) {
	req, err := ParseRequest[api.ChatRequest](w, r)
	if err != nil {
		return nil, err
	}

	result, err := s.conversations.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrSessionIDTooLong) {
			slog.Info("rejecting chat request", "session_id_bytes", len(req.SessionID), "error", err)
			return nil, CodedErrorf(http.StatusBadRequest, "sessionId must be at most %d bytes", chat.MaxSessionIDLength)
		}
		if errors.Is(err, chat.ErrValidation) {
			slog.Info("rejecting chat request", "session_id", req.SessionID, "error", err)
			return nil, CodedErrorf(http.StatusBadRequest, "Missing sessionId or message")
		}
		slog.Error("error processing chat turn", "session_id", req.SessionID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "Server or LLM error")
	}

	return api.ChatResponse{Reply: result.Reply, TokensUsed: result.TokensUsed}, nil
}

func (s *ChatService) GetConversation(w http.ResponseWriter, r *http.Request) (any, error) {
	sessionID, err := URLParamSessionID(r, "session_id")
	if err != nil {
		return nil, err
	}

	params, err := ParseRequestQueryParams[api.ConversationParams](r)
	if err != nil {
		return nil, err
	}
	if params.Limit < 0 {
		return nil, CodedErrorf(http.StatusBadRequest, "limit must not be negative")
	}

	messages, err := s.conversations.History(r.Context(), sessionID, params.Limit)
	if err != nil {
		slog.Error("error loading conversation", "session_id", sessionID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "DB error")
	}

	return convertMessages(messages), nil
}

func (s *ChatService) ListSessions(w http.ResponseWriter, r *http.Request) (any, error) {
	sessions, err := s.conversations.ListSessions(r.Context())
	if err != nil {
		slog.Error("error listing sessions", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "DB error")
	}

	return convertSessions(sessions), nil
}

func (s *ChatService) GetUsage(w http.ResponseWriter, r *http.Request) (any, error) {
	if s.usage == nil {
		return api.UsageResponse{Sessions: []api.SessionUsage{}}, nil
	}
	return convertUsage(s.usage.Summary()), nil
}
