package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type request struct {
	ConversationID string          `json:"conversationId,omitempty"`
	Message        string          `json:"message"`
	CurrentFilters json.RawMessage `json:"currentFilters,omitempty"`
	GuidedMode     bool            `json:"guidedMode,omitempty"`
}

type response struct {
	Response       string          `json:"response"`
	ConversationID string          `json:"conversationId"`
	UpdatedFilters json.RawMessage `json:"updatedFilters,omitempty"`
	GuidedMode     bool            `json:"guidedMode,omitempty"`
}

// ServeHTTP implements POST /api/chat. conversationId is optional on the
// first request of a thread; the response echoes back the id (minting one
// if none was supplied) and the caller reuses it on subsequent requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Ask(r.Context(), AskRequest{
		ConversationID: req.ConversationID,
		Message:        req.Message,
		CurrentFilters: req.CurrentFilters,
		GuidedMode:     req.GuidedMode,
	})
	if err != nil {
		h.logger.Error("CHAT_COMPLETION_FAILED", slog.Any("err", err), slog.String("conversation_id", req.ConversationID))
		http.Error(w, "assistant is temporarily unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response{
		Response:       result.Response,
		ConversationID: result.ConversationID,
		UpdatedFilters: result.UpdatedFilters,
		GuidedMode:     result.GuidedMode,
	})
}
