package inbox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"LeadDesk/internal/database"
)

type MessagesRequest struct {
	ConversationID string `json:"conversation_id"`
}

func GetMessages(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MessagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		messages, err := handler.Messages(req.ConversationID)
		if err != nil {
			if errors.Is(err, repository.ErrConversationNotFound) {
				http.Error(w, "Conversation not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to load messages", slog.Any("error", err))
			http.Error(w, "Failed to load messages", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messages)
	}
}

func GetOlderMessages(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MessagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		messages, err := handler.OlderMessages(req.ConversationID)
		if err != nil {
			log.Error("Failed to load older messages", slog.Any("error", err))
			http.Error(w, "Failed to load older messages", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messages)
	}
}
