package inbox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"LeadDesk/internal/database"
)

type SessionRequest struct {
	ConversationID string `json:"conversation_id"`
}

func SessionWindow(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		window, err := handler.SessionWindow(req.ConversationID)
		if err != nil {
			if errors.Is(err, repository.ErrConversationNotFound) {
				http.Error(w, "Conversation not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to evaluate session window", slog.Any("error", err))
			http.Error(w, "Failed to evaluate session window", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(window)
	}
}
