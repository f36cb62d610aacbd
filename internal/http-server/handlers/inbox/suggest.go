package inbox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"LeadDesk/impl/core"
	"LeadDesk/internal/database"
)

type SuggestRequest struct {
	ConversationID string `json:"conversation_id"`
}

type SuggestResponse struct {
	Reply string `json:"reply"`
}

func SuggestReply(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SuggestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		reply, err := handler.SuggestReply(r.Context(), req.ConversationID)
		if err != nil {
			if errors.Is(err, core.ErrSuggestUnavailable) {
				http.Error(w, "Suggestions not configured", http.StatusServiceUnavailable)
				return
			}
			if errors.Is(err, repository.ErrConversationNotFound) {
				http.Error(w, "Conversation not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to suggest reply", slog.Any("error", err))
			http.Error(w, "Failed to suggest reply", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SuggestResponse{Reply: reply})
	}
}
