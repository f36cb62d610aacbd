package inbox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"LeadDesk/internal/database"
	"LeadDesk/internal/lib/api/cont"
	"LeadDesk/internal/lib/api/response"

	"github.com/go-chi/render"
)

type MarkReadRequest struct {
	ConversationID string `json:"conversation_id"`
}

func MarkRead(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MarkReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		username := ""
		if user := cont.GetUser(r.Context()); user != nil {
			username = user.Username
		}

		if err := handler.MarkRead(username, req.ConversationID); err != nil {
			if errors.Is(err, repository.ErrConversationNotFound) {
				http.Error(w, "Conversation not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to mark conversation read", slog.Any("error", err))
			http.Error(w, "Failed to mark conversation read", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		render.JSON(w, r, response.Ok("conversation marked read"))
	}
}
