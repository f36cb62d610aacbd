package inbox

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"LeadDesk/internal/lib/api/response"

	"github.com/go-chi/render"
)

type SelectRequest struct {
	ConversationID string `json:"conversation_id"`
}

func SelectConversation(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := handler.SelectConversation(req.ConversationID); err != nil {
			log.Error("Failed to select conversation", slog.Any("error", err))
			http.Error(w, "Failed to select conversation", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		render.JSON(w, r, response.Ok("conversation selected"))
	}
}

type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

func SetVisibility(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VisibilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := handler.SetVisible(req.Visible); err != nil {
			log.Error("Failed to change visibility", slog.Any("error", err))
			http.Error(w, "Failed to change visibility", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		render.JSON(w, r, response.Ok("visibility updated"))
	}
}
