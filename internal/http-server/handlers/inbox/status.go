package inbox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"LeadDesk/internal/database"
	"LeadDesk/internal/lib/api/response"

	"github.com/go-chi/render"
)

type StatusRequest struct {
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
}

func SetStatus(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := handler.SetConversationStatus(req.ConversationID, req.Status); err != nil {
			if errors.Is(err, repository.ErrConversationNotFound) {
				http.Error(w, "Conversation not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to set conversation status", slog.Any("error", err))
			http.Error(w, "Failed to set conversation status", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		render.JSON(w, r, response.Ok("conversation status updated"))
	}
}

type DealStatusRequest struct {
	ConversationID string `json:"conversation_id"`
	DealStatus     string `json:"deal_status"`
}

func SetDealStatus(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DealStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := handler.SetDealStatus(req.ConversationID, req.DealStatus); err != nil {
			if errors.Is(err, repository.ErrConversationNotFound) {
				http.Error(w, "Conversation not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to set deal status", slog.Any("error", err))
			http.Error(w, "Failed to set deal status", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		render.JSON(w, r, response.Ok("deal status updated"))
	}
}
