package inbox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"LeadDesk/internal/database"
	"LeadDesk/internal/lib/api/response"
	"LeadDesk/internal/service/assignment"

	"github.com/go-chi/render"
)

type AssignRequest struct {
	ConversationID string `json:"conversation_id"`
	AgentID        string `json:"agent_id"`
}

func Assign(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := handler.Assign(req.ConversationID, req.AgentID); err != nil {
			if errors.Is(err, repository.ErrConversationNotFound) {
				http.Error(w, "Conversation not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, assignment.ErrAssignmentPersistence) {
				http.Error(w, "Assignment could not be saved", http.StatusConflict)
				return
			}
			log.Error("Failed to assign conversation", slog.Any("error", err))
			http.Error(w, "Failed to assign conversation", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		render.JSON(w, r, response.Ok("conversation assigned"))
	}
}

type DistributeResponse struct {
	Assigned int `json:"assigned"`
	Failed   int `json:"failed"`
}

func Distribute(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assigned, failed, err := handler.DistributeUnassignedLeads()
		if err != nil {
			log.Error("Failed to distribute leads", slog.Any("error", err))
			http.Error(w, "Failed to distribute leads", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DistributeResponse{Assigned: assigned, Failed: failed})
	}
}

func ActiveLeads(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := handler.ActiveLeadsCount()
		if err != nil {
			log.Error("Failed to count active leads", slog.Any("error", err))
			http.Error(w, "Failed to count active leads", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(counts)
	}
}
