package inbox

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"LeadDesk/entity"
	"LeadDesk/internal/lib/api/response"

	"github.com/go-chi/render"
)

func GetAgents(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agents, err := handler.Agents()
		if err != nil {
			log.Error("Failed to list agents", slog.Any("error", err))
			http.Error(w, "Failed to list agents", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(agents)
	}
}

func UpsertAgent(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var agent entity.Agent
		if err := json.NewDecoder(r.Body).Decode(&agent); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := handler.UpsertAgent(&agent); err != nil {
			log.Error("Failed to save agent", slog.Any("error", err))
			http.Error(w, "Failed to save agent", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		render.JSON(w, r, response.Ok("agent saved"))
	}
}
