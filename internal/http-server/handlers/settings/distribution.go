package settings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"LeadDesk/entity"
	"LeadDesk/internal/lib/api/response"

	"github.com/go-chi/render"
)

func GetDistribution(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := handler.DistributionSettings()
		if err != nil {
			log.Error("Failed to load distribution settings", slog.Any("error", err))
			http.Error(w, "Failed to load distribution settings", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(settings)
	}
}

func UpdateDistribution(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings entity.DistributionSettings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := handler.UpdateDistributionSettings(&settings); err != nil {
			log.Error("Failed to update distribution settings", slog.Any("error", err))
			http.Error(w, "Failed to update distribution settings", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		render.JSON(w, r, response.Ok("distribution settings updated"))
	}
}
