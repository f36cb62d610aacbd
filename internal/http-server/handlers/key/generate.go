package key

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type GenerateRequest struct {
	Username string `json:"username"`
}

type GenerateResponse struct {
	Username string `json:"username"`
	Key      string `json:"key"`
}

func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Username == "" {
			http.Error(w, "Username is required", http.StatusBadRequest)
			return
		}

		apiKey, err := handler.GenerateApiKey(req.Username)
		if err != nil {
			log.Error("Failed to generate api key", slog.Any("error", err))
			http.Error(w, "Failed to generate api key", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(GenerateResponse{Username: req.Username, Key: apiKey})
	}
}
