package inbox

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type CreateRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Channel string `json:"channel"`
}

func CreateConversation(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		conv, err := handler.CreateConversation(req.Name, req.Phone, req.Email, req.Channel)
		if err != nil {
			log.Error("Failed to create conversation", slog.Any("error", err))
			http.Error(w, "Failed to create conversation", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(conv)
	}
}
