package inbox

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// DueScheduled lists scheduled messages whose send time has passed. Polled
// by the external scheduler.
func DueScheduled(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := handler.DueScheduledMessages()
		if err != nil {
			log.Error("Failed to list due scheduled messages", slog.Any("error", err))
			http.Error(w, "Failed to list due scheduled messages", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messages)
	}
}
