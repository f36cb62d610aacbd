package inbox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"LeadDesk/impl/core"
	"LeadDesk/internal/database"
	"LeadDesk/internal/service/delivery"
)

// sendError maps pipeline errors to HTTP statuses. A failed provider
// dispatch is not an error here: the message is persisted either way.
func sendError(w http.ResponseWriter, log *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, delivery.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrConversationNotFound):
		http.Error(w, "Conversation not found", http.StatusNotFound)
	case errors.Is(err, core.ErrSessionExpired):
		http.Error(w, "Session window expired, send a template first", http.StatusConflict)
	default:
		log.Error("Failed to "+action, slog.Any("error", err))
		http.Error(w, "Failed to "+action, http.StatusInternalServerError)
	}
}

func SendText(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req delivery.TextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		msg, err := handler.SendText(req)
		if err != nil {
			sendError(w, log, err, "send message")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(msg)
	}
}

func SendMedia(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req delivery.MediaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		msg, err := handler.SendMedia(req)
		if err != nil {
			sendError(w, log, err, "send media")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(msg)
	}
}

func SendTemplate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req delivery.TemplateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		msg, err := handler.SendTemplate(req)
		if err != nil {
			sendError(w, log, err, "send template")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(msg)
	}
}

func SendInteractive(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req delivery.InteractiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		msg, err := handler.SendInteractive(req)
		if err != nil {
			sendError(w, log, err, "send interactive message")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(msg)
	}
}

func ScheduleMessage(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req delivery.ScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		msg, err := handler.ScheduleMessage(req)
		if err != nil {
			sendError(w, log, err, "schedule message")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(msg)
	}
}
