package inbox

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// webhookPayload is the provider's inbound notification, trimmed to the
// fields the inbox consumes.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// WebhookVerify answers the provider's subscription handshake.
func WebhookVerify(log *slog.Logger, verifyToken string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := r.URL.Query().Get("hub.mode")
		token := r.URL.Query().Get("hub.verify_token")
		challenge := r.URL.Query().Get("hub.challenge")

		if mode != "subscribe" || token != verifyToken {
			log.Warn("Webhook verification rejected")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
	}
}

// Webhook ingests inbound customer messages. The provider retries on
// non-200 responses, so ingestion failures are logged and acknowledged.
func Webhook(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		for _, entry := range payload.Entry {
			for _, change := range entry.Changes {
				name := ""
				if len(change.Value.Contacts) > 0 {
					name = change.Value.Contacts[0].Profile.Name
				}
				for _, msg := range change.Value.Messages {
					if msg.Type != "text" {
						continue
					}
					if _, err := handler.RecordInbound(msg.From, name, msg.Type, msg.Text.Body); err != nil {
						log.Error("Failed to record inbound message",
							slog.Any("error", err),
							slog.String("from", msg.From),
						)
					}
				}
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}
