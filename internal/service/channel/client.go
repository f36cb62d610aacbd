package channel

import (
	"LeadDesk/internal/config"
	"LeadDesk/internal/lib/sl"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Client talks to the messaging provider's cloud API. One logical operation
// per message variant; each returns the provider message id on success.
type Client struct {
	enabled       bool
	baseUrl       string
	token         string
	phoneNumberId string
	http          *http.Client
	log           *slog.Logger
}

func NewClient(conf *config.Config, logger *slog.Logger) *Client {
	return &Client{
		enabled:       conf.Channel.Enabled,
		baseUrl:       conf.Channel.BaseURL,
		token:         conf.Channel.Token,
		phoneNumberId: conf.Channel.PhoneNumberID,
		http:          &http.Client{Timeout: 10 * time.Second},
		log:           logger.With(sl.Module("channel-client")),
	}
}

// Enabled reports whether a provider channel is configured. When false the
// delivery pipeline skips dispatch entirely.
func (c *Client) Enabled() bool {
	return c.enabled && c.token != "" && c.phoneNumberId != ""
}

func (c *Client) SendText(to string, payload TextPayload) (string, error) {
	return c.post(to, "text", payload)
}

func (c *Client) SendTemplate(to string, payload TemplatePayload) (string, error) {
	return c.post(to, "template", payload)
}

func (c *Client) SendMedia(to string, payload MediaPayload) (string, error) {
	return c.post(to, payload.Kind, payload)
}

func (c *Client) SendInteractive(to string, payload InteractivePayload) (string, error) {
	return c.post(to, "interactive", payload)
}

type sendRequest struct {
	To      string `json:"to"`
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *Client) post(to, msgType string, payload any) (string, error) {
	url := fmt.Sprintf("%s/%s/messages", c.baseUrl, c.phoneNumberId)

	body := sendRequest{
		To:      to,
		Type:    msgType,
		Payload: payload,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		c.log.With(sl.Err(err)).Error("marshal send body")
		return "", err
	}

	req, err := http.NewRequest("POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		c.log.With(sl.Err(err)).Error("create POST request")
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.With(sl.Err(err)).Error("send POST HTTP")
		return "", err
	}
	defer resp.Body.Close()

	var decoded sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("provider rejected %s message: status %d: %s",
			msgType, resp.StatusCode, decoded.Error.Message)
	}
	if len(decoded.Messages) == 0 {
		return "", fmt.Errorf("provider returned no message id")
	}

	c.log.With(
		slog.String("to", to),
		slog.String("type", msgType),
		slog.String("provider_id", decoded.Messages[0].ID),
	).Info("message dispatched")

	return decoded.Messages[0].ID, nil
}
