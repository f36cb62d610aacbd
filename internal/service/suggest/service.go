package suggest

import (
	"LeadDesk/entity"
	"LeadDesk/internal/config"
	"LeadDesk/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are an assistant for a sales agency inbox. " +
	"Draft a short, polite reply the agent could send next. " +
	"Answer in the customer's language. Reply with the message text only."

// Service drafts reply suggestions for the inbox from recent conversation
// history.
type Service struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

func NewService(conf *config.Config, logger *slog.Logger) *Service {
	if conf.OpenAI.ApiKey == "" {
		return nil
	}
	return &Service{
		client: openai.NewClient(conf.OpenAI.ApiKey),
		model:  conf.OpenAI.Model,
		log:    logger.With(sl.Module("suggest")),
	}
}

// SuggestReply drafts a reply from the most recent messages, oldest-first.
func (s *Service) SuggestReply(ctx context.Context, conv *entity.Conversation, history []entity.Message) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}

	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Direction == entity.DirectionOut {
			role = openai.ChatMessageRoleAssistant
		}
		content := msg.Content
		if content == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: content})
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		s.log.With(sl.Err(err), slog.String("conversation_id", conv.ID)).Error("suggest reply")
		return "", fmt.Errorf("suggest reply: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("suggest reply: empty completion")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
