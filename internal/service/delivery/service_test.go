package delivery

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LeadDesk/entity"
	repository "LeadDesk/internal/database"
	"LeadDesk/internal/service/channel"
)

// mockRepo is an in-memory Repository that records pipeline effects.
type mockRepo struct {
	mu          sync.Mutex
	conv        *entity.Conversation
	saved       []*entity.Message
	statuses    map[string]string
	providerIDs map[string]string
	unreadReset bool
	saveErr     error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		conv: &entity.Conversation{
			ID:          "conv-1",
			Phone:       "+15551234567",
			Channel:     entity.ChannelWhatsApp,
			Status:      entity.ConversationOpen,
			UnreadCount: 3,
		},
		statuses:    make(map[string]string),
		providerIDs: make(map[string]string),
	}
}

func (m *mockRepo) GetConversation(id string) (*entity.Conversation, error) {
	if id != m.conv.ID {
		return nil, repository.ErrConversationNotFound
	}
	return m.conv, nil
}

func (m *mockRepo) SaveOutboundMessage(msg *entity.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	saved := *msg
	m.saved = append(m.saved, &saved)
	m.statuses[msg.ID] = msg.Status
	m.unreadReset = true
	return nil
}

func (m *mockRepo) SetMessageStatus(messageID, status, providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[messageID] = status
	if providerID != "" {
		m.providerIDs[messageID] = providerID
	}
	return nil
}

func (m *mockRepo) status(messageID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses[messageID]
}

// mockProvider simulates the channel API.
type mockProvider struct {
	enabled bool
	err     error
	sent    []string
	mu      sync.Mutex
}

func (p *mockProvider) Enabled() bool { return p.enabled }

func (p *mockProvider) record(kind string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.sent = append(p.sent, kind)
	return "wamid.test", nil
}

func (p *mockProvider) SendText(string, channel.TextPayload) (string, error) {
	return p.record("text")
}
func (p *mockProvider) SendTemplate(string, channel.TemplatePayload) (string, error) {
	return p.record("template")
}
func (p *mockProvider) SendMedia(string, channel.MediaPayload) (string, error) {
	return p.record("media")
}
func (p *mockProvider) SendInteractive(string, channel.InteractivePayload) (string, error) {
	return p.record("interactive")
}

func newService(repo *mockRepo, provider *mockProvider) *Service {
	return NewService(repo, provider, slog.Default())
}

func TestSendText_SaveFirstThenDispatch(t *testing.T) {
	repo := newMockRepo()
	provider := &mockProvider{enabled: true}
	svc := newService(repo, provider)

	msg, err := svc.SendText(TextRequest{
		ConversationID: "conv-1",
		SenderID:       "agent-1",
		Text:           "hello",
	})
	require.NoError(t, err)

	// Durable record exists before any provider response is reconciled.
	status := repo.status(msg.ID)
	assert.Contains(t, []string{entity.StatusPending, entity.StatusSent}, status)
	assert.True(t, repo.unreadReset)

	svc.Wait()
	assert.Equal(t, entity.StatusSent, repo.status(msg.ID))
	assert.Equal(t, "wamid.test", repo.providerIDs[msg.ID])
}

func TestSendText_DispatchFailureIsNotAnError(t *testing.T) {
	repo := newMockRepo()
	provider := &mockProvider{enabled: true, err: errors.New("provider down")}
	svc := newService(repo, provider)

	msg, err := svc.SendText(TextRequest{
		ConversationID: "conv-1",
		SenderID:       "agent-1",
		Text:           "hello",
	})
	require.NoError(t, err)

	svc.Wait()

	// Failure lands on the message record; local effects stay applied.
	assert.Equal(t, entity.StatusFailed, repo.status(msg.ID))
	assert.True(t, repo.unreadReset)
}

func TestSendText_NoChannelMeansLocallySent(t *testing.T) {
	repo := newMockRepo()
	provider := &mockProvider{enabled: false}
	svc := newService(repo, provider)

	msg, err := svc.SendText(TextRequest{
		ConversationID: "conv-1",
		SenderID:       "agent-1",
		Text:           "hello",
	})
	require.NoError(t, err)

	svc.Wait()

	assert.Equal(t, entity.StatusSent, repo.status(msg.ID))
	assert.Empty(t, provider.sent)
}

func TestSendText_InternalChannelMeansLocallySent(t *testing.T) {
	repo := newMockRepo()
	repo.conv.Channel = entity.ChannelInternal
	repo.conv.Phone = ""
	provider := &mockProvider{enabled: true}
	svc := newService(repo, provider)

	msg, err := svc.SendText(TextRequest{
		ConversationID: "conv-1",
		SenderID:       "agent-1",
		Text:           "internal note",
	})
	require.NoError(t, err)

	svc.Wait()

	// The conversation has no provider channel even though one is
	// configured globally; nothing is dispatched.
	assert.Equal(t, entity.StatusSent, repo.status(msg.ID))
	assert.Empty(t, provider.sent)
}

func TestSendText_ConversationNotFound(t *testing.T) {
	svc := newService(newMockRepo(), &mockProvider{enabled: true})

	_, err := svc.SendText(TextRequest{
		ConversationID: "missing",
		SenderID:       "agent-1",
		Text:           "hello",
	})

	assert.ErrorIs(t, err, repository.ErrConversationNotFound)
}

func TestSendText_ValidationBeforePersistence(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo, &mockProvider{enabled: true})

	_, err := svc.SendText(TextRequest{ConversationID: "conv-1", SenderID: "agent-1"})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.saved)
}

func TestSendMedia_SizeLimit(t *testing.T) {
	svc := newService(newMockRepo(), &mockProvider{enabled: true})

	_, err := svc.SendMedia(MediaRequest{
		ConversationID: "conv-1",
		SenderID:       "agent-1",
		Kind:           "image",
		URL:            "https://cdn.example.com/big.jpg",
		SizeBytes:      MaxMediaBytes + 1,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestSendTemplate_RequiresResolvedParameters(t *testing.T) {
	svc := newService(newMockRepo(), &mockProvider{enabled: true})

	_, err := svc.SendTemplate(TemplateRequest{
		ConversationID: "conv-1",
		SenderID:       "agent-1",
		Name:           "welcome",
		Language:       "en",
		Parameters:     []string{"Alice", ""},
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestSendInteractive_ButtonRules(t *testing.T) {
	svc := newService(newMockRepo(), &mockProvider{enabled: true})

	tests := []struct {
		name    string
		buttons []InteractiveButton
		wantErr bool
	}{
		{"no buttons", nil, true},
		{"one button", []InteractiveButton{{ID: "a", Title: "Yes"}}, false},
		{"four buttons", []InteractiveButton{
			{ID: "a", Title: "1"}, {ID: "b", Title: "2"},
			{ID: "c", Title: "3"}, {ID: "d", Title: "4"},
		}, true},
		{"title too long", []InteractiveButton{
			{ID: "a", Title: "this title is far too long"},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendInteractive(InteractiveRequest{
				ConversationID: "conv-1",
				SenderID:       "agent-1",
				Body:           "pick one",
				Buttons:        tt.buttons,
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	svc.Wait()
}

func TestScheduleMessage_NoDispatch(t *testing.T) {
	repo := newMockRepo()
	provider := &mockProvider{enabled: true}
	svc := newService(repo, provider)

	when := time.Now().Add(2 * time.Hour)
	msg, err := svc.ScheduleMessage(ScheduleRequest{
		ConversationID: "conv-1",
		SenderID:       "agent-1",
		Text:           "follow up tomorrow",
		ScheduledFor:   when,
	})
	require.NoError(t, err)

	svc.Wait()

	assert.Equal(t, entity.StatusScheduled, repo.status(msg.ID))
	require.NotNil(t, msg.ScheduledFor)
	assert.Empty(t, provider.sent)
}

func TestScheduleMessage_RejectsPast(t *testing.T) {
	svc := newService(newMockRepo(), &mockProvider{enabled: true})

	_, err := svc.ScheduleMessage(ScheduleRequest{
		ConversationID: "conv-1",
		SenderID:       "agent-1",
		Text:           "too late",
		ScheduledFor:   time.Now().Add(-time.Minute),
	})

	assert.ErrorIs(t, err, ErrValidation)
}
