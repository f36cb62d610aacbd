package core

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"LeadDesk/entity"
	"LeadDesk/internal/service/delivery"
	"LeadDesk/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepo embeds the interface so only the methods a test reaches need
// real bodies.
type mockRepo struct {
	Repository

	lastInbound   *time.Time
	templateSince bool

	convByPhone *entity.Conversation
	created     []entity.Conversation
	recorded    []entity.Message
}

func (m *mockRepo) LastInboundAt(string) (*time.Time, error) {
	return m.lastInbound, nil
}

func (m *mockRepo) HasTemplateSince(string, time.Time) (bool, error) {
	return m.templateSince, nil
}

func (m *mockRepo) FindConversationByPhone(string) (*entity.Conversation, error) {
	return m.convByPhone, nil
}

func (m *mockRepo) CreateConversation(conv *entity.Conversation) error {
	m.created = append(m.created, *conv)
	return nil
}

func (m *mockRepo) RecordInbound(msg *entity.Message) error {
	m.recorded = append(m.recorded, *msg)
	return nil
}

type mockDelivery struct {
	texts     []delivery.TextRequest
	templates []delivery.TemplateRequest
	media     []delivery.MediaRequest
}

func (m *mockDelivery) SendText(req delivery.TextRequest) (*entity.Message, error) {
	m.texts = append(m.texts, req)
	return entity.NewOutbound(req.ConversationID, req.SenderID, entity.TypeText, req.Text), nil
}

func (m *mockDelivery) SendMedia(req delivery.MediaRequest) (*entity.Message, error) {
	m.media = append(m.media, req)
	return entity.NewOutbound(req.ConversationID, req.SenderID, req.Kind, req.Caption), nil
}

func (m *mockDelivery) SendTemplate(req delivery.TemplateRequest) (*entity.Message, error) {
	m.templates = append(m.templates, req)
	return entity.NewOutbound(req.ConversationID, req.SenderID, entity.TypeTemplate, req.Name), nil
}

func (m *mockDelivery) SendInteractive(req delivery.InteractiveRequest) (*entity.Message, error) {
	return entity.NewOutbound(req.ConversationID, req.SenderID, entity.TypeInteractive, req.Body), nil
}

func (m *mockDelivery) ScheduleMessage(req delivery.ScheduleRequest) (*entity.Message, error) {
	return entity.NewOutbound(req.ConversationID, req.SenderID, entity.TypeText, req.Text), nil
}

func newTestCore(repo *mockRepo, svc *mockDelivery) *Core {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(log, state.NewStore(), 30)
	c.SetRepository(repo)
	c.SetDeliveryService(svc)
	return c
}

func hoursAgo(h int) *time.Time {
	t := time.Now().Add(-time.Duration(h) * time.Hour)
	return &t
}

func TestFreeFormBlockedOnExpiredWindow(t *testing.T) {
	repo := &mockRepo{lastInbound: hoursAgo(25)}
	svc := &mockDelivery{}
	c := newTestCore(repo, svc)

	_, err := c.SendText(delivery.TextRequest{ConversationID: "c1", SenderID: "a1", Text: "hi"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionExpired))
	assert.Empty(t, svc.texts)
}

func TestFreeFormBlockedWhenNoInboundEver(t *testing.T) {
	repo := &mockRepo{lastInbound: nil}
	svc := &mockDelivery{}
	c := newTestCore(repo, svc)

	_, err := c.SendMedia(delivery.MediaRequest{
		ConversationID: "c1", SenderID: "a1", Kind: "image", URL: "https://x/y.png",
	})

	assert.True(t, errors.Is(err, ErrSessionExpired))
	assert.Empty(t, svc.media)
}

func TestFreeFormAllowedWhileExpiring(t *testing.T) {
	repo := &mockRepo{lastInbound: hoursAgo(21)}
	svc := &mockDelivery{}
	c := newTestCore(repo, svc)

	msg, err := c.SendText(delivery.TextRequest{ConversationID: "c1", SenderID: "a1", Text: "hi"})

	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Len(t, svc.texts, 1)
}

func TestTemplateBypassesWindowGate(t *testing.T) {
	repo := &mockRepo{lastInbound: nil}
	svc := &mockDelivery{}
	c := newTestCore(repo, svc)

	_, err := c.SendTemplate(delivery.TemplateRequest{
		ConversationID: "c1", SenderID: "a1", Name: "welcome", Language: "en",
	})

	require.NoError(t, err)
	assert.Len(t, svc.templates, 1)
}

func TestAdvisoryFlagDoesNotGate(t *testing.T) {
	repo := &mockRepo{lastInbound: hoursAgo(1), templateSince: false}
	svc := &mockDelivery{}
	c := newTestCore(repo, svc)

	window, err := c.SessionWindow("c1")
	require.NoError(t, err)
	assert.True(t, window.NeedsTemplateFirst)
	assert.True(t, window.CanSendFreeForm)

	_, err = c.SendText(delivery.TextRequest{ConversationID: "c1", SenderID: "a1", Text: "hi"})
	assert.NoError(t, err)
}

func TestSessionWindowReportsRemaining(t *testing.T) {
	repo := &mockRepo{lastInbound: hoursAgo(20), templateSince: true}
	c := newTestCore(repo, &mockDelivery{})

	window, err := c.SessionWindow("c1")

	require.NoError(t, err)
	assert.Equal(t, "expiring", window.Status)
	assert.False(t, window.NeedsTemplateFirst)
	assert.InDelta(t, (4 * time.Hour).Seconds(), float64(window.RemainingSeconds), 5)
}

func TestRecordInboundCreatesConversationOnFirstContact(t *testing.T) {
	repo := &mockRepo{convByPhone: nil}
	c := newTestCore(repo, &mockDelivery{})

	msg, err := c.RecordInbound("+15550001111", "Dana", entity.TypeText, "hello")

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "+15550001111", repo.created[0].Phone)
	require.Len(t, repo.recorded, 1)
	assert.Equal(t, repo.created[0].ID, msg.ConversationID)
	assert.Equal(t, entity.DirectionIn, msg.Direction)
}

func TestRecordInboundReusesExistingConversation(t *testing.T) {
	existing := entity.NewConversation("Dana", "+15550001111", "", entity.ChannelWhatsApp)
	repo := &mockRepo{convByPhone: existing}
	c := newTestCore(repo, &mockDelivery{})

	msg, err := c.RecordInbound("+15550001111", "Dana", entity.TypeText, "hello again")

	require.NoError(t, err)
	assert.Empty(t, repo.created)
	assert.Equal(t, existing.ID, msg.ConversationID)
}
