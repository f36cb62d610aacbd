package subscription

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LeadDesk/entity"
	"LeadDesk/internal/state"
)

// mockRepo counts open streams so tests can assert subscription hygiene.
type mockRepo struct {
	mu sync.Mutex

	conversations []entity.Conversation
	messages      map[string][]entity.Message

	convStreams int
	msgStreams  int
	readAcks    map[string]int
	pageCalls   int
	pageStarted chan struct{}
	pageRelease chan struct{}
}

func newRepo() *mockRepo {
	return &mockRepo{
		messages: make(map[string][]entity.Message),
		readAcks: make(map[string]int),
	}
}

func (m *mockRepo) GetConversations(limit int) ([]entity.Conversation, error) {
	return m.conversations, nil
}

func (m *mockRepo) GetMessages(conversationID string, limit int) ([]entity.Message, error) {
	return m.messages[conversationID], nil
}

func (m *mockRepo) GetMessagesBefore(conversationID string, before time.Time, limit int) ([]entity.Message, error) {
	m.mu.Lock()
	m.pageCalls++
	m.mu.Unlock()
	if m.pageStarted != nil {
		m.pageStarted <- struct{}{}
		<-m.pageRelease
	}
	var older []entity.Message
	for _, msg := range m.messages[conversationID] {
		if msg.CreatedAt.Before(before) {
			older = append(older, msg)
		}
	}
	return older, nil
}

func (m *mockRepo) WatchConversations(handler func(entity.Conversation)) (func(), error) {
	m.mu.Lock()
	m.convStreams++
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.convStreams--
		m.mu.Unlock()
	}, nil
}

func (m *mockRepo) WatchMessages(conversationID string, handler func(entity.Message)) (func(), error) {
	m.mu.Lock()
	m.msgStreams++
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.msgStreams--
		m.mu.Unlock()
	}, nil
}

func (m *mockRepo) MarkConversationRead(conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readAcks[conversationID]++
	return nil
}

func (m *mockRepo) streams() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.convStreams, m.msgStreams
}

func newManager(repo *mockRepo) (*Manager, *state.Store) {
	store := state.NewStore()
	return NewManager(repo, store, 50, 30, slog.Default()), store
}

func TestInit_LoadsAndSubscribesOnce(t *testing.T) {
	repo := newRepo()
	repo.conversations = []entity.Conversation{{ID: "c1"}, {ID: "c2"}}
	mgr, store := newManager(repo)

	require.NoError(t, mgr.Init())
	require.NoError(t, mgr.Init())

	convStreams, _ := repo.streams()
	assert.Equal(t, 1, convStreams)
	assert.Len(t, store.Conversations(), 2)
}

func TestSelectConversation_SwapsMessageStream(t *testing.T) {
	repo := newRepo()
	repo.conversations = []entity.Conversation{{ID: "c1"}, {ID: "c2"}}
	mgr, store := newManager(repo)
	require.NoError(t, mgr.Init())

	require.NoError(t, mgr.SelectConversation("c1"))
	require.NoError(t, mgr.SelectConversation("c2"))

	_, msgStreams := repo.streams()
	assert.Equal(t, 1, msgStreams)
	assert.Equal(t, "c2", store.Selected())
}

func TestSelectConversation_MarksReadOncePerSelection(t *testing.T) {
	repo := newRepo()
	repo.conversations = []entity.Conversation{{ID: "c1", UnreadCount: 4}}
	mgr, store := newManager(repo)
	require.NoError(t, mgr.Init())

	require.NoError(t, mgr.SelectConversation("c1"))

	assert.Equal(t, 1, repo.readAcks["c1"])
	conv, _ := store.Conversation("c1")
	assert.Zero(t, conv.UnreadCount)

	// Re-selecting with nothing unread must not re-acknowledge.
	require.NoError(t, mgr.SelectConversation("c1"))
	assert.Equal(t, 1, repo.readAcks["c1"])
}

func TestVisibility_PauseResumeIsIdempotent(t *testing.T) {
	repo := newRepo()
	repo.conversations = []entity.Conversation{{ID: "c1"}}
	mgr, _ := newManager(repo)
	require.NoError(t, mgr.Init())
	require.NoError(t, mgr.SelectConversation("c1"))

	require.NoError(t, mgr.SetVisible(false))
	require.NoError(t, mgr.SetVisible(false))

	convStreams, msgStreams := repo.streams()
	assert.Zero(t, convStreams)
	assert.Zero(t, msgStreams)

	require.NoError(t, mgr.SetVisible(true))
	require.NoError(t, mgr.SetVisible(true))

	convStreams, msgStreams = repo.streams()
	assert.Equal(t, 1, convStreams)
	assert.Equal(t, 1, msgStreams)
}

func TestVisibility_ResumeAcknowledgesUnreadArrivedWhileHidden(t *testing.T) {
	repo := newRepo()
	repo.conversations = []entity.Conversation{{ID: "c1"}}
	mgr, store := newManager(repo)
	require.NoError(t, mgr.Init())
	require.NoError(t, mgr.SelectConversation("c1"))
	require.Zero(t, repo.readAcks["c1"])

	require.NoError(t, mgr.SetVisible(false))
	store.SetUnread("c1", 2)

	require.NoError(t, mgr.SetVisible(true))

	assert.Equal(t, 1, repo.readAcks["c1"])
	conv, _ := store.Conversation("c1")
	assert.Zero(t, conv.UnreadCount)
}

func TestVisibility_HideKeepsLocalState(t *testing.T) {
	repo := newRepo()
	repo.conversations = []entity.Conversation{{ID: "c1"}}
	repo.messages["c1"] = []entity.Message{{ID: "m1", CreatedAt: time.Now()}}
	mgr, store := newManager(repo)
	require.NoError(t, mgr.Init())
	require.NoError(t, mgr.SelectConversation("c1"))

	require.NoError(t, mgr.SetVisible(false))

	// Stale-but-present is acceptable while hidden.
	assert.Len(t, store.Conversations(), 1)
	assert.Len(t, store.Messages("c1"), 1)
	assert.Equal(t, "c1", store.Selected())
}

func TestLoadOlderMessages_PrependsPreservingOrder(t *testing.T) {
	repo := newRepo()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.conversations = []entity.Conversation{{ID: "c1"}}
	old := entity.Message{ID: "m0", CreatedAt: base.Add(-time.Hour)}
	current := entity.Message{ID: "m1", CreatedAt: base}
	repo.messages["c1"] = []entity.Message{old, current}

	mgr, store := newManager(repo)
	store.SetMessages("c1", []entity.Message{current})

	require.NoError(t, mgr.LoadOlderMessages("c1"))

	window := store.Messages("c1")
	require.Len(t, window, 2)
	assert.Equal(t, "m0", window[0].ID)
	assert.Equal(t, "m1", window[1].ID)
}

func TestLoadOlderMessages_SerializedPerConversation(t *testing.T) {
	repo := newRepo()
	base := time.Now()
	repo.messages["c1"] = []entity.Message{
		{ID: "m0", CreatedAt: base.Add(-time.Hour)},
		{ID: "m1", CreatedAt: base},
	}
	repo.pageStarted = make(chan struct{}, 1)
	repo.pageRelease = make(chan struct{})

	mgr, store := newManager(repo)
	store.SetMessages("c1", []entity.Message{{ID: "m1", CreatedAt: base}})

	done := make(chan error, 1)
	go func() { done <- mgr.LoadOlderMessages("c1") }()
	<-repo.pageStarted

	// Second request while the first is in flight is a no-op.
	require.NoError(t, mgr.LoadOlderMessages("c1"))

	close(repo.pageRelease)
	require.NoError(t, <-done)

	assert.Equal(t, 1, repo.pageCalls)
}
