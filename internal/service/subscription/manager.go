package subscription

import (
	"LeadDesk/entity"
	"LeadDesk/internal/lib/sl"
	"LeadDesk/internal/state"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Repository is what the manager needs from storage: snapshot reads plus
// live change streams.
type Repository interface {
	GetConversations(limit int) ([]entity.Conversation, error)
	GetMessages(conversationID string, limit int) ([]entity.Message, error)
	GetMessagesBefore(conversationID string, before time.Time, limit int) ([]entity.Message, error)
	WatchConversations(handler func(entity.Conversation)) (func(), error)
	WatchMessages(conversationID string, handler func(entity.Message)) (func(), error)
	MarkConversationRead(conversationID string) error
}

// Manager owns the live subscriptions backing the console: one conversation
// list stream plus one message stream for the selected conversation. It
// guarantees at most one active subscription per scope and releases provider
// resources while the console is hidden.
type Manager struct {
	repo  Repository
	store *state.Store
	log   *slog.Logger

	conversationLimit int
	messageLimit      int

	mu                sync.Mutex
	stopConversations func()
	stopMessages      func()
	paginating        map[string]bool
}

func NewManager(repo Repository, store *state.Store, conversationLimit, messageLimit int, logger *slog.Logger) *Manager {
	store.SetConversationLimit(conversationLimit)
	return &Manager{
		repo:              repo,
		store:             store,
		conversationLimit: conversationLimit,
		messageLimit:      messageLimit,
		paginating:        make(map[string]bool),
		log:               logger.With(sl.Module("subscription")),
	}
}

// Init loads the most recent conversations and opens the list stream.
// Calling it again replaces the existing stream instead of stacking a second
// one.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initLocked()
}

func (m *Manager) initLocked() error {
	if m.stopConversations != nil {
		m.stopConversations()
		m.stopConversations = nil
	}

	conversations, err := m.repo.GetConversations(m.conversationLimit)
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}
	m.store.SetConversations(conversations)

	stop, err := m.repo.WatchConversations(m.store.UpsertConversation)
	if err != nil {
		return fmt.Errorf("watch conversations: %w", err)
	}
	m.stopConversations = stop
	return nil
}

// SelectConversation focuses a conversation: swaps the message stream over
// to it, loads the most recent page (display order), and acknowledges unread
// messages once per selection.
func (m *Manager) SelectConversation(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectAndAckLocked(id)
}

func (m *Manager) selectAndAckLocked(id string) error {
	if err := m.selectLocked(id); err != nil {
		return err
	}

	if conv, ok := m.store.Conversation(id); ok && conv.UnreadCount > 0 {
		if err := m.repo.MarkConversationRead(id); err != nil {
			m.log.With(sl.Err(err), slog.String("conversation_id", id)).Error("mark read")
		} else {
			m.store.SetUnread(id, 0)
		}
	}
	return nil
}

func (m *Manager) selectLocked(id string) error {
	if m.stopMessages != nil {
		m.stopMessages()
		m.stopMessages = nil
	}

	messages, err := m.repo.GetMessages(id, m.messageLimit)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	m.store.SetMessages(id, messages)
	m.store.Select(id)

	stop, err := m.repo.WatchMessages(id, func(msg entity.Message) {
		m.store.UpsertMessage(id, msg)
	})
	if err != nil {
		return fmt.Errorf("watch messages: %w", err)
	}
	m.stopMessages = stop
	return nil
}

// SetVisible pauses or resumes all subscriptions with the console's
// visibility. Hiding closes every stream but keeps local state; showing
// re-opens the list stream and re-selects the focused conversation.
// Redundant hide/show events never stack duplicate subscriptions.
func (m *Manager) SetVisible(visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !visible {
		if m.stopConversations != nil {
			m.stopConversations()
			m.stopConversations = nil
		}
		if m.stopMessages != nil {
			m.stopMessages()
			m.stopMessages = nil
		}
		return nil
	}

	if err := m.initLocked(); err != nil {
		return err
	}
	if selected := m.store.Selected(); selected != "" {
		// Same path as a fresh selection so unread messages that arrived
		// while hidden are acknowledged on resume.
		if err := m.selectAndAckLocked(selected); err != nil {
			return err
		}
	}
	return nil
}

// Close tears down all subscriptions.
func (m *Manager) Close() {
	_ = m.SetVisible(false)
}

// LoadOlderMessages prepends the page before the current window, keeping
// existing positions stable. A second call while one is in flight for the
// same conversation is a no-op.
func (m *Manager) LoadOlderMessages(conversationID string) error {
	m.mu.Lock()
	if m.paginating[conversationID] {
		m.mu.Unlock()
		return nil
	}
	window := m.store.Messages(conversationID)
	if len(window) == 0 {
		m.mu.Unlock()
		return nil
	}
	m.paginating[conversationID] = true
	oldest := window[0].CreatedAt
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.paginating, conversationID)
		m.mu.Unlock()
	}()

	older, err := m.repo.GetMessagesBefore(conversationID, oldest, m.messageLimit)
	if err != nil {
		return fmt.Errorf("load older messages: %w", err)
	}
	m.store.PrependMessages(conversationID, older)
	return nil
}
