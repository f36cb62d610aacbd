package state

import (
	"sync"

	"LeadDesk/entity"
)

// Store is the in-memory view the console renders from. It mirrors the
// repository through the subscription manager and is mutated optimistically
// by agent actions. All access is through typed methods; there is no
// package-level instance.
type Store struct {
	mu                sync.RWMutex
	conversations     []entity.Conversation
	conversationLimit int
	index             map[string]int
	messages          map[string][]entity.Message
	selectedID        string
}

func NewStore() *Store {
	return &Store{
		index:    make(map[string]int),
		messages: make(map[string][]entity.Message),
	}
}

// SetConversationLimit caps the conversation list; zero means unbounded.
// New conversations evict the oldest entries past the cap.
func (s *Store) SetConversationLimit(limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationLimit = limit
}

// SetConversations replaces the conversation list.
func (s *Store) SetConversations(conversations []entity.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = append([]entity.Conversation(nil), conversations...)
	s.reindex()
}

// UpsertConversation updates a conversation in place, or prepends it when
// it is new.
func (s *Store) UpsertConversation(conv entity.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[conv.ID]; ok {
		s.conversations[i] = conv
		return
	}
	s.conversations = append([]entity.Conversation{conv}, s.conversations...)
	if s.conversationLimit > 0 && len(s.conversations) > s.conversationLimit {
		for _, evicted := range s.conversations[s.conversationLimit:] {
			delete(s.messages, evicted.ID)
		}
		s.conversations = s.conversations[:s.conversationLimit]
	}
	s.reindex()
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.conversations))
	for i, c := range s.conversations {
		s.index[c.ID] = i
	}
}

// Conversations returns a copy of the conversation list.
func (s *Store) Conversations() []entity.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Conversation(nil), s.conversations...)
}

// Conversation returns a copy of one conversation.
func (s *Store) Conversation(id string) (entity.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return entity.Conversation{}, false
	}
	return s.conversations[i], true
}

// AssignedTo returns the local assignee of a conversation.
func (s *Store) AssignedTo(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return "", false
	}
	return s.conversations[i].AssignedTo, true
}

// SetAssignedTo mutates the local assignee of a conversation.
func (s *Store) SetAssignedTo(id, agentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[id]; ok {
		s.conversations[i].AssignedTo = agentID
	}
}

// SetUnread sets the local unread counter of a conversation.
func (s *Store) SetUnread(id string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[id]; ok {
		s.conversations[i].UnreadCount = count
	}
}

// Select records the conversation the console is focused on.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = id
}

// Selected returns the focused conversation id, or empty.
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// SetMessages replaces the message window of a conversation.
func (s *Store) SetMessages(conversationID string, messages []entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[conversationID] = append([]entity.Message(nil), messages...)
}

// UpsertMessage updates a message in place by id, or appends it. Display
// order is creation order; the repository never reorders persisted messages.
func (s *Store) UpsertMessage(conversationID string, msg entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.messages[conversationID]
	for i, existing := range window {
		if existing.ID == msg.ID {
			window[i] = msg
			return
		}
	}
	s.messages[conversationID] = append(window, msg)
}

// PrependMessages inserts an older page before the current window without
// disturbing existing positions.
func (s *Store) PrependMessages(conversationID string, older []entity.Message) {
	if len(older) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.messages[conversationID]
	merged := make([]entity.Message, 0, len(older)+len(window))
	merged = append(merged, older...)
	merged = append(merged, window...)
	s.messages[conversationID] = merged
}

// Messages returns a copy of the message window of a conversation.
func (s *Store) Messages(conversationID string) []entity.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Message(nil), s.messages[conversationID]...)
}

// DropMessages forgets the message window of a conversation.
func (s *Store) DropMessages(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, conversationID)
}
