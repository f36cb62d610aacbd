package state

import (
	"sync"
	"testing"

	"LeadDesk/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conv(id string) entity.Conversation {
	return entity.Conversation{ID: id, Status: entity.ConversationOpen}
}

func msg(id, text string) entity.Message {
	return entity.Message{ID: id, Content: text}
}

func TestUpsertConversationPrependsNew(t *testing.T) {
	store := NewStore()
	store.SetConversations([]entity.Conversation{conv("a"), conv("b")})

	store.UpsertConversation(conv("c"))

	conversations := store.Conversations()
	require.Len(t, conversations, 3)
	assert.Equal(t, "c", conversations[0].ID)
	assert.Equal(t, "a", conversations[1].ID)
}

func TestUpsertConversationUpdatesInPlace(t *testing.T) {
	store := NewStore()
	store.SetConversations([]entity.Conversation{conv("a"), conv("b")})

	updated := conv("b")
	updated.UnreadCount = 7
	store.UpsertConversation(updated)

	conversations := store.Conversations()
	require.Len(t, conversations, 2)
	assert.Equal(t, "b", conversations[1].ID)
	assert.Equal(t, 7, conversations[1].UnreadCount)
}

func TestUpsertConversationEvictsOldestPastLimit(t *testing.T) {
	store := NewStore()
	store.SetConversationLimit(3)
	store.SetConversations([]entity.Conversation{conv("a"), conv("b"), conv("c")})
	store.SetMessages("c", []entity.Message{msg("m1", "bye")})

	store.UpsertConversation(conv("d"))

	conversations := store.Conversations()
	require.Len(t, conversations, 3)
	assert.Equal(t, "d", conversations[0].ID)
	_, ok := store.Conversation("c")
	assert.False(t, ok)
	assert.Empty(t, store.Messages("c"))

	// Updates to surviving conversations never trigger eviction.
	store.UpsertConversation(conv("a"))
	assert.Len(t, store.Conversations(), 3)
}

func TestConversationsReturnsCopy(t *testing.T) {
	store := NewStore()
	store.SetConversations([]entity.Conversation{conv("a")})

	snapshot := store.Conversations()
	snapshot[0].AssignedTo = "mutated"

	got, ok := store.Conversation("a")
	require.True(t, ok)
	assert.Empty(t, got.AssignedTo)
}

func TestSetAssignedToUnknownConversationIsNoop(t *testing.T) {
	store := NewStore()
	store.SetConversations([]entity.Conversation{conv("a")})

	store.SetAssignedTo("missing", "agent1")

	_, ok := store.AssignedTo("missing")
	assert.False(t, ok)
}

func TestUpsertMessageUpdatesById(t *testing.T) {
	store := NewStore()
	store.SetMessages("a", []entity.Message{msg("m1", "hi"), msg("m2", "there")})

	updated := msg("m1", "hi")
	updated.Status = entity.StatusSent
	store.UpsertMessage("a", updated)

	window := store.Messages("a")
	require.Len(t, window, 2)
	assert.Equal(t, entity.StatusSent, window[0].Status)
	assert.Equal(t, "m2", window[1].ID)
}

func TestPrependMessagesKeepsDisplayOrder(t *testing.T) {
	store := NewStore()
	store.SetMessages("a", []entity.Message{msg("m3", "c"), msg("m4", "d")})

	store.PrependMessages("a", []entity.Message{msg("m1", "a"), msg("m2", "b")})

	window := store.Messages("a")
	require.Len(t, window, 4)
	assert.Equal(t, []string{"m1", "m2", "m3", "m4"}, []string{
		window[0].ID, window[1].ID, window[2].ID, window[3].ID,
	})
}

func TestDropMessagesForgetsWindow(t *testing.T) {
	store := NewStore()
	store.SetMessages("a", []entity.Message{msg("m1", "hi")})

	store.DropMessages("a")

	assert.Empty(t, store.Messages("a"))
}

func TestSelectTracksFocus(t *testing.T) {
	store := NewStore()
	assert.Empty(t, store.Selected())

	store.Select("a")
	assert.Equal(t, "a", store.Selected())
}

func TestConcurrentAccess(t *testing.T) {
	store := NewStore()
	store.SetConversations([]entity.Conversation{conv("a")})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.UpsertMessage("a", msg("m", "x"))
			store.SetUnread("a", 1)
		}()
		go func() {
			defer wg.Done()
			_ = store.Conversations()
			_ = store.Messages("a")
		}()
	}
	wg.Wait()

	_, ok := store.Conversation("a")
	assert.True(t, ok)
}
