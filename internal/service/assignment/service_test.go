package assignment

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LeadDesk/entity"
	"LeadDesk/internal/state"
)

type mockRepo struct {
	settings   *entity.DistributionSettings
	unassigned []entity.Conversation
	loads      map[string]int
	assigned   map[string]string
	failFor    map[string]error
}

func newRepo() *mockRepo {
	return &mockRepo{
		settings: &entity.DistributionSettings{
			Enabled:      true,
			Mode:         entity.DistributionAuto,
			Participants: []string{"A", "B"},
		},
		loads:    map[string]int{},
		assigned: map[string]string{},
		failFor:  map[string]error{},
	}
}

func (m *mockRepo) GetDistributionSettings() (*entity.DistributionSettings, error) {
	return m.settings, nil
}

func (m *mockRepo) GetUnassignedConversations() ([]entity.Conversation, error) {
	return m.unassigned, nil
}

func (m *mockRepo) SetAssignedTo(conversationID, agentID string) error {
	if err := m.failFor[conversationID]; err != nil {
		return err
	}
	m.assigned[conversationID] = agentID
	return nil
}

func (m *mockRepo) ActiveLeadsCount() (map[string]int, error) {
	out := make(map[string]int, len(m.loads))
	for k, v := range m.loads {
		out[k] = v
	}
	return out, nil
}

func conv(id string) entity.Conversation {
	return entity.Conversation{ID: id, Status: entity.ConversationOpen}
}

func TestNextCollaborator_LeastLoaded(t *testing.T) {
	agent, ok := NextCollaborator([]string{"A", "B", "C"}, map[string]int{"A": 2, "B": 0, "C": 1})

	require.True(t, ok)
	assert.Equal(t, "B", agent)
}

func TestNextCollaborator_TieBreaksByInputOrder(t *testing.T) {
	agent, ok := NextCollaborator([]string{"A", "B"}, map[string]int{"A": 1, "B": 1})

	require.True(t, ok)
	assert.Equal(t, "A", agent)
}

func TestNextCollaborator_EmptyParticipants(t *testing.T) {
	_, ok := NextCollaborator(nil, map[string]int{"A": 1})

	assert.False(t, ok)
}

func TestAssign_OptimisticThenDurable(t *testing.T) {
	repo := newRepo()
	store := state.NewStore()
	store.SetConversations([]entity.Conversation{conv("c1")})
	svc := NewService(repo, store, slog.Default())

	err := svc.Assign("c1", "agentX")
	require.NoError(t, err)

	local, _ := store.AssignedTo("c1")
	assert.Equal(t, "agentX", local)
	assert.Equal(t, "agentX", repo.assigned["c1"])
}

func TestAssign_RollbackOnPersistenceFailure(t *testing.T) {
	repo := newRepo()
	repo.failFor["c1"] = errors.New("write timeout")

	store := state.NewStore()
	existing := conv("c1")
	existing.AssignedTo = "agentOld"
	store.SetConversations([]entity.Conversation{existing})

	svc := NewService(repo, store, slog.Default())

	err := svc.Assign("c1", "agentX")
	assert.ErrorIs(t, err, ErrAssignmentPersistence)

	local, _ := store.AssignedTo("c1")
	assert.Equal(t, "agentOld", local)
}

func TestAssign_ClearAssignment(t *testing.T) {
	repo := newRepo()
	store := state.NewStore()
	existing := conv("c1")
	existing.AssignedTo = "agentX"
	store.SetConversations([]entity.Conversation{existing})

	svc := NewService(repo, store, slog.Default())

	require.NoError(t, svc.Assign("c1", ""))

	local, _ := store.AssignedTo("c1")
	assert.Empty(t, local)
}

func TestDistribute_RebalancesWithinPass(t *testing.T) {
	repo := newRepo()
	repo.unassigned = []entity.Conversation{conv("c1"), conv("c2"), conv("c3")}

	store := state.NewStore()
	store.SetConversations(repo.unassigned)
	svc := NewService(repo, store, slog.Default())

	assigned, failed, err := svc.DistributeUnassignedLeads()
	require.NoError(t, err)

	assert.Equal(t, 3, assigned)
	assert.Equal(t, 0, failed)
	// Load advances after every assignment, so the pass alternates.
	assert.Equal(t, "A", repo.assigned["c1"])
	assert.Equal(t, "B", repo.assigned["c2"])
	assert.Equal(t, "A", repo.assigned["c3"])
}

func TestDistribute_FailureDoesNotAbortBatch(t *testing.T) {
	repo := newRepo()
	repo.unassigned = []entity.Conversation{conv("c1"), conv("c2"), conv("c3")}
	repo.failFor["c2"] = errors.New("write timeout")

	store := state.NewStore()
	store.SetConversations(repo.unassigned)
	svc := NewService(repo, store, slog.Default())

	assigned, failed, err := svc.DistributeUnassignedLeads()
	require.NoError(t, err)

	assert.Equal(t, 2, assigned)
	assert.Equal(t, 1, failed)
	assert.Equal(t, "A", repo.assigned["c1"])
	// c2 failed and did not advance the tally, so c3 goes to B.
	assert.Equal(t, "B", repo.assigned["c3"])
}

func TestDistribute_DisabledSettings(t *testing.T) {
	repo := newRepo()
	repo.settings.Enabled = false
	repo.unassigned = []entity.Conversation{conv("c1")}

	svc := NewService(repo, state.NewStore(), slog.Default())

	assigned, failed, err := svc.DistributeUnassignedLeads()
	require.NoError(t, err)
	assert.Zero(t, assigned)
	assert.Zero(t, failed)
	assert.Empty(t, repo.assigned)
}

func TestDistribute_RespectsExistingLoads(t *testing.T) {
	repo := newRepo()
	repo.loads = map[string]int{"A": 2}
	repo.unassigned = []entity.Conversation{conv("c1"), conv("c2")}

	store := state.NewStore()
	store.SetConversations(repo.unassigned)
	svc := NewService(repo, store, slog.Default())

	_, _, err := svc.DistributeUnassignedLeads()
	require.NoError(t, err)

	assert.Equal(t, "B", repo.assigned["c1"])
	assert.Equal(t, "B", repo.assigned["c2"])
}
