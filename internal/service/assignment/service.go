package assignment

import (
	"LeadDesk/entity"
	"LeadDesk/internal/lib/sl"
	"LeadDesk/internal/state"
	"errors"
	"fmt"
	"log/slog"
)

// ErrAssignmentPersistence is returned when the durable write behind an
// optimistic assignment fails. The local value has already been rolled back
// by the time callers see it.
var ErrAssignmentPersistence = errors.New("assignment persistence failed")

// Repository is what the engine needs from storage.
type Repository interface {
	GetDistributionSettings() (*entity.DistributionSettings, error)
	GetUnassignedConversations() ([]entity.Conversation, error)
	SetAssignedTo(conversationID, agentID string) error
	ActiveLeadsCount() (map[string]int, error)
}

// Events receives assignment changes after they are durable. Best-effort.
type Events interface {
	ConversationAssigned(conversationID, agentID string)
}

// Service balances agent workload: manual transfer through Assign, automatic
// distribution of unassigned leads through DistributeUnassignedLeads.
type Service struct {
	repo   Repository
	store  *state.Store
	events Events
	log    *slog.Logger
}

func NewService(repo Repository, store *state.Store, logger *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		store: store,
		log:   logger.With(sl.Module("assignment")),
	}
}

// SetEvents attaches the assignment event sink. Optional.
func (s *Service) SetEvents(events Events) {
	s.events = events
}

// Assign sets a conversation's assignee; an empty agentID clears it. The
// local store is updated before the durable write so the console reacts
// instantly, and rolled back if the write fails. Last write wins on
// conflict; there is no server-side locking.
func (s *Service) Assign(conversationID, agentID string) error {
	err := applyOptimistic(
		func() string {
			prev, _ := s.store.AssignedTo(conversationID)
			return prev
		},
		func(v string) { s.store.SetAssignedTo(conversationID, v) },
		agentID,
		func() error { return s.repo.SetAssignedTo(conversationID, agentID) },
	)
	if err != nil {
		s.log.With(
			sl.Err(err),
			slog.String("conversation_id", conversationID),
			slog.String("agent_id", agentID),
		).Error("assign conversation")
		return fmt.Errorf("%w: %v", ErrAssignmentPersistence, err)
	}

	if s.events != nil {
		s.events.ConversationAssigned(conversationID, agentID)
	}
	return nil
}

// ActiveLeadsCount returns, per agent, the number of assigned non-closed
// conversations. This is the load signal for distribution.
func (s *Service) ActiveLeadsCount() (map[string]int, error) {
	return s.repo.ActiveLeadsCount()
}

// NextCollaborator picks the participant with the fewest active leads.
// Ties break in participant order; an empty participant list yields none.
func NextCollaborator(participants []string, loads map[string]int) (string, bool) {
	if len(participants) == 0 {
		return "", false
	}

	best := participants[0]
	for _, p := range participants[1:] {
		if loads[p] < loads[best] {
			best = p
		}
	}
	return best, true
}

// DistributeUnassignedLeads assigns every open unassigned conversation to
// the least-loaded participant. The load tally is advanced after each
// successful assignment so one pass stays balanced. Per-item failures are
// counted and skipped; they never abort the rest of the batch.
func (s *Service) DistributeUnassignedLeads() (assigned, failed int, err error) {
	settings, err := s.repo.GetDistributionSettings()
	if err != nil {
		return 0, 0, fmt.Errorf("read distribution settings: %w", err)
	}
	if !settings.Active() {
		return 0, 0, nil
	}

	loads, err := s.repo.ActiveLeadsCount()
	if err != nil {
		return 0, 0, fmt.Errorf("read active leads: %w", err)
	}

	conversations, err := s.repo.GetUnassignedConversations()
	if err != nil {
		return 0, 0, fmt.Errorf("read unassigned conversations: %w", err)
	}

	for _, conv := range conversations {
		agent, ok := NextCollaborator(settings.Participants, loads)
		if !ok {
			break
		}

		if err := s.Assign(conv.ID, agent); err != nil {
			failed++
			continue
		}

		loads[agent]++
		assigned++
	}

	s.log.With(
		slog.Int("assigned", assigned),
		slog.Int("failed", failed),
	).Info("distribution pass finished")

	return assigned, failed, nil
}
