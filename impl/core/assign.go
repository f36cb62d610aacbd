package core

import (
	"LeadDesk/entity"
	"fmt"
)

// Assign hands a conversation to an agent. An empty agentID clears the
// assignment.
func (c *Core) Assign(conversationID, agentID string) error {
	return c.assignmentSvc.Assign(conversationID, agentID)
}

// ActiveLeadsCount reports open assigned conversations per agent.
func (c *Core) ActiveLeadsCount() (map[string]int, error) {
	return c.assignmentSvc.ActiveLeadsCount()
}

// DistributeUnassignedLeads runs one least-loaded distribution pass.
func (c *Core) DistributeUnassignedLeads() (int, int, error) {
	return c.assignmentSvc.DistributeUnassignedLeads()
}

// Agents returns the console's agent roster.
func (c *Core) Agents() ([]entity.Agent, error) {
	return c.repo.GetAgents()
}

// UpsertAgent creates or updates an agent record.
func (c *Core) UpsertAgent(agent *entity.Agent) error {
	if agent.ID == "" {
		return fmt.Errorf("agent id is required")
	}
	switch agent.Role {
	case entity.AgentRole, entity.ManagerRole, entity.AdminRole:
	default:
		return fmt.Errorf("unknown agent role %q", agent.Role)
	}
	return c.repo.UpsertAgent(agent)
}

// DistributionSettings returns the stored distribution configuration.
func (c *Core) DistributionSettings() (*entity.DistributionSettings, error) {
	return c.repo.GetDistributionSettings()
}

// UpdateDistributionSettings replaces the distribution configuration.
func (c *Core) UpdateDistributionSettings(settings *entity.DistributionSettings) error {
	if settings.Mode != entity.DistributionManual && settings.Mode != entity.DistributionAuto {
		return fmt.Errorf("unknown distribution mode %q", settings.Mode)
	}
	return c.repo.UpdateDistributionSettings(settings)
}
