package entity

import "time"

// Agent roles.
const (
	AgentRole   = "agent"
	ManagerRole = "manager"
	AdminRole   = "admin"
)

// Agent is a console user who handles conversations.
type Agent struct {
	ID       string    `json:"id" bson:"_id"`
	Name     string    `json:"name" bson:"name" validate:"omitempty"`
	Email    string    `json:"email" bson:"email" validate:"omitempty,email"`
	Role     string    `json:"role" bson:"role" validate:"omitempty"`
	Active   bool      `json:"active" bson:"active"`
	LastSeen time.Time `json:"last_seen" bson:"last_seen"`
}

func (a *Agent) IsAdmin() bool {
	return a.Role == AdminRole
}
