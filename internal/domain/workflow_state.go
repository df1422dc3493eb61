package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StateType is the closed category a workflow state belongs to
type StateType string

const (
	StateTypeBacklog   StateType = "backlog"
	StateTypeUnstarted StateType = "unstarted"
	StateTypeStarted   StateType = "started"
	StateTypeCompleted StateType = "completed"
	StateTypeCancelled StateType = "cancelled"
)

// StateTypes lists every state type in category order
var StateTypes = []StateType{
	StateTypeBacklog,
	StateTypeUnstarted,
	StateTypeStarted,
	StateTypeCompleted,
	StateTypeCancelled,
}

// Valid reports whether t is a known state type
func (t StateType) Valid() bool {
	for _, known := range StateTypes {
		if t == known {
			return true
		}
	}
	return false
}

// WorkflowState is a named, typed status an issue can occupy within a team
type WorkflowState struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"teamId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Type      StateType `json:"type"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkflowStateTemplate describes a state to be seeded
type WorkflowStateTemplate struct {
	Name     string
	Color    string
	Type     StateType
	Position int
}

// DefaultWorkflowStates are seeded into every new team
var DefaultWorkflowStates = []WorkflowStateTemplate{
	{Name: "Backlog", Color: "#bec2c8", Type: StateTypeBacklog, Position: 0},
	{Name: "Todo", Color: "#e2e2e2", Type: StateTypeUnstarted, Position: 1},
	{Name: "In Progress", Color: "#f2c94c", Type: StateTypeStarted, Position: 2},
	{Name: "In Review", Color: "#5e6ad2", Type: StateTypeStarted, Position: 3},
	{Name: "Done", Color: "#4cb782", Type: StateTypeCompleted, Position: 4},
	{Name: "Canceled", Color: "#95a2b3", Type: StateTypeCancelled, Position: 5},
}

// WorkflowStateReader is the read side used to resolve and validate states
type WorkflowStateReader interface {
	// GetForTeam returns the state only if it is owned by teamID.
	GetForTeam(ctx context.Context, teamID, stateID uuid.UUID) (*WorkflowState, error)
	// FirstOfType returns the lowest-positioned state of type t for the team.
	FirstOfType(ctx context.Context, teamID uuid.UUID, t StateType) (*WorkflowState, error)
}

// WorkflowStateRepository defines the interface for workflow state persistence operations
type WorkflowStateRepository interface {
	WorkflowStateReader
	CreateMany(ctx context.Context, states []WorkflowState) error
	Create(ctx context.Context, state *WorkflowState) (*WorkflowState, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]WorkflowState, error)
	IDsByType(ctx context.Context, teamID uuid.UUID, t StateType) ([]uuid.UUID, error)
	Update(ctx context.Context, state *WorkflowState) (*WorkflowState, error)
	Delete(ctx context.Context, teamID, stateID uuid.UUID) error
}
