package domain

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Issue field limits
const (
	MinPriority       = 0
	MaxPriority       = 4
	MaxIssueTitleLen  = 500
	DefaultPageSize   = 50
	MaxPageSize       = 100
	DefaultIssuesPage = 1
)

var issueIdentifierPattern = regexp.MustCompile(`^[A-Z]{2,5}-[0-9]+$`)

// ValidIssueIdentifier reports whether s looks like TEAM-123
func ValidIssueIdentifier(s string) bool {
	return issueIdentifierPattern.MatchString(s)
}

// FormatIssueIdentifier joins a team identifier and an issue number
func FormatIssueIdentifier(teamIdentifier string, number int) string {
	return fmt.Sprintf("%s-%d", teamIdentifier, number)
}

// Issue is a unit of work owned by a team. Number and Identifier never change once assigned.
type Issue struct {
	ID              uuid.UUID      `json:"id"`
	TeamID          uuid.UUID      `json:"teamId"`
	Number          int            `json:"number"`
	Identifier      string         `json:"identifier"`
	Title           string         `json:"title"`
	Description     *string        `json:"description"`
	WorkflowStateID uuid.UUID      `json:"workflowStateId"`
	Priority        int            `json:"priority"`
	AssigneeID      *uuid.UUID     `json:"assigneeId"`
	CreatorID       uuid.UUID      `json:"creatorId"`
	DueDate         *time.Time     `json:"dueDate"`
	Estimate        *int           `json:"estimate"`
	SortOrder       float64        `json:"sortOrder"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	Labels          []LabelSummary `json:"labels,omitempty"`
}

// IssueSortField is a column issues can be ordered by
type IssueSortField string

const (
	SortBySortOrder IssueSortField = "sortOrder"
	SortByCreatedAt IssueSortField = "createdAt"
	SortByPriority  IssueSortField = "priority"
	SortByDueDate   IssueSortField = "dueDate"
)

// Valid reports whether f is a sortable field
func (f IssueSortField) Valid() bool {
	switch f {
	case SortBySortOrder, SortByCreatedAt, SortByPriority, SortByDueDate:
		return true
	}
	return false
}

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Valid reports whether d is asc or desc
func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// IssueSort is a single ordering column plus direction
type IssueSort struct {
	Field     IssueSortField
	Direction SortDirection
}

// IssueFilter holds the optional, conjunctive filters a caller can request
type IssueFilter struct {
	WorkflowStateID *uuid.UUID
	StateType       *StateType
	Priority        *int
	AssigneeID      *uuid.UUID
	LabelID         *uuid.UUID
}

// IssuePredicate is the resolved WHERE condition shared by the page and count queries.
// A nil slice means "no constraint"; sub-lookups that resolve to nothing never reach storage.
type IssuePredicate struct {
	TeamID           uuid.UUID
	WorkflowStateID  *uuid.UUID
	WorkflowStateIDs []uuid.UUID
	Priority         *int
	AssigneeID       *uuid.UUID
	IssueIDs         []uuid.UUID
}

// IssuePage is one page of a filtered listing
type IssuePage struct {
	Items    []Issue
	Total    int
	Page     int
	PageSize int
	HasMore  bool
}

// IssueRepository defines the interface for issue persistence operations
type IssueRepository interface {
	Insert(ctx context.Context, issue *Issue) (*Issue, error)
	// MinSortOrder returns the smallest sort order in the team, or 0 when it has no issues.
	MinSortOrder(ctx context.Context, teamID uuid.UUID) (float64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Issue, error)
	GetInTeam(ctx context.Context, teamID, issueID uuid.UUID) (*Issue, error)
	GetByIdentifier(ctx context.Context, teamID uuid.UUID, identifier string) (*Issue, error)
	Update(ctx context.Context, issue *Issue) (*Issue, error)
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, pred IssuePredicate, sort IssueSort, limit, offset int) ([]Issue, error)
	Count(ctx context.Context, pred IssuePredicate) (int, error)
	IssueIDsWithLabel(ctx context.Context, labelID uuid.UUID) ([]uuid.UUID, error)

	// AttachLabels links labels in bulk; pairs that already exist are left as they are.
	AttachLabels(ctx context.Context, issueID uuid.UUID, labelIDs []uuid.UUID) error
	AttachLabel(ctx context.Context, issueID, labelID uuid.UUID) error
	DetachLabel(ctx context.Context, issueID, labelID uuid.UUID) (bool, error)
	HasLabel(ctx context.Context, issueID, labelID uuid.UUID) (bool, error)
	ListLabels(ctx context.Context, issueID uuid.UUID) ([]LabelSummary, error)
}
