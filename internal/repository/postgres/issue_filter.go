package postgres

import (
	"fmt"
	"strings"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
)

// issueSortColumns whitelists the ORDER BY targets
var issueSortColumns = map[domain.IssueSortField]string{
	domain.SortBySortOrder: "sort_order",
	domain.SortByCreatedAt: "created_at",
	domain.SortByPriority:  "priority",
	domain.SortByDueDate:   "due_date",
}

// whereBuilder accumulates AND-ed conditions with positional arguments
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends a condition; cond holds a single %d for the placeholder index
func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) sql() string {
	return strings.Join(w.conds, " AND ")
}

// buildIssueWhere turns a predicate into a WHERE body. The page and count
// queries both call this so their filter sets cannot diverge.
func buildIssueWhere(p domain.IssuePredicate) (string, []any) {
	w := &whereBuilder{}
	w.add("team_id = $%d", p.TeamID)
	if p.WorkflowStateID != nil {
		w.add("workflow_state_id = $%d", *p.WorkflowStateID)
	}
	if p.WorkflowStateIDs != nil {
		w.add("workflow_state_id = ANY($%d::uuid[])", uuidStrings(p.WorkflowStateIDs))
	}
	if p.Priority != nil {
		w.add("priority = $%d", *p.Priority)
	}
	if p.AssigneeID != nil {
		w.add("assignee_id = $%d", *p.AssigneeID)
	}
	if p.IssueIDs != nil {
		w.add("id = ANY($%d::uuid[])", uuidStrings(p.IssueIDs))
	}
	return w.sql(), w.args
}

// buildIssueOrder renders ORDER BY for s. Insertion order breaks ties.
func buildIssueOrder(s domain.IssueSort) string {
	column, ok := issueSortColumns[s.Field]
	if !ok {
		column = issueSortColumns[domain.SortBySortOrder]
	}
	direction := "ASC"
	if s.Direction == domain.SortDesc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, created_at ASC, id ASC", column, direction)
}
