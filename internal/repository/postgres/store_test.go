package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewStore(mock), mock
}

var issueColumnNames = []string{
	"id", "team_id", "number", "identifier", "title", "description", "workflow_state_id", "priority",
	"assignee_id", "creator_id", "due_date", "estimate", "sort_order", "created_at", "updated_at",
}

func issueRow(teamID, stateID uuid.UUID, number int, identifier string) []any {
	now := time.Now()
	return []any{
		uuid.New(), teamID, number, identifier, "Title", nil, stateID, 2,
		nil, uuid.New(), nil, nil, float64(-number), now, now,
	}
}

func TestTeamRepository_IncrementIssueCounter(t *testing.T) {
	store, mock := setupStore(t)
	teamID := uuid.New()

	mock.ExpectQuery(`UPDATE team SET issue_counter = issue_counter \+ 1`).
		WithArgs(teamID).
		WillReturnRows(pgxmock.NewRows([]string{"issue_counter", "identifier"}).AddRow(7, "ENG"))

	number, identifier, err := store.Repositories().Teams.IncrementIssueCounter(context.Background(), teamID)

	require.NoError(t, err)
	assert.Equal(t, 7, number)
	assert.Equal(t, "ENG", identifier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepository_IncrementIssueCounter_UnknownTeam(t *testing.T) {
	store, mock := setupStore(t)
	teamID := uuid.New()

	mock.ExpectQuery(`UPDATE team SET issue_counter`).
		WithArgs(teamID).
		WillReturnError(pgx.ErrNoRows)

	_, _, err := store.Repositories().Teams.IncrementIssueCounter(context.Background(), teamID)

	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_ListAndCountShareFilters(t *testing.T) {
	store, mock := setupStore(t)
	ctx := context.Background()
	teamID := uuid.New()
	stateID := uuid.New()
	priority := 2
	pred := domain.IssuePredicate{TeamID: teamID, WorkflowStateID: &stateID, Priority: &priority}
	where := regexp.QuoteMeta(`WHERE team_id = $1 AND workflow_state_id = $2 AND priority = $3`)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM issue ` + where).
		WithArgs(teamID, stateID, priority).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	mock.ExpectQuery(`FROM issue ` + where + regexp.QuoteMeta(` ORDER BY priority DESC, created_at ASC, id ASC LIMIT $4 OFFSET $5`)).
		WithArgs(teamID, stateID, priority, 2, 0).
		WillReturnRows(pgxmock.NewRows(issueColumnNames).
			AddRow(issueRow(teamID, stateID, 1, "ENG-1")...).
			AddRow(issueRow(teamID, stateID, 2, "ENG-2")...))

	total, err := store.Repositories().Issues.Count(ctx, pred)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	issues, err := store.Repositories().Issues.List(ctx, pred, domain.IssueSort{Field: domain.SortByPriority, Direction: domain.SortDesc}, 2, 0)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "ENG-1", issues[0].Identifier)
	assert.Nil(t, issues[0].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_DeleteMissing(t *testing.T) {
	store, mock := setupStore(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM issue WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := store.Repositories().Issues.Delete(context.Background(), id)

	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_AttachLabelTwice(t *testing.T) {
	store, mock := setupStore(t)
	issueID, labelID := uuid.New(), uuid.New()

	mock.ExpectExec(`INSERT INTO issue_label`).
		WithArgs(issueID, labelID).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := store.Repositories().Issues.AttachLabel(context.Background(), issueID, labelID)

	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_Commits(t *testing.T) {
	store, mock := setupStore(t)
	teamID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE team SET issue_counter`).
		WithArgs(teamID).
		WillReturnRows(pgxmock.NewRows([]string{"issue_counter", "identifier"}).AddRow(1, "ENG"))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx *domain.Repositories) error {
		_, _, err := tx.Teams.IncrementIssueCounter(context.Background(), teamID)
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_RollsBackOnError(t *testing.T) {
	store, mock := setupStore(t)
	teamID := uuid.New()
	failure := errors.New("insert failed")

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE team SET issue_counter`).
		WithArgs(teamID).
		WillReturnRows(pgxmock.NewRows([]string{"issue_counter", "identifier"}).AddRow(1, "ENG"))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(tx *domain.Repositories) error {
		if _, _, err := tx.Teams.IncrementIssueCounter(context.Background(), teamID); err != nil {
			return err
		}
		return failure
	})

	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Migrate(t *testing.T) {
	store, mock := setupStore(t)

	for range migrations {
		mock.ExpectExec(`CREATE`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
