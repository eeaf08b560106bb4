package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduticket/eduticket-api/internal/modules/ticket/domain"
	"github.com/eduticket/eduticket-api/internal/modules/ticket/infrastructure/persistence/postgres"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(sqlDB, "sqlmock"), mock, func() { _ = sqlDB.Close() }
}

func ticketRows(tickets ...domain.Ticket) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "type", "priority", "status",
		"creator_id", "assignee_id", "course_code", "academic_level",
		"due_at", "created_at", "updated_at",
	})
	for _, tk := range tickets {
		rows.AddRow(tk.ID, tk.Title, tk.Description, tk.Type, tk.Priority, tk.Status,
			tk.CreatorID, tk.AssigneeID, tk.CourseCode, tk.AcademicLevel,
			tk.DueAt, tk.CreatedAt, tk.UpdatedAt)
	}
	return rows
}

func TestPgTicketRepository_CreateAndGet(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgTicketRepository(db)
	ctx := context.Background()

	ticket := domain.Ticket{
		ID: uuid.New(), Title: "T", Description: "D",
		Type: domain.TypeBug, Priority: domain.PriorityHigh, Status: domain.StatusOpen,
		CreatorID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}

	mock.ExpectExec(`INSERT INTO tickets`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(ctx, &ticket))

	mock.ExpectQuery(`SELECT \* FROM tickets WHERE id`).
		WithArgs(ticket.ID).
		WillReturnRows(ticketRows(ticket))
	got, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
	assert.Equal(t, domain.TypeBug, got.Type)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTicketRepository_GetByID_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgTicketRepository(db)

	mock.ExpectQuery(`SELECT \* FROM tickets WHERE id`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(ticketRows())

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTicketRepository_List_WithFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgTicketRepository(db)
	creatorID := uuid.New()
	status := domain.StatusOpen

	mock.ExpectQuery(`SELECT \* FROM tickets`).
		WithArgs(creatorID, status, 10, 0).
		WillReturnRows(ticketRows(domain.Ticket{ID: uuid.New(), CreatorID: creatorID, Status: status}))

	got, err := repo.List(context.Background(), domain.ListFilter{
		CreatorID: &creatorID,
		Status:    &status,
		Limit:     10,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, creatorID, got[0].CreatorID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTicketRepository_UpdateStatus(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgTicketRepository(db)
	ticketID := uuid.New()

	mock.ExpectExec(`UPDATE tickets SET status`).
		WithArgs(domain.StatusResolved, ticketID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), ticketID, domain.StatusResolved))

	mock.ExpectExec(`UPDATE tickets SET status`).
		WithArgs(domain.StatusResolved, ticketID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t,
		repo.UpdateStatus(context.Background(), ticketID, domain.StatusResolved),
		domain.ErrTicketNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTicketRepository_Head(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgTicketRepository(db)
	ticketID := uuid.New()
	creatorID := uuid.New()
	assigneeID := uuid.New()

	mock.ExpectQuery(`SELECT id, title, creator_id, assignee_id FROM tickets`).
		WithArgs(ticketID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "creator_id", "assignee_id"}).
			AddRow(ticketID, "T", creatorID, assigneeID))

	head, err := repo.Head(context.Background(), ticketID)
	require.NoError(t, err)
	assert.Equal(t, ticketID, head.ID)
	assert.Equal(t, creatorID, head.CreatorID)
	require.NotNil(t, head.AssigneeID)
	assert.Equal(t, assigneeID, *head.AssigneeID)
	require.NoError(t, mock.ExpectationsWereMet())
}
