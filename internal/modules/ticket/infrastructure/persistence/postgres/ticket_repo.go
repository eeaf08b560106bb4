package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	notifdomain "github.com/eduticket/eduticket-api/internal/modules/notification/domain"
	"github.com/eduticket/eduticket-api/internal/modules/ticket/domain"
)

type PgTicketRepository struct {
	db *sqlx.DB
}

func NewPgTicketRepository(db *sqlx.DB) *PgTicketRepository {
	return &PgTicketRepository{db: db}
}

func (r *PgTicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	query := `
		INSERT INTO tickets
			(id, title, description, type, priority, status, creator_id, assignee_id,
			 course_code, academic_level, due_at, created_at, updated_at)
		VALUES
			(:id, :title, :description, :type, :priority, :status, :creator_id, :assignee_id,
			 :course_code, :academic_level, :due_at, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, t)
	return err
}

func (r *PgTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	query := `SELECT * FROM tickets WHERE id = $1`
	err := r.db.GetContext(ctx, ticket, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *PgTicketRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Ticket, error) {
	conditions := []string{"TRUE"}
	args := []any{}

	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		conditions = append(conditions, fmt.Sprintf("creator_id = $%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	limitPos := len(args)
	args = append(args, filter.Offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT * FROM tickets
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), limitPos, offsetPos)

	var tickets []domain.Ticket
	if err := r.db.SelectContext(ctx, &tickets, query, args...); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *PgTicketRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	query := `UPDATE tickets SET status = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PgTicketRepository) UpdateAssignee(ctx context.Context, id uuid.UUID, assigneeID *uuid.UUID) error {
	query := `UPDATE tickets SET assignee_id = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, assigneeID, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Head implements the notification module's TicketDirectory.
func (r *PgTicketRepository) Head(ctx context.Context, ticketID uuid.UUID) (notifdomain.TicketHead, error) {
	var head struct {
		ID         uuid.UUID  `db:"id"`
		Title      string     `db:"title"`
		CreatorID  uuid.UUID  `db:"creator_id"`
		AssigneeID *uuid.UUID `db:"assignee_id"`
	}
	query := `SELECT id, title, creator_id, assignee_id FROM tickets WHERE id = $1`
	err := r.db.GetContext(ctx, &head, query, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return notifdomain.TicketHead{}, domain.ErrTicketNotFound
	}
	if err != nil {
		return notifdomain.TicketHead{}, err
	}
	return notifdomain.TicketHead{
		ID:         head.ID,
		Title:      head.Title,
		CreatorID:  head.CreatorID,
		AssigneeID: head.AssigneeID,
	}, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}
