package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eduticket/eduticket-api/internal/modules/ticket/domain"
)

type PgCommentRepository struct {
	db *sqlx.DB
}

func NewPgCommentRepository(db *sqlx.DB) *PgCommentRepository {
	return &PgCommentRepository{db: db}
}

func (r *PgCommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (id, ticket_id, author_id, body, created_at)
		VALUES (:id, :ticket_id, :author_id, :body, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, c)
	return err
}

func (r *PgCommentRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]domain.Comment, error) {
	query := `
		SELECT * FROM comments
		WHERE ticket_id = $1
		ORDER BY created_at ASC
	`
	var comments []domain.Comment
	if err := r.db.SelectContext(ctx, &comments, query, ticketID); err != nil {
		return nil, err
	}
	return comments, nil
}
