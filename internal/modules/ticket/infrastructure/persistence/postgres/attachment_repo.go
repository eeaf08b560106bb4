package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eduticket/eduticket-api/internal/modules/ticket/domain"
)

type PgAttachmentRepository struct {
	db *sqlx.DB
}

func NewPgAttachmentRepository(db *sqlx.DB) *PgAttachmentRepository {
	return &PgAttachmentRepository{db: db}
}

func (r *PgAttachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	query := `
		INSERT INTO attachments (id, ticket_id, uploader_id, file_name, storage_key, size_bytes, created_at)
		VALUES (:id, :ticket_id, :uploader_id, :file_name, :storage_key, :size_bytes, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, a)
	return err
}

func (r *PgAttachmentRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]domain.Attachment, error) {
	query := `
		SELECT * FROM attachments
		WHERE ticket_id = $1
		ORDER BY created_at ASC
	`
	var attachments []domain.Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, ticketID); err != nil {
		return nil, err
	}
	return attachments, nil
}
