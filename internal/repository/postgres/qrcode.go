package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/qrgen/internal/apperrors"
	"github.com/nkiryanov/qrgen/internal/models"
)

type QRCodeRepo struct {
	DB DBTX
}

const createQRCode = `-- name: CreateQRCode
INSERT INTO qrcodes (id, user_id, url, fg_color, bg_color, size)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, url, fg_color, bg_color, size, created_at
`

func (r *QRCodeRepo) Create(ctx context.Context, qr models.QRCode) (models.QRCode, error) {
	if qr.ID == "" {
		qr.ID = uuid.NewString()
	}

	rows, _ := r.DB.Query(ctx, createQRCode, qr.ID, qr.UserID, qr.URL, qr.FgColor, qr.BgColor, qr.Size)
	created, err := pgx.CollectOneRow(rows, rowToQRCode)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return created, apperrors.ErrQRCodeAlreadyExists
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const listQRCodesByUser = `-- name: ListQRCodesByUser
SELECT id, user_id, url, fg_color, bg_color, size, created_at FROM qrcodes
WHERE user_id = $1
ORDER BY created_at DESC, id
`

func (r *QRCodeRepo) ListByUser(ctx context.Context, userID string) ([]models.QRCode, error) {
	rows, _ := r.DB.Query(ctx, listQRCodesByUser, userID)
	codes, err := pgx.CollectRows(rows, rowToQRCode)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return codes, nil
}

const deleteQRCode = `-- name: DeleteQRCode
DELETE FROM qrcodes
WHERE id = $1 AND user_id = $2
`

func (r *QRCodeRepo) Delete(ctx context.Context, userID string, id string) error {
	tag, err := r.DB.Exec(ctx, deleteQRCode, id, userID)

	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrQRCodeNotFound
	default:
		return nil
	}
}

func rowToQRCode(row pgx.CollectableRow) (models.QRCode, error) {
	var q models.QRCode
	err := row.Scan(&q.ID, &q.UserID, &q.URL, &q.FgColor, &q.BgColor, &q.Size, &q.CreatedAt)
	return q, err
}
