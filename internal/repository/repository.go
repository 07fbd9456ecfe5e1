package repository

import (
	"context"

	"github.com/nkiryanov/qrgen/internal/models"
)

type Storage interface {
	QRCode() QRCodeRepo
}

// QRCode repository interface
type QRCodeRepo interface {
	// Create the record
	// ID is generated if empty, CreatedAt is always assigned by the storage
	// If record with the ID exists already has to return apperrors.ErrQRCodeAlreadyExists
	Create(ctx context.Context, qr models.QRCode) (models.QRCode, error)

	// List user records, the newest first
	ListByUser(ctx context.Context, userID string) ([]models.QRCode, error)

	// Delete user record
	// If record not found (or owned by another user) must return apperrors.ErrQRCodeNotFound
	Delete(ctx context.Context, userID string, id string) error
}
