// Package view holds state of the generator and dashboard pages.
// Views are request scoped and know nothing about HTTP: handlers feed them input and render their state.
package view

import (
	"context"

	"github.com/nkiryanov/qrgen/internal/models"
	"github.com/nkiryanov/qrgen/internal/service/qrcode"
)

// Lifecycle of save or fetch: idle -> loading -> success|error -> idle
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// User visible messages
const (
	MsgSaved            = "QR Code saved successfully!"
	MsgSavedDemo        = "QR Code saved successfully! (Demo Mode)"
	MsgSaveFailed       = "Failed to save QR code. Please try again."
	MsgLoadFailed       = "Unable to load QR codes. Running in demo mode."
	MsgDeleteFailed     = "Failed to delete QR code. Please try again."
	MsgDeleteConfirm    = "Are you sure you want to delete this QR code?"
	MsgPasswordTooShort = "Password must be at least 6 characters"
	MsgSignInFailed     = "Failed to sign in"
	MsgUsernameRequired = "Username is required"
)

type saver interface {
	Save(ctx context.Context, user models.User, p models.Params) (qrcode.SaveResult, error)
}

type store interface {
	List(ctx context.Context, user models.User) ([]models.QRCode, error)
	Delete(ctx context.Context, user models.User, id string) error
}
