package handlers

import (
	"context"
	"net/http"

	"github.com/nkiryanov/qrgen/internal/handlers/middleware"
	"github.com/nkiryanov/qrgen/internal/logger"
	"github.com/nkiryanov/qrgen/internal/models"
	"github.com/nkiryanov/qrgen/internal/qrimage"
	"github.com/nkiryanov/qrgen/internal/service/qrcode"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	storage middleware.StorageFunc,
	qrService qrService,
	logger logger.Logger,
) http.Handler {
	tmpl := parseTemplates()
	private := middleware.RedirectAnonymous("/")
	withAuth := middleware.AuthMiddleware

	api := http.NewServeMux()

	api.Handle("POST /auth/signin", handleAPISignIn(logger))
	api.Handle("POST /auth/signout", handleAPISignOut())
	api.Handle("GET /auth/me", withAuth(handleAPIMe()))

	api.Handle("GET /qrcodes", withAuth(handleAPIListQRCodes(qrService, logger)))
	api.Handle("POST /qrcodes", withAuth(handleAPICreateQRCode(qrService, logger)))
	api.Handle("DELETE /qrcodes/{id}", withAuth(handleAPIDeleteQRCode(qrService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	root.Handle("GET /{$}", handleGenerator(qrService, tmpl, logger))
	root.Handle("POST /save", handleSave(qrService, tmpl, logger))
	root.Handle("POST /signin", handleSignIn(qrService, tmpl, logger))
	root.Handle("POST /signout", handleSignOut())

	root.Handle("GET /qr.png", handleImage(qrimage.FormatPNG, logger))
	root.Handle("GET /qr.svg", handleImage(qrimage.FormatSVG, logger))

	root.Handle("GET /dashboard", private(handleDashboard(qrService, tmpl, logger)))
	root.Handle("GET /dashboard/delete", private(handleDeleteConfirm(qrService, tmpl, logger)))
	root.Handle("POST /dashboard/delete", private(handleDelete(qrService, tmpl, logger)))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.SessionMiddleware(storage, logger),
	)

	return handler
}

type qrService interface {
	// Backend mode the service runs in
	Mode() qrcode.Mode

	// Save params as a new record of the user
	Save(ctx context.Context, user models.User, p models.Params) (qrcode.SaveResult, error)

	// List user records, the newest first
	List(ctx context.Context, user models.User) ([]models.QRCode, error)

	// Delete user record
	// Has to return apperrors.ErrQRCodeNotFound if user has no record with the id
	Delete(ctx context.Context, user models.User, id string) error
}
