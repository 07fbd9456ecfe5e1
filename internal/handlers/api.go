package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/qrgen/internal/apperrors"
	"github.com/nkiryanov/qrgen/internal/handlers/render"
	"github.com/nkiryanov/qrgen/internal/handlers/userctx"
	"github.com/nkiryanov/qrgen/internal/logger"
	"github.com/nkiryanov/qrgen/internal/models"
	"github.com/nkiryanov/qrgen/internal/service/qrcode"
	"github.com/nkiryanov/qrgen/internal/view"
)

type userResponse struct {
	Username string `json:"username"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func handleAPISignIn(logger logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required,max=100"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		session, ok := userctx.Session(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		err = session.SignIn(r.Context(), data.Username, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUsernameRequired):
				render.JSONWithStatus(w, render.ErrorResponse{
					Error:   render.ValidationErrorType,
					Message: "Request validation failed",
					Fields:  map[string]string{"username": "This field is required"},
				}, http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrPasswordTooShort):
				render.ServiceError(w, view.MsgPasswordTooShort, http.StatusUnprocessableEntity)
			default:
				logger.Error("Error signing in", "username", data.Username, "error", err)
				render.ServiceError(w, view.MsgSignInFailed, http.StatusInternalServerError)
			}
			return
		}

		user, _ := session.User()
		render.JSON(w, userResponse{Username: user.Username})
	})
}

func handleAPISignOut() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session, ok := userctx.Session(r.Context()); ok {
			session.SignOut()
		}
		render.JSON(w, messageResponse{Message: "Signed out"})
	})
}

func handleAPIMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		render.JSON(w, userResponse{Username: user.Username})
	})
}

func handleAPIListQRCodes(qrService qrService, logger logger.Logger) http.Handler {
	type response struct {
		Mode     qrcode.Mode     `json:"mode"`
		Degraded bool            `json:"degraded"`
		Items    []models.QRCode `json:"items"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := loadDashboard(r, qrService, logger)
		if err != nil {
			logger.Debug("qr codes not loaded", "error", err)
			return
		}
		defer d.Unmount()

		snap := d.Snapshot()
		items := snap.Records
		if items == nil {
			items = []models.QRCode{}
		}

		render.JSON(w, response{
			Mode:     qrService.Mode(),
			Degraded: snap.Notice != "",
			Items:    items,
		})
	})
}

func handleAPICreateQRCode(qrService qrService, logger logger.Logger) http.Handler {
	type request struct {
		// Missing text means the default one, empty text is kept as is
		URL     *string `json:"url"`
		FgColor string  `json:"fgColor" validate:"omitempty,hexcolor"`
		BgColor string  `json:"bgColor" validate:"omitempty,hexcolor"`
		Size    int     `json:"size" validate:"omitempty,qrsize"`
	}
	type response struct {
		Mode      qrcode.Mode   `json:"mode"`
		Persisted bool          `json:"persisted"`
		Item      models.QRCode `json:"item"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, _ := userctx.FromContext(r.Context())

		params := models.DefaultParams()
		if data.URL != nil {
			params.URL = *data.URL
		}
		if data.FgColor != "" {
			params.FgColor = data.FgColor
		}
		if data.BgColor != "" {
			params.BgColor = data.BgColor
		}
		if data.Size != 0 {
			params.Size = data.Size
		}

		res, err := qrService.Save(r.Context(), user, params)
		if err != nil {
			logger.Error("Error saving QR code", "user", user.Username, "error", err)
			render.ServiceError(w, view.MsgSaveFailed, http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, response{
			Mode:      qrService.Mode(),
			Persisted: res.Persisted,
			Item:      res.Record,
		}, http.StatusCreated)
	})
}

func handleAPIDeleteQRCode(qrService qrService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		id := r.PathValue("id")

		err := qrService.Delete(r.Context(), user, id)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrQRCodeNotFound):
			render.ServiceError(w, "QR code not found", http.StatusNotFound)
		default:
			logger.Error("Error deleting QR code", "user", user.Username, "id", id, "error", err)
			render.ServiceError(w, view.MsgDeleteFailed, http.StatusInternalServerError)
		}
	})
}
