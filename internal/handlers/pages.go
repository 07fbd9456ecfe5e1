package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/nkiryanov/qrgen/internal/apperrors"
	"github.com/nkiryanov/qrgen/internal/handlers/render"
	"github.com/nkiryanov/qrgen/internal/handlers/userctx"
	"github.com/nkiryanov/qrgen/internal/logger"
	"github.com/nkiryanov/qrgen/internal/models"
	"github.com/nkiryanov/qrgen/internal/view"
)

type templates map[string]*template.Template

func newPage(r *http.Request, qrService qrService, title string) page {
	p := page{Title: title, Mode: qrService.Mode()}
	if user, ok := userctx.FromContext(r.Context()); ok {
		p.User = &user
	}
	return p
}

func newGeneratorPage(r *http.Request, qrService qrService, g *view.Generator) generatorPage {
	p := newPage(r, qrService, "Generator")

	return generatorPage{
		page:    p,
		Params:  g.Params(),
		Notice:  g.Notice(),
		Error:   g.Error(),
		CanSave: g.CanSave(p.User),
		Saving:  g.State() == view.StateLoading,
		MinSize: models.MinSize,
		MaxSize: models.MaxSize,
	}
}

func handleGenerator(qrService qrService, tmpl templates, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		g := view.NewGenerator(logger)
		g.Apply(query)

		data := newGeneratorPage(r, qrService, g)
		if query.Get("login") == "1" && data.User == nil {
			data.SignIn = &signInDialog{}
		}

		render.HTML(w, tmpl[pageGenerator], "base", data, http.StatusOK)
	})
}

func handleSave(qrService qrService, tmpl templates, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}

		g := view.NewGenerator(logger)
		g.Apply(r.PostForm)

		// Nothing to save without user: offer to sign in instead
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			data := newGeneratorPage(r, qrService, g)
			data.SignIn = &signInDialog{}
			render.HTML(w, tmpl[pageGenerator], "base", data, http.StatusOK)
			return
		}

		g.Save(r.Context(), qrService, &user)

		status := http.StatusOK
		if g.State() == view.StateError {
			status = http.StatusInternalServerError
		}

		data := newGeneratorPage(r, qrService, g)
		g.Done()

		render.HTML(w, tmpl[pageGenerator], "base", data, status)
	})
}

func handleSignIn(qrService qrService, tmpl templates, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}

		session, ok := userctx.Session(r.Context())
		if !ok {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		g := view.NewGenerator(logger)
		g.Apply(r.PostForm)

		username := strings.TrimSpace(r.PostForm.Get("username"))

		err := session.SignIn(r.Context(), username, r.PostForm.Get("password"))
		if err == nil {
			http.Redirect(w, r, "/?"+view.Values(g.Params()).Encode(), http.StatusSeeOther)
			return
		}

		dialog := &signInDialog{Username: username}
		switch {
		case errors.Is(err, apperrors.ErrUsernameRequired):
			dialog.Error = view.MsgUsernameRequired
		case errors.Is(err, apperrors.ErrPasswordTooShort):
			dialog.Error = view.MsgPasswordTooShort
		default:
			logger.Error("Error signing in", "username", username, "error", err)
			dialog.Error = view.MsgSignInFailed
		}

		data := newGeneratorPage(r, qrService, g)
		data.SignIn = dialog
		render.HTML(w, tmpl[pageGenerator], "base", data, http.StatusUnprocessableEntity)
	})
}

func handleSignOut() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session, ok := userctx.Session(r.Context()); ok {
			session.SignOut()
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

// Mount dashboard for the request user and wait for records
// Caller has to unmount it
func loadDashboard(r *http.Request, qrService qrService, logger logger.Logger) (*view.Dashboard, error) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		return nil, apperrors.ErrNotSignedIn
	}

	d := view.NewDashboard(qrService, logger)
	d.Mount(r.Context(), user)

	if err := d.Wait(r.Context()); err != nil {
		d.Unmount()
		return nil, err
	}

	return d, nil
}

func renderDashboard(w http.ResponseWriter, r *http.Request, qrService qrService, tmpl templates, d *view.Dashboard, status int) {
	snap := d.Snapshot()
	data := dashboardPage{
		page:    newPage(r, qrService, "Dashboard"),
		Records: snap.Records,
		Notice:  snap.Notice,
		Error:   snap.Error,
	}

	render.HTML(w, tmpl[pageDashboard], "base", data, status)
}

func handleDashboard(qrService qrService, tmpl templates, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := loadDashboard(r, qrService, logger)
		if err != nil {
			// Client went away or no user, nobody to answer
			logger.Debug("dashboard not loaded", "error", err)
			return
		}
		defer d.Unmount()

		renderDashboard(w, r, qrService, tmpl, d, http.StatusOK)
	})
}

func handleDeleteConfirm(qrService qrService, tmpl templates, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := loadDashboard(r, qrService, logger)
		if err != nil {
			logger.Debug("dashboard not loaded", "error", err)
			return
		}
		defer d.Unmount()

		record, ok := d.Find(r.URL.Query().Get("id"))
		if !ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}

		data := deletePage{
			page:     newPage(r, qrService, "Delete QR code"),
			Record:   &record,
			Question: view.MsgDeleteConfirm,
		}
		render.HTML(w, tmpl[pageDelete], "base", data, http.StatusOK)
	})
}

func handleDelete(qrService qrService, tmpl templates, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}

		d, err := loadDashboard(r, qrService, logger)
		if err != nil {
			logger.Debug("dashboard not loaded", "error", err)
			return
		}
		defer d.Unmount()

		id := r.PostForm.Get("id")
		confirmed := r.PostForm.Get("confirm") == "yes"

		err = d.Delete(r.Context(), id, confirmed)
		switch {
		case err == nil:
			renderDashboard(w, r, qrService, tmpl, d, http.StatusOK)
		case errors.Is(err, apperrors.ErrNotConfirmed):
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		default:
			renderDashboard(w, r, qrService, tmpl, d, http.StatusInternalServerError)
		}
	})
}
