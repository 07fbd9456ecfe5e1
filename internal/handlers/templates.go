package handlers

import (
	"embed"
	"html/template"
	"time"

	"github.com/nkiryanov/qrgen/internal/models"
	"github.com/nkiryanov/qrgen/internal/qrimage"
	"github.com/nkiryanov/qrgen/internal/service/qrcode"
	"github.com/nkiryanov/qrgen/internal/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Dashboard cards show every record with the same size
const thumbSize = 200

// Page templates, every one executed as "base"
const (
	pageGenerator = "generator.html"
	pageDashboard = "dashboard.html"
	pageDelete    = "delete.html"
)

var templateFuncs = template.FuncMap{
	"imageURL":    imageURL,
	"downloadURL": downloadURL,
	"thumbURL": func(p models.Params) template.URL {
		p.Size = thumbSize
		return imageURL(string(qrimage.FormatPNG), p)
	},
	"signInURL": func(p models.Params) template.URL {
		values := view.Values(p)
		values.Set("login", "1")
		return template.URL("/?" + values.Encode())
	},
	"formatTime": func(t time.Time) string {
		return t.Local().Format("Jan 2, 2006 15:04")
	},
}

func parseTemplates() templates {
	pages := []string{pageGenerator, pageDashboard, pageDelete}
	res := make(templates, len(pages))

	for _, page := range pages {
		res[page] = template.Must(
			template.New(page).Funcs(templateFuncs).ParseFS(templatesFS, "templates/base.html", "templates/nav.html", "templates/"+page),
		)
	}

	return res
}

func imageURL(format string, p models.Params) template.URL {
	return template.URL("/qr." + format + "?" + view.Values(p).Encode())
}

func downloadURL(format string, p models.Params) template.URL {
	values := view.Values(p)
	values.Set("download", "1")
	return template.URL("/qr." + format + "?" + values.Encode())
}

// Common data of every page
type page struct {
	Title string
	User  *models.User
	Mode  qrcode.Mode
}

type signInDialog struct {
	Username string
	Error    string
}

type generatorPage struct {
	page
	Params  models.Params
	Notice  string
	Error   string
	CanSave bool
	Saving  bool
	MinSize int
	MaxSize int

	// Closed if nil
	SignIn *signInDialog
}

type dashboardPage struct {
	page
	Records []models.QRCode
	Notice  string
	Error   string
}

type deletePage struct {
	page
	Record   *models.QRCode
	Question string
}
