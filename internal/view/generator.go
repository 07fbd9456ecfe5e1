package view

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/nkiryanov/qrgen/internal/logger"
	"github.com/nkiryanov/qrgen/internal/models"
)

// Form/query field names of the parameter editor
const (
	FieldURL     = "url"
	FieldFgColor = "fg"
	FieldBgColor = "bg"
	FieldSize    = "size"
)

// Generator owns the draft params and the save lifecycle
type Generator struct {
	mu     sync.Mutex
	params models.Params
	state  State
	notice string
	err    string
	logger logger.Logger
}

func NewGenerator(l logger.Logger) *Generator {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Generator{
		params: models.DefaultParams(),
		state:  StateIdle,
		logger: l,
	}
}

// Sidebar setters: applied as is, no validation

func (g *Generator) SetURL(v string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.params.URL = v
}

func (g *Generator) SetFgColor(v string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.params.FgColor = v
}

func (g *Generator) SetBgColor(v string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.params.BgColor = v
}

// SetSize keeps the size within the slider range
func (g *Generator) SetSize(v int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.params.Size = ClampSize(v)
}

// Apply sets every field present in values
func (g *Generator) Apply(values url.Values) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.params = ParamsFromValues(g.params, values)
}

func (g *Generator) Params() models.Params {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.params
}

// CanSave tells whether the save button is enabled
func (g *Generator) CanSave(user *models.User) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return user != nil && g.state != StateLoading
}

// Save the draft for the user
// No user means no-op; save in progress also means no-op
func (g *Generator) Save(ctx context.Context, s saver, user *models.User) {
	g.mu.Lock()
	if user == nil || g.state == StateLoading {
		g.mu.Unlock()
		return
	}
	g.state = StateLoading
	g.notice, g.err = "", ""
	params := g.params
	g.mu.Unlock()

	res, err := s.Save(ctx, *user, params)

	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case err != nil:
		g.logger.Error("Error saving QR code", "user", user.Username, "error", err)
		g.state = StateError
		g.err = MsgSaveFailed
	case res.Persisted:
		g.state = StateSuccess
		g.notice = MsgSaved
	default:
		g.state = StateSuccess
		g.notice = MsgSavedDemo
	}
}

// Done moves finished save back to idle
func (g *Generator) Done() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateLoading {
		g.state = StateIdle
	}
}

func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Notice is the success message of the last save
func (g *Generator) Notice() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.notice
}

// Error is the failure message of the last save
func (g *Generator) Error() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// ParamsFromValues overrides base with fields present in values
// Non-numeric size keeps the base size
func ParamsFromValues(base models.Params, values url.Values) models.Params {
	p := base
	if values.Has(FieldURL) {
		p.URL = values.Get(FieldURL)
	}
	if values.Has(FieldFgColor) {
		p.FgColor = values.Get(FieldFgColor)
	}
	if values.Has(FieldBgColor) {
		p.BgColor = values.Get(FieldBgColor)
	}
	if values.Has(FieldSize) {
		if size, err := strconv.Atoi(values.Get(FieldSize)); err == nil {
			p.Size = ClampSize(size)
		}
	}
	return p
}

func ClampSize(v int) int {
	return min(max(v, models.MinSize), models.MaxSize)
}

// Values encodes params as query/form values understood by Apply
func Values(p models.Params) url.Values {
	return url.Values{
		FieldURL:     {p.URL},
		FieldFgColor: {p.FgColor},
		FieldBgColor: {p.BgColor},
		FieldSize:    {strconv.Itoa(p.Size)},
	}
}
