package view

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/nkiryanov/qrgen/internal/apperrors"
	"github.com/nkiryanov/qrgen/internal/logger"
	"github.com/nkiryanov/qrgen/internal/models"
	"github.com/nkiryanov/qrgen/internal/service/qrcode"
)

// Snapshot is a consistent copy of the dashboard state
type Snapshot struct {
	State   State
	Records []models.QRCode

	// Set when fetch failed and the synthetic record is shown instead
	Notice string

	// Last delete failure
	Error string
}

// Dashboard lists records of one user and deletes them
//
// Fetch runs in background bound to a context created by Mount.
// Unmount or another Mount cancels it and the late result is discarded.
type Dashboard struct {
	store  store
	logger logger.Logger
	now    func() time.Time

	mu      sync.Mutex
	user    *models.User
	state   State
	records []models.QRCode
	notice  string
	err     string
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewDashboard(s store, l logger.Logger) *Dashboard {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Dashboard{
		store:  s,
		logger: l,
		now:    time.Now,
		state:  StateIdle,
	}
}

// Mount starts fetching records of the user
func (d *Dashboard) Mount(ctx context.Context, user models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	d.user = &user
	d.state = StateLoading
	d.records = nil
	d.notice, d.err = "", ""
	d.cancel = cancel
	d.done = done

	go d.fetch(ctx, d.store, user, done)
}

func (d *Dashboard) fetch(ctx context.Context, s store, user models.User, done chan struct{}) {
	defer close(done)

	records, err := s.List(ctx, user)

	d.mu.Lock()
	defer d.mu.Unlock()

	// Unmounted or remounted meanwhile
	if ctx.Err() != nil || d.done != done {
		return
	}

	if err != nil {
		d.logger.Error("Error fetching QR codes", "user", user.Username, "error", err)
		records = []models.QRCode{qrcode.Synthetic(d.now())}
		d.notice = MsgLoadFailed
	}

	d.records = records
	d.state = StateSuccess
}

// Unmount cancels in-flight fetch. Safe to call many times
func (d *Dashboard) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stop()
	if d.state == StateLoading {
		d.state = StateIdle
	}
}

// Should be called with mu held
func (d *Dashboard) stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Wait blocks until the current fetch finishes or ctx is done
func (d *Dashboard) Wait(ctx context.Context) error {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Delete the record after confirmation
// Record already missing in the store leaves the list too.
// On other failures the record stays in the list and the error message is set
func (d *Dashboard) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return apperrors.ErrNotConfirmed
	}

	if err := d.Wait(ctx); err != nil {
		return err
	}

	d.mu.Lock()
	user := d.user
	d.err = ""
	d.mu.Unlock()

	if user == nil {
		return apperrors.ErrNotSignedIn
	}

	err := d.store.Delete(ctx, *user, id)

	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case errors.Is(err, apperrors.ErrQRCodeNotFound):
		// Shown record was never stored, e.g. the synthetic one of degraded list
		d.logger.Debug("QR code to delete not found", "user", user.Username, "id", id)
	case err != nil:
		d.logger.Error("Error deleting QR code", "user", user.Username, "id", id, "error", err)
		d.err = MsgDeleteFailed
		return err
	}

	d.records = slices.DeleteFunc(d.records, func(r models.QRCode) bool {
		return r.ID == id
	})
	return nil
}

// Find returns displayed record by id
func (d *Dashboard) Find(id string) (models.QRCode, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.IndexFunc(d.records, func(r models.QRCode) bool { return r.ID == id })
	if i < 0 {
		return models.QRCode{}, false
	}
	return d.records[i], true
}

func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Snapshot{
		State:   d.state,
		Records: slices.Clone(d.records),
		Notice:  d.notice,
		Error:   d.err,
	}
}
