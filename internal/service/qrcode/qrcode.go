package qrcode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/qrgen/internal/logger"
	"github.com/nkiryanov/qrgen/internal/models"
	"github.com/nkiryanov/qrgen/internal/repository"
)

// Backend mode
// Decided once at startup; every component asks the service instead of checking the configuration itself
type Mode string

const (
	// Records are written to and read from the store
	ModeLive Mode = "live"

	// No store configured: writes are simulated and reads return the synthetic record
	ModeDemo Mode = "demo"
)

const defaultDemoDelay = 500 * time.Millisecond

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLive, ModeDemo:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown backend mode '%s', expected '%s' or '%s'", s, ModeLive, ModeDemo)
	}
}

type Config struct {
	// Required
	Mode Mode

	// Simulated latency of demo mode operations
	// If not set than default is used, negative value disables it
	DemoDelay time.Duration
}

type Service struct {
	mode      Mode
	demoDelay time.Duration
	repo      repository.QRCodeRepo
	logger    logger.Logger
	now       func() time.Time
}

func NewService(cfg Config, repo repository.QRCodeRepo, l logger.Logger) (*Service, error) {
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return nil, err
	}
	if cfg.Mode == ModeLive && repo == nil {
		return nil, errors.New("live mode requires qr code repository")
	}

	switch {
	case cfg.DemoDelay == 0:
		cfg.DemoDelay = defaultDemoDelay
	case cfg.DemoDelay < 0:
		cfg.DemoDelay = 0
	}

	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Service{
		mode:      cfg.Mode,
		demoDelay: cfg.DemoDelay,
		repo:      repo,
		logger:    l.With("component", "qrcode", "mode", string(cfg.Mode)),
		now:       time.Now,
	}, nil
}

func (s *Service) Mode() Mode {
	return s.mode
}

func (s *Service) Demo() bool {
	return s.mode == ModeDemo
}

// Synthetic is the record shown when there is no store to read from
func Synthetic(now time.Time) models.QRCode {
	return models.QRCode{
		ID:        "1",
		URL:       models.DefaultURL,
		FgColor:   models.DefaultFgColor,
		BgColor:   models.DefaultBgColor,
		Size:      models.DefaultSize,
		CreatedAt: now,
	}
}

type SaveResult struct {
	Record models.QRCode

	// False in demo mode: nothing was written anywhere durable
	Persisted bool
}

// Save params as a new record owned by the user
func (s *Service) Save(ctx context.Context, user models.User, p models.Params) (SaveResult, error) {
	qr := models.QRCode{
		UserID:  user.Username,
		URL:     p.URL,
		FgColor: p.FgColor,
		BgColor: p.BgColor,
		Size:    p.Size,
	}

	if s.Demo() {
		if err := s.simulateLatency(ctx); err != nil {
			return SaveResult{}, err
		}
		qr.CreatedAt = s.now()
		return SaveResult{Record: qr, Persisted: false}, nil
	}

	created, err := s.repo.Create(ctx, qr)
	if err != nil {
		return SaveResult{}, fmt.Errorf("error while saving qr code. Err: %w", err)
	}

	s.logger.Debug("qr code saved", "id", created.ID, "user", user.Username)
	return SaveResult{Record: created, Persisted: true}, nil
}

// List user records, the newest first
func (s *Service) List(ctx context.Context, user models.User) ([]models.QRCode, error) {
	if s.Demo() {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		return []models.QRCode{Synthetic(s.now())}, nil
	}

	codes, err := s.repo.ListByUser(ctx, user.Username)
	if err != nil {
		return nil, fmt.Errorf("error while listing qr codes. Err: %w", err)
	}

	return codes, nil
}

// Delete user record
// Demo mode has no remote record, so there is nothing to delete and it always succeeds
func (s *Service) Delete(ctx context.Context, user models.User, id string) error {
	if s.Demo() {
		return nil
	}

	err := s.repo.Delete(ctx, user.Username, id)
	if err != nil {
		return fmt.Errorf("error while deleting qr code. Err: %w", err)
	}

	s.logger.Debug("qr code deleted", "id", id, "user", user.Username)
	return nil
}

func (s *Service) simulateLatency(ctx context.Context) error {
	if s.demoDelay == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.demoDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
