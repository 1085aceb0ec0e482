package screens

import (
	"context"
	"sync"

	"github.com/ajramos/mailpilot/internal/models"
	"go.uber.org/zap"
)

// Detail holds the single email being read
type Detail struct {
	mu       sync.RWMutex
	api      EmailAPI
	logger   *zap.Logger
	life     lifecycle
	id       string
	email    *models.Email
	onChange func()
}

func NewDetail(api EmailAPI, logger *zap.Logger) *Detail {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detail{api: api, logger: logger.Named("detail")}
}

func (s *Detail) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Detail) changed() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Activate loads the email with the given id. Opening another email before
// this one arrives makes this response stale.
func (s *Detail) Activate(ctx context.Context, id string) error {
	s.mu.Lock()
	token := s.life.begin()
	s.id = id
	s.email = nil
	s.mu.Unlock()
	s.changed()

	email, err := s.api.GetEmail(ctx, id)

	s.mu.Lock()
	if !s.life.current(token) {
		s.mu.Unlock()
		s.logger.Debug("dropping stale email", zap.String("id", id))
		return ErrStale
	}
	if err != nil {
		s.life.fail(err)
	} else {
		s.email = email
		s.life.ready()
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		s.logger.Error("failed to load email", zap.String("id", id), zap.Error(err))
	}
	return err
}

func (s *Detail) Deactivate() {
	s.mu.Lock()
	s.life.reset()
	s.id = ""
	s.email = nil
	s.mu.Unlock()
	s.changed()
}

func (s *Detail) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.life.phase
}

func (s *Detail) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.life.err
}

// ID returns the id requested by the latest activation
func (s *Detail) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Email returns a copy of the loaded email, or nil before it arrives
func (s *Detail) Email() *models.Email {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.email == nil {
		return nil
	}
	e := *s.email
	return &e
}
