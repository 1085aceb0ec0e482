package screens

import (
	"context"
	"fmt"
	"sync"

	"github.com/ajramos/mailpilot/internal/models"
	"go.uber.org/zap"
)

// Inbox holds the email list view state
type Inbox struct {
	mu         sync.RWMutex
	api        InboxAPI
	logger     *zap.Logger
	life       lifecycle
	emails     []models.Email
	refreshing bool
	onChange   func()
}

// NewInbox creates an idle inbox screen
func NewInbox(api InboxAPI, logger *zap.Logger) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inbox{api: api, logger: logger.Named("inbox")}
}

// SetOnChange registers a callback fired after every state transition
func (s *Inbox) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Inbox) changed() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Activate loads the email list without triggering ingestion
func (s *Inbox) Activate(ctx context.Context) error {
	s.mu.Lock()
	token := s.life.begin()
	s.emails = nil
	s.mu.Unlock()
	s.changed()

	emails, err := s.api.ListEmails(ctx)

	s.mu.Lock()
	if !s.life.current(token) {
		s.mu.Unlock()
		s.logger.Debug("dropping stale email list", zap.String("activation", token))
		return ErrStale
	}
	if err != nil {
		s.life.fail(err)
	} else {
		s.emails = models.UniqueEmails(emails)
		s.life.ready()
	}
	count := len(s.emails)
	s.mu.Unlock()
	s.changed()

	if err != nil {
		s.logger.Error("failed to load emails", zap.Error(err))
		return err
	}
	s.logger.Debug("emails loaded", zap.Int("count", count))
	return nil
}

// Refresh asks the backend to ingest new mail, then reloads the list. A
// failure at either step leaves the previous list untouched.
func (s *Inbox) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.life.token == "" {
		s.mu.Unlock()
		return ErrNotReady
	}
	if s.refreshing {
		s.mu.Unlock()
		return ErrBusy
	}
	s.refreshing = true
	token := s.life.token
	s.mu.Unlock()
	s.changed()

	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
		s.changed()
	}()

	if err := s.api.IngestEmails(ctx); err != nil {
		s.logger.Error("ingestion failed", zap.Error(err))
		return fmt.Errorf("ingest emails: %w", err)
	}

	emails, err := s.api.ListEmails(ctx)
	if err != nil {
		s.logger.Error("reload after ingestion failed", zap.Error(err))
		return fmt.Errorf("list emails: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.life.current(token) {
		return ErrStale
	}
	s.emails = models.UniqueEmails(emails)
	s.life.ready()
	s.logger.Info("inbox refreshed", zap.Int("count", len(s.emails)))
	return nil
}

// Deactivate discards the list; in-flight responses are dropped on arrival
func (s *Inbox) Deactivate() {
	s.mu.Lock()
	s.life.reset()
	s.emails = nil
	s.mu.Unlock()
	s.changed()
}

func (s *Inbox) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.life.phase
}

// Err returns the failure behind PhaseFailed
func (s *Inbox) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.life.err
}

// Refreshing reports whether a refresh is in flight
func (s *Inbox) Refreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshing
}

// Emails returns a copy of the current list, newest first as served
func (s *Inbox) Emails() []models.Email {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Email, len(s.emails))
	copy(out, s.emails)
	return out
}
