package screens

import (
	"context"
	"sync"

	"github.com/ajramos/mailpilot/internal/models"
	"go.uber.org/zap"
)

// ConfirmFunc asks the user about a destructive action on d. It must call
// proceed only if the user agrees; it may do so asynchronously.
type ConfirmFunc func(d models.Draft, proceed func())

// Drafts holds the generated drafts list
type Drafts struct {
	mu       sync.RWMutex
	api      DraftAPI
	logger   *zap.Logger
	life     lifecycle
	drafts   []models.Draft
	pending  sync.WaitGroup
	onChange func()
}

func NewDrafts(api DraftAPI, logger *zap.Logger) *Drafts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Drafts{api: api, logger: logger.Named("drafts")}
}

func (s *Drafts) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Drafts) changed() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Activate loads the drafts list
func (s *Drafts) Activate(ctx context.Context) error {
	s.mu.Lock()
	token := s.life.begin()
	s.drafts = nil
	s.mu.Unlock()
	s.changed()

	drafts, err := s.api.ListDrafts(ctx)

	s.mu.Lock()
	if !s.life.current(token) {
		s.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		s.life.fail(err)
	} else {
		s.drafts = models.UniqueDrafts(drafts)
		s.life.ready()
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		s.logger.Error("failed to load drafts", zap.Error(err))
	}
	return err
}

// Delete asks confirm about the draft and, once the user agrees, removes it
// locally and tells the backend in the background. The local removal stands
// even if the backend call fails.
func (s *Drafts) Delete(ctx context.Context, id string, confirm ConfirmFunc) error {
	d, ok := s.Get(id)
	if !ok {
		return ErrUnknownID
	}
	proceed := func() { s.remove(ctx, id) }
	if confirm == nil {
		proceed()
		return nil
	}
	confirm(d, proceed)
	return nil
}

func (s *Drafts) remove(ctx context.Context, id string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.drafts = append(s.drafts[:idx:idx], s.drafts[idx+1:]...)
	s.mu.Unlock()
	s.changed()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		// Leaving the screen must not abort the backend delete.
		if _, err := s.api.DeleteDraft(context.WithoutCancel(ctx), id); err != nil {
			s.logger.Warn("backend draft delete failed; keeping local removal",
				zap.String("id", id), zap.Error(err))
			return
		}
		s.logger.Debug("draft deleted", zap.String("id", id))
	}()
}

// Edit replaces the body of a draft in local state only. The backend has no
// draft update endpoint, so the change is lost on the next activation.
func (s *Drafts) Edit(id, body string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrUnknownID
	}
	s.drafts[idx].Body = body
	s.mu.Unlock()
	s.changed()

	s.logger.Warn("draft edited locally; change is not persisted", zap.String("id", id))
	return nil
}

// Wait blocks until background deletes have finished
func (s *Drafts) Wait() {
	s.pending.Wait()
}

func (s *Drafts) Deactivate() {
	s.mu.Lock()
	s.life.reset()
	s.drafts = nil
	s.mu.Unlock()
	s.changed()
}

func (s *Drafts) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.life.phase
}

func (s *Drafts) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.life.err
}

// Get returns the draft with the given id from local state
func (s *Drafts) Get(id string) (models.Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.drafts[idx], true
	}
	return models.Draft{}, false
}

func (s *Drafts) Drafts() []models.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Draft, len(s.drafts))
	copy(out, s.drafts)
	return out
}

// indexOf expects the lock to be held
func (s *Drafts) indexOf(id string) int {
	for i := range s.drafts {
		if s.drafts[i].ID == id {
			return i
		}
	}
	return -1
}
