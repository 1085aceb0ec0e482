package screens

import (
	"context"
	"fmt"
	"sync"

	"github.com/ajramos/mailpilot/internal/models"
	"go.uber.org/zap"
)

// Prompts holds the prompt brain view state
type Prompts struct {
	mu       sync.RWMutex
	api      PromptAPI
	logger   *zap.Logger
	life     lifecycle
	prompts  []models.Prompt
	saving   map[string]uint64
	saveSeq  uint64
	seeding  bool
	onChange func()
}

func NewPrompts(api PromptAPI, logger *zap.Logger) *Prompts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prompts{api: api, logger: logger.Named("prompts"), saving: make(map[string]uint64)}
}

func (s *Prompts) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Prompts) changed() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Activate loads the prompt list
func (s *Prompts) Activate(ctx context.Context) error {
	s.mu.Lock()
	token := s.life.begin()
	s.prompts = nil
	s.mu.Unlock()
	s.changed()
	return s.load(ctx, token)
}

// Reload refetches the list, the same as a fresh activation
func (s *Prompts) Reload(ctx context.Context) error {
	return s.Activate(ctx)
}

func (s *Prompts) load(ctx context.Context, token string) error {
	prompts, err := s.api.ListPrompts(ctx)

	s.mu.Lock()
	if !s.life.current(token) {
		s.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		s.life.fail(err)
	} else {
		s.prompts = models.UniquePrompts(prompts)
		s.life.ready()
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		s.logger.Error("failed to load prompts", zap.Error(err))
	}
	return err
}

// Save sends exactly one update carrying the new template for id. Local
// state changes only after the backend accepts it.
func (s *Prompts) Save(ctx context.Context, id, template string) error {
	s.mu.Lock()
	if s.indexOf(id) < 0 {
		s.mu.Unlock()
		return ErrUnknownID
	}
	if _, busy := s.saving[id]; busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.saveSeq++
	seq := s.saveSeq
	s.saving[id] = seq
	token := s.life.token
	s.mu.Unlock()
	s.changed()

	updated, err := s.api.UpdatePrompt(ctx, id, models.PromptUpdate{Template: &template})

	s.mu.Lock()
	// a save started after a deactivation owns the flag now
	if s.saving[id] == seq {
		delete(s.saving, id)
	}
	if err == nil && s.life.current(token) {
		if idx := s.indexOf(id); idx >= 0 {
			if updated != nil && updated.ID == id {
				s.prompts[idx] = *updated
			} else {
				s.prompts[idx].Template = template
			}
		}
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		s.logger.Error("failed to save prompt", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("save prompt %s: %w", id, err)
	}
	s.logger.Info("prompt saved", zap.String("id", id))
	return nil
}

// Saving reports whether an update for id is in flight
func (s *Prompts) Saving(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, busy := s.saving[id]
	return busy
}

// Initialize seeds the default prompts and refetches. It is only allowed on
// a loaded, empty list.
func (s *Prompts) Initialize(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.seeding:
		s.mu.Unlock()
		return ErrBusy
	case s.life.phase != PhaseReady:
		s.mu.Unlock()
		return ErrNotReady
	case len(s.prompts) > 0:
		s.mu.Unlock()
		return ErrNotEmpty
	}
	s.seeding = true
	token := s.life.begin()
	s.mu.Unlock()
	s.changed()

	defer func() {
		s.mu.Lock()
		s.seeding = false
		s.mu.Unlock()
		s.changed()
	}()

	if err := s.api.SeedPrompts(ctx); err != nil {
		s.mu.Lock()
		if s.life.current(token) {
			// Nothing was seeded; go back to the empty list.
			s.life.ready()
		}
		s.mu.Unlock()
		s.logger.Error("failed to seed prompts", zap.Error(err))
		return fmt.Errorf("seed prompts: %w", err)
	}
	return s.load(ctx, token)
}

// Seeding reports whether Initialize is in flight
func (s *Prompts) Seeding() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeding
}

func (s *Prompts) Deactivate() {
	s.mu.Lock()
	s.life.reset()
	s.prompts = nil
	s.saving = make(map[string]uint64)
	s.mu.Unlock()
	s.changed()
}

func (s *Prompts) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.life.phase
}

func (s *Prompts) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.life.err
}

func (s *Prompts) Get(id string) (models.Prompt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.prompts[idx], true
	}
	return models.Prompt{}, false
}

func (s *Prompts) Prompts() []models.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Prompt, len(s.prompts))
	copy(out, s.prompts)
	return out
}

func (s *Prompts) indexOf(id string) int {
	for i := range s.prompts {
		if s.prompts[i].ID == id {
			return i
		}
	}
	return -1
}
