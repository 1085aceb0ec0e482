package tui

import (
	"sync"

	"github.com/derailed/tview"
)

// Pages holds the page container and the navigation history
type Pages struct {
	*tview.Pages
	stack *Stack
}

// NewPages creates a new Pages instance
func NewPages() *Pages {
	return &Pages{
		Pages: tview.NewPages(),
		stack: &Stack{
			items: make([]string, 0),
		},
	}
}

// Stack manages navigation history
type Stack struct {
	items []string
	mu    sync.RWMutex
}

// Push adds a page name on top
func (s *Stack) Push(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, name)
}

// Pop removes and returns the top page name
func (s *Stack) Pop() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return ""
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top
}

// Top returns the top page name without removing it
func (s *Stack) Top() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return ""
	}
	return s.items[len(s.items)-1]
}

// Len returns the history depth
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear empties the history
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
}
