package store

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/moviestitch/moviestitch-client/internal/logging"
)

// Listener is called after every dispatch with the new state. Listeners run
// outside the store lock and must not block for long.
type Listener func(State)

// Store serialises state transitions. There is one Store per process,
// constructed in main and passed to whatever needs it.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
	logger    *slog.Logger
}

func New(logger *slog.Logger) *Store {
	return &Store{
		state:     Initial(),
		listeners: make(map[int]Listener),
		logger:    logging.WithComponent(logger, "store"),
	}
}

// Dispatch applies a and notifies listeners. It returns the new state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state.clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.logger.Debug("action dispatched", "action", actionName(a))

	for _, l := range listeners {
		l(next.clone())
	}
	return next
}

// State returns a snapshot that callers may modify freely.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func actionName(a Action) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", a), "store.")
}
