// Package session holds the authenticated identity and UI language, written
// through to durable storage on every change.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/persistence"
)

// Durable storage keys.
const (
	KeyIdentity = "nexus_user"
	KeyLanguage = "nexus_lang"
)

// State is a snapshot of the session.
type State struct {
	Identity        *domain.Identity
	Language        domain.Language
	IsAuthenticated bool
	Loading         bool
}

// Listener is called with the new state after every mutation.
type Listener func(State)

// Store is safe for concurrent use. Listeners run outside the lock.
type Store struct {
	mu        sync.RWMutex
	state     State
	storage   persistence.Storage
	logger    *zap.Logger
	listeners map[int]Listener
	nextID    int
}

// New returns a store in its pre-initialize state: no identity, English,
// loading.
func New(storage persistence.Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		state:     State{Language: domain.LanguageEnglish, Loading: true},
		storage:   storage,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Identity returns a copy of the identity, or nil.
func (s *Store) Identity() *domain.Identity {
	return s.State().Identity
}

// Language returns the current language.
func (s *Store) Language() domain.Language {
	return s.State().Language
}

// Initialize restores identity and language from storage. A malformed
// identity is treated as absent; a missing or unsupported language falls
// back to English. It never touches the network.
func (s *Store) Initialize(ctx context.Context) error {
	rawIdentity, hasIdentity, err := s.storage.Get(ctx, KeyIdentity)
	if err != nil {
		return fmt.Errorf("read identity: %w", err)
	}
	rawLang, hasLang, err := s.storage.Get(ctx, KeyLanguage)
	if err != nil {
		return fmt.Errorf("read language: %w", err)
	}

	var identity *domain.Identity
	if hasIdentity {
		var decoded domain.Identity
		if err := json.Unmarshal([]byte(rawIdentity), &decoded); err != nil || decoded.ID == "" {
			s.logger.Debug("discarding malformed stored identity", zap.Error(err))
		} else {
			identity = &decoded
		}
	}

	lang := domain.LanguageEnglish
	if hasLang {
		if parsed, ok := domain.ParseLanguage(rawLang); ok {
			lang = parsed
		}
	}

	s.update(func(st *State) {
		st.Identity = identity
		st.IsAuthenticated = identity != nil
		st.Language = lang
	})
	return nil
}

// SetIdentity adopts id as the authenticated identity and persists it.
func (s *Store) SetIdentity(ctx context.Context, id domain.Identity) error {
	s.update(func(st *State) {
		copied := id
		st.Identity = &copied
		st.IsAuthenticated = true
	})

	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := s.storage.Set(ctx, KeyIdentity, string(data)); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	return nil
}

// Clear drops the identity. The stored language is left in place.
func (s *Store) Clear(ctx context.Context) error {
	s.update(func(st *State) {
		st.Identity = nil
		st.IsAuthenticated = false
	})
	if err := s.storage.Remove(ctx, KeyIdentity); err != nil {
		return fmt.Errorf("remove identity: %w", err)
	}
	return nil
}

// SetLanguage updates and persists the UI language.
func (s *Store) SetLanguage(ctx context.Context, lang domain.Language) error {
	s.update(func(st *State) { st.Language = lang })
	if err := s.storage.Set(ctx, KeyLanguage, string(lang)); err != nil {
		return fmt.Errorf("persist language: %w", err)
	}
	return nil
}

// SetLoading toggles the loading gate. Not persisted.
func (s *Store) SetLoading(loading bool) {
	s.update(func(st *State) { st.Loading = loading })
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) update(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snap := s.snapshot()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// snapshot must be called with mu held.
func (s *Store) snapshot() State {
	st := s.state
	if st.Identity != nil {
		copied := *st.Identity
		st.Identity = &copied
	}
	return st
}
