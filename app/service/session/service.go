package session

import (
	"agencychat/app/config"
	"agencychat/app/service/conversation"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/samber/do"
)

type EngineFactory interface {
	NewEngine(client string) *conversation.Engine
}

// Session is one visitor's conversation. Its turns are handled one at a time.
type Session struct {
	ID string

	mu      sync.Mutex
	engine  *conversation.Engine
	history ChatHistory
}

// Respond answers a turn. When history is nil the session's own transcript is used.
func (s *Session) Respond(ctx context.Context, utterance string, history []conversation.Turn) conversation.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if history == nil {
		history = s.history.snapshot()
	}

	result := s.engine.Respond(ctx, utterance, history)

	s.history.add(conversation.SenderUser, utterance)
	s.history.add(conversation.SenderAssistant, result.Message)

	return result
}

func (s *Session) State() conversation.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.State()
}

type Registry struct {
	factory EngineFactory

	mu       sync.Mutex
	sessions *expirable.LRU[string, *Session]
}

func New(di *do.Injector) (*Registry, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewRegistry(
		do.MustInvoke[*conversation.Service](di),
		cfg.Session.MaxSessions,
		cfg.Session.IdleTTL,
	), nil
}

func NewRegistry(factory EngineFactory, size int, idleTTL time.Duration) *Registry {
	onEvict := func(id string, _ *Session) {
		slog.Debug("Chat session expired", "session_id", id)
	}

	return &Registry{
		factory:  factory,
		sessions: expirable.NewLRU[string, *Session](size, onEvict, idleTTL),
	}
}

// Get returns the session with the given id, starting it if needed.
// Every access extends the session's idle deadline.
func (r *Registry) Get(id, client string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions.Get(id)
	if !ok {
		s = &Session{
			ID:     id,
			engine: r.factory.NewEngine(client),
		}

		slog.Info("Chat session started", "session_id", id, "client", client)
	}

	r.sessions.Add(id, s)

	return s
}

func (r *Registry) Len() int {
	return r.sessions.Len()
}
