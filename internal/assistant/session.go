// Package assistant holds the conversational assistant shown on the website:
// a per-visit transcript that relays each visitor question to a remote
// completion service and records exactly one assistant reply for it.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Conversation is a remote chat that keeps its own history between calls.
type Conversation interface {
	SendMessage(ctx context.Context, text string) (string, error)
}

// Backend creates conversations on the remote completion service.
type Backend interface {
	// Configured reports whether the service has a credential. When it
	// returns false no conversation is started and nothing is dispatched.
	Configured() bool
	StartConversation(ctx context.Context) (Conversation, error)
}

// SettleFunc is called after a reply has been appended to the transcript.
type SettleFunc func(sessionID uuid.UUID, reply Reply)

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithOnSettled(fn SettleFunc) Option {
	return func(s *Session) {
		if fn != nil {
			s.onSettled = append(s.onSettled, fn)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is the assistant state for one page visit.
type Session struct {
	id        uuid.UUID
	backend   Backend
	logger    *slog.Logger
	onSettled []SettleFunc
	now       func() time.Time

	mu         sync.Mutex
	transcript []ChatMessage
	pending    bool
	open       bool
	lastActive time.Time

	// conv is only touched by the goroutine resolving the pending submission.
	conv Conversation
}

// Snapshot is a consistent copy of a session's visible state.
type Snapshot struct {
	ID         uuid.UUID     `json:"id"`
	Open       bool          `json:"open"`
	Pending    bool          `json:"pending"`
	Transcript []ChatMessage `json:"transcript"`
}

// NewSession returns a closed, idle session seeded with the greeting.
func NewSession(id uuid.UUID, backend Backend, opts ...Option) *Session {
	s := &Session{
		id:      id,
		backend: backend,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.transcript = []ChatMessage{AssistantMessage(GreetingText)}
	s.lastActive = s.now()
	return s
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Open() {
	s.mu.Lock()
	s.open = true
	s.lastActive = s.now()
	s.mu.Unlock()
}

func (s *Session) Close() {
	s.mu.Lock()
	s.open = false
	s.lastActive = s.now()
	s.mu.Unlock()
}

// Toggle flips visibility and returns the new state.
func (s *Session) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
	s.lastActive = s.now()
	return s.open
}

func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) Transcript() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTranscript(s.transcript)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.id,
		Open:       s.open,
		Pending:    s.pending,
		Transcript: copyTranscript(s.transcript),
	}
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Submit records the utterance and dispatches one completion for it.
//
// Blank utterances and submissions made while a reply is pending are
// ignored and report false; the transcript is left untouched. Otherwise
// the user entry is appended before Submit returns and the returned
// channel yields the assistant reply once it has been appended.
//
// Cancellation of ctx does not abort the dispatched call.
func (s *Session) Submit(ctx context.Context, utterance string) (<-chan Reply, bool) {
	if strings.TrimSpace(utterance) == "" {
		return nil, false
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return nil, false
	}
	s.transcript = append(s.transcript, UserMessage(utterance))
	s.pending = true
	s.lastActive = s.now()
	s.mu.Unlock()

	done := make(chan Reply, 1)
	go s.resolve(context.WithoutCancel(ctx), utterance, done)
	return done, true
}

func (s *Session) resolve(ctx context.Context, utterance string, done chan<- Reply) {
	reply := s.complete(ctx, utterance)

	s.mu.Lock()
	s.transcript = append(s.transcript, reply.Message)
	s.pending = false
	s.lastActive = s.now()
	hooks := s.onSettled
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(s.id, reply)
	}

	done <- reply
	close(done)
}

// complete never fails: every path ends in an assistant reply.
func (s *Session) complete(ctx context.Context, utterance string) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("assistant completion panicked", "session_id", s.id, "panic", fmt.Sprint(r))
			reply = Reply{Message: AssistantMessage(ConnectivityText), Outcome: OutcomeFailed}
		}
	}()

	if s.backend == nil || !s.backend.Configured() {
		return Reply{Message: AssistantMessage(UnavailableText), Outcome: OutcomeUnavailable}
	}

	conv, err := s.conversation(ctx)
	if err != nil {
		s.logger.Error("assistant conversation could not be started", "session_id", s.id, "error", err)
		return Reply{Message: AssistantMessage(ConnectivityText), Outcome: OutcomeFailed}
	}

	text, err := conv.SendMessage(ctx, utterance)
	if err != nil {
		s.logger.Error("assistant completion failed", "session_id", s.id, "error", err)
		return Reply{Message: AssistantMessage(ConnectivityText), Outcome: OutcomeFailed}
	}

	if strings.TrimSpace(text) == "" {
		return Reply{Message: AssistantMessage(EmptyReplyText), Outcome: OutcomeEmpty}
	}
	return Reply{Message: AssistantMessage(text), Outcome: OutcomeAnswered}
}

// conversation starts the remote conversation on first use and reuses it after.
func (s *Session) conversation(ctx context.Context) (Conversation, error) {
	if s.conv != nil {
		return s.conv, nil
	}
	conv, err := s.backend.StartConversation(ctx)
	if err != nil {
		return nil, fmt.Errorf("start conversation: %w", err)
	}
	if conv == nil {
		return nil, fmt.Errorf("start conversation: backend returned no conversation")
	}
	s.conv = conv
	return conv, nil
}
