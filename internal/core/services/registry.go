package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

// Ensure SessionRegistry implements the interface.
var _ driving.SessionService = (*SessionRegistry)(nil)

// Session is one user's conversation: its own index, documents and transcript.
// The mutex guards every field; it is held for mutation and snapshots only,
// never across provider calls.
type Session struct {
	id string

	mu         sync.RWMutex
	index      driven.VectorIndex
	documents  driven.DocumentStore
	transcript *domain.Transcript
	model      string
	evidence   map[string]*domain.EvidenceSet
	createdAt  time.Time
	lastActive time.Time
	closed     bool
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Model returns the active generation model.
func (s *Session) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Scope snapshots the index and document store for retrieval.
func (s *Session) Scope() RetrievalScope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RetrievalScope{Index: s.index, Documents: s.documents}
}

// Stats returns a snapshot of the session.
func (s *Session) Stats(ctx context.Context) domain.SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, err := s.documents.ListDocuments(ctx)
	if err != nil {
		logger.Warn("List documents for session %s: %v", s.id, err)
	}

	return domain.SessionStats{
		SessionID:          s.id,
		Model:              s.model,
		DocumentsProcessed: len(docs),
		VectorStoreSize:    s.index.Len(),
		Dimension:          s.index.Dimension(),
		TranscriptLength:   s.transcript.Len(),
		StorageType:        domain.StorageMemoryOnly,
		CreatedAt:          s.createdAt,
		LastActive:         s.lastActive,
	}
}

// cachedEvidence returns the evidence stored for a user turn.
func (s *Session) cachedEvidence(userTurnID string) *domain.EvidenceSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evidence[userTurnID]
}

// storeEvidence caches evidence for a user turn and drops entries for turns
// that are no longer in the transcript.
func (s *Session) storeEvidence(userTurnID string, ev *domain.EvidenceSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := make(map[string]bool, s.transcript.Len())
	for _, turn := range s.transcript.Turns() {
		if turn.Role == domain.RoleUser {
			live[turn.ID] = true
		}
	}
	for id := range s.evidence {
		if !live[id] {
			delete(s.evidence, id)
		}
	}
	if s.evidence != nil && live[userTurnID] {
		s.evidence[userTurnID] = ev
	}
}

// SessionRegistry owns every live session. Idle sessions expire through the
// backing cache and are torn down like an explicit Evict.
type SessionRegistry struct {
	mu           sync.Mutex
	cache        driven.SessionCache[*Session]
	newIndex     driven.VectorIndexFactory
	newDocuments driven.DocumentStoreFactory
	defaultModel string
	newID        func() string
	now          func() time.Time
}

// RegistryOption configures a SessionRegistry.
type RegistryOption func(*SessionRegistry)

// WithSessionIDs sets the generator for ids of sessions opened without one.
func WithSessionIDs(fn func() string) RegistryOption {
	return func(r *SessionRegistry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithRegistryClock sets the time source for session timestamps.
func WithRegistryClock(fn func() time.Time) RegistryOption {
	return func(r *SessionRegistry) {
		if fn != nil {
			r.now = fn
		}
	}
}

// NewSessionRegistry creates a registry. defaultModel is the active model
// of every new session.
func NewSessionRegistry(
	cache driven.SessionCache[*Session],
	newIndex driven.VectorIndexFactory,
	newDocuments driven.DocumentStoreFactory,
	defaultModel string,
	opts ...RegistryOption,
) *SessionRegistry {
	r := &SessionRegistry{
		cache:        cache,
		newIndex:     newIndex,
		newDocuments: newDocuments,
		defaultModel: defaultModel,
		newID:        func() string { return uuid.New().String() },
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	cache.OnEvicted(func(id string, s *Session) {
		logger.Debug("Session %s evicted", id)
		s.teardown()
	})
	return r
}

// DefaultModel returns the model new sessions start with.
func (r *SessionRegistry) DefaultModel() string {
	return r.defaultModel
}

// GetOrCreate returns the session for id, creating it on first use.
// An empty id creates a session with a generated id.
func (r *SessionRegistry) GetOrCreate(id string) (*Session, error) {
	id = strings.TrimSpace(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		id = r.newID()
	} else if s, ok := r.cache.Get(id); ok {
		s.touch(r.now())
		return s, nil
	}

	now := r.now()
	s := &Session{
		id:         id,
		index:      r.newIndex(),
		documents:  r.newDocuments(),
		transcript: domain.NewTranscript(domain.WithTurnIDs(newTurnID)),
		model:      r.defaultModel,
		evidence:   make(map[string]*domain.EvidenceSet),
		createdAt:  now,
		lastActive: now,
	}
	if !r.cache.Add(id, s) {
		return nil, fmt.Errorf("session %s already exists: %w", id, domain.ErrInvalidInput)
	}
	logger.Info("Session %s created", id)
	return s, nil
}

// Get returns the live session for id.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	s, ok := r.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	s.touch(r.now())
	return s, nil
}

// Open returns the session, creating it on first use.
func (r *SessionRegistry) Open(ctx context.Context, sessionID string) (domain.SessionStats, error) {
	s, err := r.GetOrCreate(sessionID)
	if err != nil {
		return domain.SessionStats{}, err
	}
	return s.Stats(ctx), nil
}

// Stats returns a snapshot of an existing session.
func (r *SessionRegistry) Stats(ctx context.Context, sessionID string) (domain.SessionStats, error) {
	s, err := r.Get(sessionID)
	if err != nil {
		return domain.SessionStats{}, err
	}
	return s.Stats(ctx), nil
}

// Documents lists the session's documents in upload order.
func (r *SessionRegistry) Documents(ctx context.Context, sessionID string) ([]domain.Document, error) {
	s, err := r.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Scope().Documents.ListDocuments(ctx)
}

// Reset gives the session an empty index and document store and clears
// its transcript. The id and active model are kept. Searches already
// running finish against the old index; replies to questions asked before
// the reset are rejected as stale.
func (r *SessionRegistry) Reset(_ context.Context, sessionID string) error {
	s, err := r.Get(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = r.newIndex()
	s.documents = r.newDocuments()
	s.transcript.Clear()
	s.evidence = make(map[string]*domain.EvidenceSet)
	s.createdAt = r.now()
	s.lastActive = s.createdAt
	logger.Info("Session %s reset", sessionID)
	return nil
}

// ClearDocuments drops the index and documents but keeps the transcript.
func (r *SessionRegistry) ClearDocuments(_ context.Context, sessionID string) error {
	s, err := r.Get(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = r.newIndex()
	s.documents = r.newDocuments()
	logger.Info("Session %s documents cleared", sessionID)
	return nil
}

// Evict tears the session down and forgets it.
func (r *SessionRegistry) Evict(_ context.Context, sessionID string) error {
	if _, ok := r.cache.Peek(sessionID); !ok {
		return fmt.Errorf("session %q: %w", sessionID, domain.ErrSessionNotFound)
	}
	r.cache.Delete(sessionID)
	return nil
}

// List returns snapshots of every live session, oldest first.
func (r *SessionRegistry) List(ctx context.Context) []domain.SessionStats {
	ids := r.cache.IDs()
	stats := make([]domain.SessionStats, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.cache.Peek(id); ok {
			stats = append(stats, s.Stats(ctx))
		}
	}
	slices.SortStableFunc(stats, func(a, b domain.SessionStats) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return stats
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	return r.cache.Len()
}

func newTurnID() string {
	return uuid.New().String()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
}

// teardown releases the session's index and transcript.
func (s *Session) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.index.Clear()
	s.transcript.Clear()
	s.evidence = nil
}
