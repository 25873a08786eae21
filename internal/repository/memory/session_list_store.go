package memory

import (
	"sort"
	"sync"
	"time"

	"onechart-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type ChangeKind string

const (
	ChangeUpsert ChangeKind = "upsert"
	ChangeRemove ChangeKind = "remove"
)

// SessionChange describes one mutation of a user's session list.
type SessionChange struct {
	Kind      ChangeKind
	UserId    uuid.UUID
	SessionId uuid.UUID
	Session   *entity.Session
}

type ChangeListener func(change SessionChange)

// SessionListStore is the per-user in-memory view of sessions, newest first.
// Lists expire after the configured TTL and are rehydrated from the database on next read.
type SessionListStore struct {
	mu       sync.Mutex
	cache    *cache.Cache
	listener ChangeListener
}

func NewSessionListStore(ttl time.Duration) *SessionListStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionListStore{
		cache: cache.New(ttl, ttl/2),
	}
}

// OnChange registers the listener notified after every mutation.
func (s *SessionListStore) OnChange(listener ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = listener
}

func (s *SessionListStore) Hydrated(userId uuid.UUID) bool {
	_, found := s.cache.Get(userId.String())
	return found
}

// Hydrate seeds the user's list with sessions loaded from the database. A list that is
// already present wins, so a slow load never drops entries inserted meanwhile.
func (s *SessionListStore) Hydrate(userId uuid.UUID, sessions []*entity.Session) bool {
	list := make([]*entity.Session, 0, len(sessions))
	for _, session := range sessions {
		list = append(list, session.Clone())
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Add(userId.String(), list, cache.DefaultExpiration) == nil
}

func (s *SessionListStore) List(userId uuid.UUID) []*entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.load(userId)
	out := make([]*entity.Session, len(list))
	for i, session := range list {
		out[i] = session.Clone()
	}
	return out
}

func (s *SessionListStore) Get(userId, sessionId uuid.UUID) (*entity.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.load(userId) {
		if session.Id == sessionId {
			return session.Clone(), true
		}
	}
	return nil, false
}

// InsertPlaceholder puts the session at the head of the list, dropping any entry with the same id.
func (s *SessionListStore) InsertPlaceholder(session *entity.Session) {
	s.mu.Lock()
	list := s.load(session.UserId)
	next := make([]*entity.Session, 0, len(list)+1)
	next = append(next, session.Clone())
	for _, existing := range list {
		if existing.Id != session.Id {
			next = append(next, existing)
		}
	}
	s.cache.Set(session.UserId.String(), next, cache.DefaultExpiration)
	listener := s.listener
	s.mu.Unlock()

	s.notify(listener, SessionChange{Kind: ChangeUpsert, UserId: session.UserId, SessionId: session.Id, Session: session.Clone()})
}

// ReplaceByID swaps the entry with the same id. Missing entries are left alone so
// applying the same result twice yields the same list.
func (s *SessionListStore) ReplaceByID(session *entity.Session) bool {
	return s.Update(session.UserId, session.Id, func(current *entity.Session) {
		*current = *session.Clone()
	})
}

// Update applies fn to a copy of the entry and stores the copy.
func (s *SessionListStore) Update(userId, sessionId uuid.UUID, fn func(session *entity.Session)) bool {
	s.mu.Lock()
	list := s.load(userId)
	var updated *entity.Session
	next := make([]*entity.Session, len(list))
	for i, existing := range list {
		if existing.Id == sessionId && updated == nil {
			c := existing.Clone()
			fn(c)
			updated = c
			next[i] = c
			continue
		}
		next[i] = existing
	}
	if updated == nil {
		s.mu.Unlock()
		return false
	}
	s.cache.Set(userId.String(), next, cache.DefaultExpiration)
	listener := s.listener
	s.mu.Unlock()

	s.notify(listener, SessionChange{Kind: ChangeUpsert, UserId: userId, SessionId: sessionId, Session: updated.Clone()})
	return true
}

func (s *SessionListStore) RemoveByID(userId, sessionId uuid.UUID) bool {
	s.mu.Lock()
	list := s.load(userId)
	next := make([]*entity.Session, 0, len(list))
	removed := false
	for _, existing := range list {
		if existing.Id == sessionId {
			removed = true
			continue
		}
		next = append(next, existing)
	}
	if !removed {
		s.mu.Unlock()
		return false
	}
	s.cache.Set(userId.String(), next, cache.DefaultExpiration)
	listener := s.listener
	s.mu.Unlock()

	s.notify(listener, SessionChange{Kind: ChangeRemove, UserId: userId, SessionId: sessionId})
	return true
}

// load must be called with mu held.
func (s *SessionListStore) load(userId uuid.UUID) []*entity.Session {
	if x, found := s.cache.Get(userId.String()); found {
		return x.([]*entity.Session)
	}
	return nil
}

func (s *SessionListStore) notify(listener ChangeListener, change SessionChange) {
	if listener != nil {
		listener(change)
	}
}
