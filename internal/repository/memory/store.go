// Package memory is a process-local implementation of the repository
// interfaces. It backs local development (STORAGE_TYPE=memory) and the
// usecase tests; semantics mirror the postgres package, including the
// per-connection mutual exclusion in Mutate.
package memory

import (
	"sync"
	"time"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
)

type Store struct {
	mu sync.RWMutex

	users       map[int]*domain.User
	profiles    map[int]*domain.Profile
	sessions    map[string]*domain.Session
	connections map[int]*domain.SoulConnection
	revelations map[int]*domain.DailyRevelation
	messages    map[int]*domain.Message
	accuracy    map[int]*domain.CompatibilityAccuracyRecord

	connLocks map[int]*sync.Mutex

	userSeq, profileSeq, sessionSeq, connSeq, revSeq, msgSeq, accSeq int
}

func NewStore() *Store {
	return &Store{
		users:       make(map[int]*domain.User),
		profiles:    make(map[int]*domain.Profile),
		sessions:    make(map[string]*domain.Session),
		connections: make(map[int]*domain.SoulConnection),
		revelations: make(map[int]*domain.DailyRevelation),
		messages:    make(map[int]*domain.Message),
		accuracy:    make(map[int]*domain.CompatibilityAccuracyRecord),
		connLocks:   make(map[int]*sync.Mutex),
	}
}

func (s *Store) connLock(id int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.connLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.connLocks[id] = l
	}
	return l
}

func now() time.Time {
	return time.Now().UTC()
}

func cloneConnection(c *domain.SoulConnection) *domain.SoulConnection {
	cp := *c
	if c.CompatibilityBreakdown != nil {
		cp.CompatibilityBreakdown = make(domain.ScoreMap, len(c.CompatibilityBreakdown))
		for k, v := range c.CompatibilityBreakdown {
			cp.CompatibilityBreakdown[k] = v
		}
	}
	return &cp
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	cp := *p
	cp.Interests = append([]string(nil), p.Interests...)
	if p.CoreValues != nil {
		cp.CoreValues = make(domain.ValueMap, len(p.CoreValues))
		for k, v := range p.CoreValues {
			cp.CoreValues[k] = append([]string(nil), v...)
		}
	}
	if p.PersonalityTraits != nil {
		cp.PersonalityTraits = make(domain.ScoreMap, len(p.PersonalityTraits))
		for k, v := range p.PersonalityTraits {
			cp.PersonalityTraits[k] = v
		}
	}
	return &cp
}
