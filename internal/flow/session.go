package flow

import (
	"sync"
	"time"
)

// Sessions holds the transient per-actor flow state while a dialogue
// is in progress. State is keyed by actor id, lives only in memory and
// is lost on restart; the actor simply restarts the flow. Starting a
// new flow while one is in progress overwrites it (last entry wins).
type Sessions struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[int64]*session
}

type session struct {
	flow      any
	updatedAt time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Sessions{ttl: ttl, m: map[int64]*session{}}
}

func (s *Sessions) Put(actorID int64, flow any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[actorID] = &session{flow: flow, updatedAt: time.Now()}
}

func (s *Sessions) Get(actorID int64) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[actorID]
	if !ok {
		return nil
	}
	sess.updatedAt = time.Now()
	return sess.flow
}

func (s *Sessions) Clear(actorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, actorID)
}

// Sweep drops sessions idle longer than the TTL and returns how many
// were removed.
func (s *Sessions) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.m {
		if now.Sub(sess.updatedAt) > s.ttl {
			delete(s.m, id)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep periodically until stop is closed.
func (s *Sessions) StartSweeper(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.Sweep(time.Now())
			}
		}
	}()
}
