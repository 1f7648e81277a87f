// Package registry is the process-wide, in-memory mapping of session id to
// live session, plus a bounded store of recently-finished sessions, and
// owns the TTL sweeper. It generalizes webpty-pty's Manager
// (internal/pty/manager.go in the teacher), which held only a single live
// map, into the spec's live/finished split with drain semantics and
// time-based retention.
package registry

import (
	"sync"
	"time"

	"github.com/shellrun/shelld/internal/logging"
	"github.com/shellrun/shelld/internal/session"
)

// Registry holds the live and finished session sets. The zero value is not
// usable; construct with New.
type Registry struct {
	mu       sync.RWMutex
	live     map[string]*session.Session
	finished map[string]*session.Session
	finishedAt map[string]time.Time

	ttl      time.Duration
	stopOnce sync.Once
	stopCh   chan struct{}
	log      *logging.Logger
}

// New constructs an empty Registry and starts its TTL sweeper goroutine.
func New(log *logging.Logger) *Registry {
	r := &Registry{
		live:       make(map[string]*session.Session),
		finished:   make(map[string]*session.Session),
		finishedAt: make(map[string]time.Time),
		stopCh:     make(chan struct{}),
		log:        log,
	}
	go r.sweepLoop()
	return r
}

// Add inserts a new, live session. Duplicate ids are a programmer error:
// ids come from a UUID source and are assumed unique.
func (r *Registry) Add(s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.live[s.ID]; exists {
		panic("registry: duplicate session id " + s.ID)
	}
	r.live[s.ID] = s
}

// Get looks up a live session by id.
func (r *Registry) Get(id string) (*session.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.live[id]
	return s, ok
}

// GetFinished looks up a finished session by id.
func (r *Registry) GetFinished(id string) (*session.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.finished[id]
	return s, ok
}

// MarkExited records the process's terminal state on s and, the first time
// this is called for s, moves it from the live set to the finished set.
// Subsequent calls (e.g. a kill overwriting a just-observed natural exit)
// update status fields in place without re-moving it.
func (r *Registry) MarkExited(s *session.Session, info session.ExitInfo) {
	firstTime := s.MarkExited(info)
	if !firstTime {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, stillLive := r.live[s.ID]; stillLive {
		delete(r.live, s.ID)
		r.finished[s.ID] = s
		r.finishedAt[s.ID] = time.Now()
	}
}

// AppendOutput enforces the per-session cap invariant and updates pending
// buffers and tail. Thin pass-through to Session.AppendOutput: the
// specification lists this as a registry responsibility, but the mutation
// itself only ever touches one session's own state, so Session owns the
// locking.
func (r *Registry) AppendOutput(s *session.Session, stream session.Stream, chunk []byte) {
	s.AppendOutput(stream, chunk)
}

// Drain atomically swaps and returns s's pending stdout/stderr buffers.
func (r *Registry) Drain(s *session.Session) (stdout, stderr []byte) {
	return s.Drain()
}

// MarkBackgrounded performs the idempotent false->true transition on s.
func (r *Registry) MarkBackgrounded(s *session.Session) {
	s.MarkBackgrounded()
}

// Delete removes a session from either set, wherever it is.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, id)
	delete(r.finished, id)
	delete(r.finishedAt, id)
}

// ListRunning returns a snapshot slice of all live sessions.
func (r *Registry) ListRunning() []*session.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*session.Session, 0, len(r.live))
	for _, s := range r.live {
		out = append(out, s)
	}
	return out
}

// ListFinished returns a snapshot slice of all finished sessions.
func (r *Registry) ListFinished() []*session.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*session.Session, 0, len(r.finished))
	for _, s := range r.finished {
		out = append(out, s)
	}
	return out
}

// SetJobTTL configures the retention window for finished sessions; zero
// disables the sweep.
func (r *Registry) SetJobTTL(ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ttl = ttl
}

// Stop halts the TTL sweeper. Safe to call multiple times.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stopCh:
			return
		}
	}
}

func (r *Registry) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ttl <= 0 {
		return
	}
	now := time.Now()
	for id, endedAt := range r.finishedAt {
		if endedAt.Add(r.ttl).Before(now) {
			delete(r.finished, id)
			delete(r.finishedAt, id)
			if r.log != nil {
				r.log.Printf("swept expired finished session %s", id)
			}
		}
	}
}
