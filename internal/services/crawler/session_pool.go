package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rankscout/internal/interfaces"
)

// SessionFactory opens a new isolated browsing context for a platform
type SessionFactory func(ctx context.Context, platform string) (interfaces.PageSession, error)

// healthChecker is implemented by sessions that can tell when they are no longer usable
type healthChecker interface {
	Healthy() bool
}

// PoolStats is a snapshot of the session pool
type PoolStats struct {
	Idle    int `json:"idle"`
	InUse   int `json:"in_use"`
	Created int `json:"created"`
	Reused  int `json:"reused"`
	Closed  int `json:"closed"`
}

// SessionPool keeps warm browsing contexts per platform so cookies and cache
// survive between tasks. Every session it hands out is owned by the pool and
// disposed by Close.
type SessionPool struct {
	factory    SessionFactory
	maxIdle    int
	idle       map[string][]interfaces.PageSession
	inUse      map[string]interfaces.PageSession
	created    int
	reused     int
	closedSess int
	closed     bool
	mu         sync.Mutex
	logger     arbor.ILogger
}

// NewSessionPool creates a pool keeping at most maxIdlePerPlatform idle sessions per platform
func NewSessionPool(factory SessionFactory, maxIdlePerPlatform int, logger arbor.ILogger) *SessionPool {
	if maxIdlePerPlatform < 0 {
		maxIdlePerPlatform = 0
	}
	return &SessionPool{
		factory: factory,
		maxIdle: maxIdlePerPlatform,
		idle:    make(map[string][]interfaces.PageSession),
		inUse:   make(map[string]interfaces.PageSession),
		logger:  logger,
	}
}

// Acquire returns an idle session for platform or opens a new one
func (p *SessionPool) Acquire(ctx context.Context, platform string) (interfaces.PageSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	session, stale := p.popIdleLocked(platform)
	if session != nil {
		p.inUse[session.ID()] = session
		p.reused++
		p.mu.Unlock()
		closeAll(stale)

		p.logger.Debug().
			Str("session_id", session.ID()).
			Str("platform", platform).
			Msg("Reusing warm browsing context")
		return session, nil
	}
	p.mu.Unlock()
	closeAll(stale)

	session, err := p.factory(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to open browsing context for %s: %w", platform, err)
	}

	p.mu.Lock()
	if p.closed {
		p.closedSess++
		p.mu.Unlock()
		_ = session.Close()
		return nil, ErrPoolClosed
	}
	p.inUse[session.ID()] = session
	p.created++
	p.mu.Unlock()

	p.logger.Debug().
		Str("session_id", session.ID()).
		Str("platform", platform).
		Msg("Opened new browsing context")

	return session, nil
}

// popIdleLocked returns the most recently released healthy idle session and
// the unhealthy ones skipped on the way, which the caller must close
func (p *SessionPool) popIdleLocked(platform string) (interfaces.PageSession, []interfaces.PageSession) {
	var stale []interfaces.PageSession
	sessions := p.idle[platform]
	for len(sessions) > 0 {
		session := sessions[len(sessions)-1]
		sessions = sessions[:len(sessions)-1]
		if isHealthy(session) {
			p.idle[platform] = sessions
			return session, stale
		}
		stale = append(stale, session)
		p.closedSess++
	}
	p.idle[platform] = sessions
	return nil, stale
}

// Release returns a session to the idle list, or closes it when the pool is
// closed, the platform's idle list is full or the session is unhealthy
func (p *SessionPool) Release(session interfaces.PageSession) {
	if session == nil {
		return
	}

	p.mu.Lock()
	delete(p.inUse, session.ID())
	keep := !p.closed && isHealthy(session) && len(p.idle[session.Platform()]) < p.maxIdle
	if keep {
		p.idle[session.Platform()] = append(p.idle[session.Platform()], session)
	} else {
		p.closedSess++
	}
	p.mu.Unlock()

	if keep {
		return
	}
	if err := session.Close(); err != nil {
		p.logger.Warn().
			Err(err).
			Str("session_id", session.ID()).
			Msg("Failed to close browsing context")
	}
}

// Close disposes every idle and in-use session; later Acquire calls fail with ErrPoolClosed
func (p *SessionPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true

	sessions := make([]interfaces.PageSession, 0, len(p.inUse))
	for _, idle := range p.idle {
		sessions = append(sessions, idle...)
	}
	for _, session := range p.inUse {
		sessions = append(sessions, session)
	}
	p.idle = make(map[string][]interfaces.PageSession)
	p.inUse = make(map[string]interfaces.PageSession)
	p.closedSess += len(sessions)
	p.mu.Unlock()

	var errs []error
	for _, session := range sessions {
		if err := session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", session.ID(), err))
		}
	}

	p.logger.Debug().
		Int("sessions_closed", len(sessions)).
		Msg("Session pool closed")

	return errors.Join(errs...)
}

// Stats returns a snapshot of the pool counters
func (p *SessionPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	idle := 0
	for _, sessions := range p.idle {
		idle += len(sessions)
	}
	return PoolStats{
		Idle:    idle,
		InUse:   len(p.inUse),
		Created: p.created,
		Reused:  p.reused,
		Closed:  p.closedSess,
	}
}

func isHealthy(session interfaces.PageSession) bool {
	if hc, ok := session.(healthChecker); ok {
		return hc.Healthy()
	}
	return true
}

func closeAll(sessions []interfaces.PageSession) {
	for _, session := range sessions {
		_ = session.Close()
	}
}
