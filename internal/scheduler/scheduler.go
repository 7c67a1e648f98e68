package scheduler

import (
	"context"
	"log"
	"time"

	"session-service/internal/models"
	"session-service/internal/observability"
	"session-service/internal/repositories"
)

// NextStatus computes the lifecycle status a session should hold at the
// given instant. Transitions only ever move forward:
// UPCOMING -> LIVE once the start time is reached, LIVE -> ENDED once
// start + duration has passed. Re-evaluating after a transition is a no-op.
func NextStatus(session models.Session, now time.Time) models.SessionStatus {
	status := session.Status
	if status == models.StatusUpcoming && !now.Before(session.StartTime) {
		status = models.StatusLive
	}
	if status == models.StatusLive && !now.Before(session.EndTime()) {
		status = models.StatusEnded
	}
	return status
}

// Scheduler periodically sweeps all unfinished sessions and advances their
// status as a function of wall-clock time. It is the only writer of
// Session.Status.
type Scheduler struct {
	sessions repositories.SessionRepository
	interval time.Duration
	now      func() time.Time
}

// New constructs a Scheduler. interval is the sweep cadence; it affects
// staleness, not correctness.
func New(sessions repositories.SessionRepository, interval time.Duration) *Scheduler {
	return &Scheduler{sessions: sessions, interval: interval, now: time.Now}
}

// Run ticks until the context is cancelled. An initial sweep runs
// immediately so restarts do not wait a full interval to catch up.
func (s *Scheduler) Run(ctx context.Context) {
	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one sweep. A failure on one session is logged and does not
// stop the rest of the scan.
func (s *Scheduler) Tick(ctx context.Context) {
	observability.IncSchedulerTick()

	sessions, err := s.sessions.ListUnfinished(ctx)
	if err != nil {
		log.Printf("scheduler: list sessions failed: %v", err)
		return
	}

	now := s.now()
	for _, session := range sessions {
		next := NextStatus(session, now)
		if next == session.Status {
			continue
		}

		applied, err := s.sessions.UpdateStatus(ctx, session.ID, session.Status, next)
		if err != nil {
			log.Printf("scheduler: session %d status %s->%s failed: %v", session.ID, session.Status, next, err)
			continue
		}
		if !applied {
			// Someone advanced the row between our read and write; the next
			// tick re-evaluates from the stored status.
			continue
		}
		observability.IncSessionTransition(string(session.Status), string(next))
		log.Printf("scheduler: session %d %s -> %s", session.ID, session.Status, next)
	}
}
