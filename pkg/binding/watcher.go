package binding

import (
	"context"
	"log"
	"time"
)

// WatchStatus polls the escalation-status endpoint and feeds each reading
// into the session until ctx is canceled. The bridge between the REST world
// and the event-driven eligibility flag lives here, not in the session.
func WatchStatus(ctx context.Context, s *Session, every time.Duration) {
	if every <= 0 {
		every = 3 * time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st, err := s.cfg.API.EscalationStatus(ctx, s.cfg.ConversationID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("[watch] escalation status fetch failed: %v", err)
				continue
			}
			s.ApplyStatus(st)
		}
	}
}
