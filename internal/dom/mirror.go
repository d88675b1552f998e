package dom

import (
	"context"
	"encoding/json"

	"github.com/mattjoyce/shade/internal/events"
	"github.com/mattjoyce/shade/internal/theme"
)

// Mirror applies every theme.resolved event published on hub, from any
// session, until ctx is done or the subscription closes.
func (a *Applier) Mirror(ctx context.Context, hub *events.Hub, cfg theme.Config) error {
	ch, cancel := hub.Subscribe("")
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if ev.Type != events.TypeResolved {
				continue
			}
			var st events.ThemeState
			if err := json.Unmarshal(ev.Data, &st); err != nil {
				a.logger.Warn("failed to decode mirrored event", "event_id", ev.ID, "error", err)
				continue
			}
			resolved, err := theme.ParseResolved(st.Resolved)
			if err != nil {
				a.logger.Warn("ignoring mirrored event", "event_id", ev.ID, "error", err)
				continue
			}
			a.Apply(resolved, cfg)
		}
	}
}
