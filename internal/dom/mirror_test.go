package dom

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/shade/internal/events"
	"github.com/mattjoyce/shade/internal/log"
)

func TestMirrorAppliesResolvedEvents(t *testing.T) {
	hub := events.NewHub(10)
	n := NewNode()
	a := NewApplier(n, log.Discard())
	cfg := classConfig(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Mirror(ctx, hub, cfg) }()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish("s1", events.TypePreference, events.ThemeState{Resolved: "dark"})
	hub.Publish("s1", events.TypeResolved, events.ThemeState{Resolved: "bogus"})
	hub.Publish("s2", events.TypeResolved, events.ThemeState{Preference: "dark", Resolved: "dark"})

	assert.Eventually(t, func() bool { return n.HasClass("dark") }, time.Second, 5*time.Millisecond)

	hub.Publish("s1", events.TypeResolved, events.ThemeState{Preference: "light", Resolved: "light"})
	assert.Eventually(t, func() bool { return !n.HasClass("dark") }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Mirror did not return after cancel")
	}
	assert.Zero(t, hub.Subscribers())
}
