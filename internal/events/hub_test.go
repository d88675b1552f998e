package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFiltersBySession(t *testing.T) {
	h := NewHub(10)
	a, cancelA := h.Subscribe("a")
	defer cancelA()
	all, cancelAll := h.Subscribe("")
	defer cancelAll()

	h.Publish("b", TypeResolved, ThemeState{Resolved: "dark"})
	h.Publish("a", TypeResolved, ThemeState{Resolved: "light"})

	ev := <-a
	assert.Equal(t, "a", ev.Session)
	var st ThemeState
	require.NoError(t, json.Unmarshal(ev.Data, &st))
	assert.Equal(t, "light", st.Resolved)
	assert.Len(t, a, 0)

	assert.Equal(t, "b", (<-all).Session)
	assert.Equal(t, "a", (<-all).Session)
}

func TestHubSnapshotSince(t *testing.T) {
	h := NewHub(3)
	for i := 0; i < 5; i++ {
		h.Publish("a", TypePreference, nil)
	}
	h.Publish("b", TypePreference, nil)

	snap := h.SnapshotSince("a", 0)
	require.Len(t, snap, 2)
	assert.Equal(t, int64(4), snap[0].ID)
	assert.Equal(t, int64(5), snap[1].ID)

	assert.Len(t, h.SnapshotSince("a", 4), 1)
	assert.Len(t, h.SnapshotSince("", 0), 3)
	assert.Equal(t, "{}", string(snap[0].Data))
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := NewHub(1)
	ch, cancel := h.Subscribe("")
	assert.Equal(t, 1, h.Subscribers())
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, h.Subscribers())
}
