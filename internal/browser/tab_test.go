package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosedTabRejectsEval(t *testing.T) {
	cancelled := 0
	tab := &Tab{cancel: func() { cancelled++ }}

	tab.Close()
	tab.Close()
	assert.Equal(t, 1, cancelled, "Close is idempotent")

	var dark bool
	err := tab.Eval(context.Background(), "true", &dark)
	assert.ErrorContains(t, err, "closed")
}
