package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventRecorderWithoutDatabaseDrains(t *testing.T) {
	r := NewEventRecorder(nil, 4)
	for i := 0; i < 10; i++ {
		r.Record("AAAA", "round_started", map[string]any{"round": i})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, r.Close(ctx))
	assert.NoError(t, r.Close(ctx))

	// Records after close are discarded.
	r.Record("AAAA", "room_closed", nil)
}

func TestEventRecorderSkipsUnencodablePayloads(t *testing.T) {
	r := NewEventRecorder(nil, 0)
	r.Record("AAAA", "round_ended", map[string]any{"bad": make(chan int)})
	assert.NoError(t, r.Close(context.Background()))
}
