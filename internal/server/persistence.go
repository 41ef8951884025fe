package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"queryquest/internal/db"
)

// EventRecorder writes room lifecycle records to room_events from a single
// worker. Record never blocks the caller; records are dropped when the queue is full.
type EventRecorder struct {
	conn  *gorm.DB
	queue chan db.RoomEvent
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewEventRecorder(conn *gorm.DB, buffer int) *EventRecorder {
	if buffer <= 0 {
		buffer = 256
	}
	r := &EventRecorder{
		conn:  conn,
		queue: make(chan db.RoomEvent, buffer),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *EventRecorder) Record(code string, kind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("room", code).Str("type", kind).Msg("encode room event failed")
		return
	}
	event := db.RoomEvent{
		RoomCode:  code,
		Type:      kind,
		Payload:   datatypes.JSON(data),
		CreatedAt: time.Now().UTC(),
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- event:
	default:
		log.Warn().Str("room", code).Str("type", kind).Msg("room event queue full, dropping")
	}
}

func (r *EventRecorder) run() {
	defer close(r.done)
	for event := range r.queue {
		if r.conn == nil {
			continue
		}
		if err := r.conn.Create(&event).Error; err != nil {
			log.Error().Err(err).Str("room", event.RoomCode).Str("type", event.Type).Msg("persist room event failed")
		}
	}
}

// Close stops accepting records and waits for the queue to drain or ctx to end.
func (r *EventRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
