package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubContent struct {
	mu     sync.Mutex
	answer string
	hints  []Hint
	err    error
	calls  int
}

func newStubContent(answer string, hintCount int) *stubContent {
	hints := make([]Hint, 0, hintCount)
	for i := 0; i < hintCount; i++ {
		hints = append(hints, Hint{Name: fmt.Sprintf("hint-%d", i), Value: fmt.Sprintf("value-%d", i)})
	}
	return &stubContent{answer: answer, hints: hints}
}

func (c *stubContent) NextAnswerAndHints(context.Context) (string, []Hint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", nil, c.err
	}
	return c.answer, append([]Hint(nil), c.hints...), nil
}

type stubSandbox struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (s *stubSandbox) Run(_ context.Context, query string) (QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return QueryResult{}, s.err
	}
	return QueryResult{Columns: []string{"name"}, Rows: [][]string{{"Yosemite"}}}, nil
}

func (s *stubSandbox) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

// manualTicks hands out one unbuffered channel, so every send completes only once
// the round timer has taken the tick.
type manualTicks struct {
	ch chan time.Time
}

func newManualTicks() *manualTicks {
	return &manualTicks{ch: make(chan time.Time)}
}

func (m *manualTicks) Create(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() {}
}

func (m *manualTicks) advance(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case m.ch <- time.Now():
		case <-time.After(2 * time.Second):
			t.Fatalf("round timer did not take tick %d", i+1)
		}
	}
}

// journal is a shared, ordered log of everything the fakes observe.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type recordingHub struct {
	journal *journal

	mu     sync.Mutex
	sinks  map[string]map[Sink]struct{}
	events map[string][]Event
}

func newRecordingHub(j *journal) *recordingHub {
	return &recordingHub{
		journal: j,
		sinks:   make(map[string]map[Sink]struct{}),
		events:  make(map[string][]Event),
	}
}

func (h *recordingHub) Attach(code string, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sinks[code] == nil {
		h.sinks[code] = make(map[Sink]struct{})
	}
	h.sinks[code][sink] = struct{}{}
}

func (h *recordingHub) Detach(code string, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sinks[code], sink)
}

func (h *recordingHub) Broadcast(code string, ev Event) {
	h.mu.Lock()
	h.events[code] = append(h.events[code], ev)
	sinks := make([]Sink, 0, len(h.sinks[code]))
	for sink := range h.sinks[code] {
		sinks = append(sinks, sink)
	}
	h.mu.Unlock()
	h.journal.add("broadcast:" + ev.Name)
	for _, sink := range sinks {
		sink.Deliver(ev)
	}
}

func (h *recordingHub) names(code string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.events[code]))
	for _, ev := range h.events[code] {
		names = append(names, ev.Name)
	}
	return names
}

func (h *recordingHub) last(code, name string) (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	events := h.events[code]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Name == name {
			return events[i], true
		}
	}
	return Event{}, false
}

type recordingSink struct {
	label   string
	journal *journal

	mu     sync.Mutex
	events []Event
}

func newRecordingSink(label string, j *journal) *recordingSink {
	return &recordingSink{label: label, journal: j}
}

func (s *recordingSink) Deliver(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	if s.journal != nil {
		s.journal.add(s.label + ":" + ev.Name)
	}
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		names = append(names, ev.Name)
	}
	return names
}

type recordingRecorder struct {
	mu    sync.Mutex
	kinds []string
}

func (r *recordingRecorder) Record(_ string, kind string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *recordingRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.kinds...)
}

type fixture struct {
	registry *Registry
	content  *stubContent
	sandbox  *stubSandbox
	hub      *recordingHub
	ticks    *manualTicks
	recorder *recordingRecorder
	journal  *journal
}

func testSettings() Settings {
	return Settings{
		RoundTicks:     8,
		HintSegments:   4,
		TickInterval:   time.Millisecond,
		MaxInputLength: 1000,
	}
}

func newFixture(t *testing.T, hintCount int) *fixture {
	t.Helper()
	j := &journal{}
	f := &fixture{
		content:  newStubContent("Lake Tahoe", hintCount),
		sandbox:  &stubSandbox{},
		hub:      newRecordingHub(j),
		ticks:    newManualTicks(),
		recorder: &recordingRecorder{},
		journal:  j,
	}
	f.registry = NewRegistry(Deps{
		Content:     f.content,
		Sandbox:     f.sandbox,
		Broadcaster: f.hub,
		Ticks:       f.ticks,
		Recorder:    f.recorder,
		Settings:    testSettings(),
	})
	return f
}

// hostedRoom opens a room with a connected host.
func (f *fixture) hostedRoom(t *testing.T) (*Room, ParticipantID, *recordingSink) {
	t.Helper()
	room, host, err := f.registry.HostRoom(context.Background(), "host")
	require.NoError(t, err)
	sink := newRecordingSink("host", f.journal)
	_, err = room.Connect(host, sink)
	require.NoError(t, err)
	return room, host, sink
}

// finishRound drives the active round to its end and waits for the timer to exit.
func (f *fixture) finishRound(t *testing.T, room *Room) {
	t.Helper()
	f.ticks.advance(t, room.settings.RoundTicks)
	waitTimers(t, room)
}

func waitTimers(t *testing.T, room *Room) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		room.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("round timer did not finish")
	}
}

var errStub = errors.New("stub failure")
