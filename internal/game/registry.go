package game

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Deps are the collaborators shared by every room of a registry.
type Deps struct {
	Content     ContentProvider
	Sandbox     QuerySandbox
	Broadcaster Broadcaster
	Ticks       TickSource
	Recorder    Recorder
	Settings    Settings
}

type RoomSummary struct {
	Code         string `json:"code"`
	Phase        Phase  `json:"phase"`
	Participants int    `json:"participants"`
}

// Registry owns the open rooms of the process, keyed by code. Identifiers of
// closed rooms are reused oldest first before fresh ones are issued.
type Registry struct {
	deps Deps

	mu       sync.Mutex
	nextID   int
	recycled []int
	rooms    map[string]*Room
	stopping bool
}

func NewRegistry(deps Deps) *Registry {
	defaults := DefaultSettings()
	if deps.Settings.RoundTicks <= 0 {
		deps.Settings.RoundTicks = defaults.RoundTicks
	}
	if deps.Settings.HintSegments <= 0 {
		deps.Settings.HintSegments = defaults.HintSegments
	}
	if deps.Settings.TickInterval <= 0 {
		deps.Settings.TickInterval = defaults.TickInterval
	}
	if deps.Settings.MaxInputLength <= 0 {
		deps.Settings.MaxInputLength = defaults.MaxInputLength
	}
	if deps.Broadcaster == nil {
		deps.Broadcaster = nopBroadcaster{}
	}
	if deps.Ticks == nil {
		deps.Ticks = SystemTicks()
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	return &Registry{
		deps:  deps,
		rooms: make(map[string]*Room),
	}
}

// HostRoom opens a new room in the lobby phase, seeded with its first round of content.
// HostRoom opens a room with hostName already seated as its host, so the room
// is never reachable by code without one.
func (g *Registry) HostRoom(ctx context.Context, hostName string) (*Room, ParticipantID, error) {
	answer, hints, err := fetchContent(ctx, g.deps.Content)
	if err != nil {
		return nil, "", err
	}

	g.mu.Lock()
	if g.stopping {
		g.mu.Unlock()
		return nil, "", ErrShuttingDown
	}
	id, err := g.allocateLocked()
	if err != nil {
		g.mu.Unlock()
		return nil, "", err
	}
	code, _ := EncodeCode(id)
	room := newRoom(id, code, g.deps, g.releaseRoom)
	room.seedLocked(answer, hints)
	host := room.participants.add(hostName, true)
	room.host = host
	g.rooms[code] = room
	open := len(g.rooms)
	g.mu.Unlock()

	g.deps.Recorder.Record(code, "room_opened", map[string]any{"id": id})
	log.Info().Str("room", code).Int("id", id).Int("open_rooms", open).Msg("room opened")
	return room, host.ID, nil
}

func (g *Registry) GetByCode(code string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[NormalizeCode(code)]
	return room, ok
}

func (g *Registry) AddParticipantByCode(code, displayName string) (*Room, ParticipantID, error) {
	room, ok := g.GetByCode(code)
	if !ok {
		return nil, "", ErrRoomNotFound
	}
	id, err := room.AddParticipant(displayName)
	if err != nil {
		if err == ErrRoomClosed {
			return nil, "", ErrRoomNotFound
		}
		return nil, "", err
	}
	return room, id, nil
}

// CloseRoom removes room from the open set and recycles its identifier. Rooms call
// it exactly once when they reach the closed phase; a second call reports ErrRoomNotOpen.
func (g *Registry) CloseRoom(room *Room) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	current, ok := g.rooms[room.code]
	if !ok || current != room {
		return ErrRoomNotOpen
	}
	delete(g.rooms, room.code)
	g.recycled = append(g.recycled, room.id)
	return nil
}

func (g *Registry) OpenRooms() []RoomSummary {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.Unlock()

	list := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		room.mu.Lock()
		list = append(list, RoomSummary{
			Code:         room.code,
			Phase:        room.phase,
			Participants: len(room.participants.list),
		})
		room.mu.Unlock()
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Code < list[j].Code
	})
	return list
}

// Shutdown refuses new rooms and rounds, then waits for every running round
// timer or for ctx to end.
func (g *Registry) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.stopping = true
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, room := range rooms {
			room.Stop()
		}
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Registry) allocateLocked() (int, error) {
	if len(g.recycled) > 0 {
		id := g.recycled[0]
		g.recycled = g.recycled[1:]
		return id, nil
	}
	if g.nextID >= MaxRooms {
		return 0, ErrRegistryFull
	}
	id := g.nextID
	g.nextID++
	return id, nil
}

func (g *Registry) releaseRoom(room *Room) {
	if err := g.CloseRoom(room); err != nil {
		log.Error().Err(err).Str("room", room.code).Msg("close room failed")
		return
	}
	log.Info().Str("room", room.code).Int("id", room.id).Msg("room closed")
}
