package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"unicode/utf8"
)

// Room is one game instance. All state below mu is serialized by it, and every
// broadcast for the room is issued while mu is held so observers see events in
// mutation order.
type Room struct {
	id       int
	code     string
	settings Settings
	content  ContentProvider
	sandbox  QuerySandbox
	hub      Broadcaster
	ticks    TickSource
	recorder Recorder
	release  func(*Room)

	mu            sync.Mutex
	participants  roster
	host          *Participant
	phase         Phase
	round         int
	countdown     int
	answer        string
	answerDisplay string
	pool          []Hint
	given         []Hint
	closing       bool
	timerActive   bool
	timerDone     chan struct{}
	stopping      bool
}

func newRoom(id int, code string, deps Deps, release func(*Room)) *Room {
	return &Room{
		id:       id,
		code:     code,
		settings: deps.Settings,
		content:  deps.Content,
		sandbox:  deps.Sandbox,
		hub:      deps.Broadcaster,
		ticks:    deps.Ticks,
		recorder: deps.Recorder,
		release:  release,
		phase:    PhaseLobby,
	}
}

func (r *Room) ID() int {
	return r.id
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *Room) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

// Countdown returns the ticks left in the active round.
func (r *Room) Countdown() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countdown
}

func (r *Room) Closing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closing
}

// HintCounts returns the sizes of the unrevealed pool and the given-hints log.
func (r *Room) HintCounts() (pool int, given int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pool), len(r.given)
}

func (r *Room) RevealedHints() []Hint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Hint(nil), r.given...)
}

// SetHost registers the room creator. It succeeds once per room.
func (r *Room) SetHost(displayName string) (ParticipantID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseClosed {
		return "", ErrRoomClosed
	}
	if r.host != nil {
		return "", ErrHostAlreadySet
	}
	p := r.participants.add(displayName, true)
	r.host = p
	return p.ID, nil
}

func (r *Room) AddParticipant(displayName string) (ParticipantID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseClosed {
		return "", ErrRoomClosed
	}
	return r.participants.add(displayName, false).ID, nil
}

// RemoveParticipant drops a non-host participant. The host is fixed for the room's lifetime.
func (r *Room) RemoveParticipant(id ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.participants.find(id)
	if p == nil || p.IsHost {
		return false
	}
	return r.participants.remove(id)
}

// FindParticipant returns a copy of the participant's current state.
func (r *Room) FindParticipant(id ParticipantID) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.participants.find(id)
	if p == nil {
		return Participant{}, false
	}
	return *p, true
}

func (r *Room) IndexOf(id ParticipantID) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	index := r.participants.indexOf(id)
	return index, index >= 0
}

func (r *Room) Validate(id ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.participants.find(id) != nil
}

func (r *Room) IsHost(id ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host != nil && id != "" && r.host.ID == id
}

func (r *Room) Participants() []ParticipantView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.participantViewsLocked()
}

func (r *Room) SnapshotForJoin(id ParticipantID) (JoinSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.participants.find(id)
	if p == nil {
		return JoinSnapshot{}, ErrNotAuthenticated
	}
	return r.snapshotLocked(p), nil
}

// Connect attaches one live connection for id. Other participants are told about a
// join or reconnect before sink receives its snapshot and starts receiving broadcasts.
func (r *Room) Connect(id ParticipantID, sink Sink) (JoinSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.participants.find(id)
	if p == nil {
		return JoinSnapshot{}, ErrNotAuthenticated
	}
	if r.phase == PhaseClosed {
		return JoinSnapshot{}, ErrRoomClosed
	}
	switch p.attach() {
	case attachJoined:
		r.broadcastLocked(EventUserJoined, UserJoinedPayload{DisplayName: p.DisplayName})
	case attachReconnected:
		r.broadcastLocked(EventUserReconnected, UserIndexPayload{Index: r.participants.indexOf(id)})
	}
	r.closing = false
	snap := r.snapshotLocked(p)
	if sink != nil {
		sink.Deliver(Event{Name: EventJoinSnapshot, Payload: snap})
		r.hub.Attach(r.code, sink)
	}
	return snap, nil
}

// Disconnect detaches one live connection. Unknown identities are ignored.
func (r *Room) Disconnect(id ParticipantID, sink Sink) {
	r.mu.Lock()
	if sink != nil {
		r.hub.Detach(r.code, sink)
	}
	p := r.participants.find(id)
	if p == nil || r.phase == PhaseClosed {
		r.mu.Unlock()
		return
	}
	if p.detach() {
		r.broadcastLocked(EventUserDisconnected, UserIndexPayload{Index: r.participants.indexOf(id)})
	}
	closed := false
	if !r.participants.anyConnected() {
		switch r.phase {
		case PhaseRoundActive:
			r.closing = true
		case PhaseLobby, PhaseRoundBreak:
			closed = r.closeLocked("empty")
		}
	}
	r.mu.Unlock()
	if closed {
		r.release(r)
	}
}

func (r *Room) Start(id ParticipantID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.authorizeHostLocked(id); err != nil {
		return err
	}
	if r.phase != PhaseLobby {
		return ErrWrongPhase
	}
	if r.stopping {
		return ErrRoomClosed
	}
	r.phase = PhaseRoundActive
	r.round = 1
	r.broadcastLocked(EventStartGame, nil)
	r.recorder.Record(r.code, "round_started", map[string]any{"round": r.round})
	r.startTimerLocked()
	return nil
}

// NextRound re-seeds the room and restarts the timer. Content is fetched without
// holding the room lock, so the phase is checked again before applying it.
func (r *Room) NextRound(ctx context.Context, id ParticipantID) error {
	r.mu.Lock()
	err := r.authorizeHostLocked(id)
	if err == nil && r.phase != PhaseRoundBreak {
		err = ErrWrongPhase
	}
	if err == nil && r.stopping {
		err = ErrRoomClosed
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}

	answer, hints, err := fetchContent(ctx, r.content)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopping {
		return ErrRoomClosed
	}
	if r.phase != PhaseRoundBreak || r.timerActive {
		return ErrWrongPhase
	}
	r.participants.resetRound()
	r.seedLocked(answer, hints)
	r.round++
	r.phase = PhaseRoundActive
	r.broadcastLocked(EventBeginRound, nil)
	r.recorder.Record(r.code, "round_started", map[string]any{"round": r.round})
	r.startTimerLocked()
	return nil
}

func (r *Room) EndGame(id ParticipantID) error {
	r.mu.Lock()
	if err := r.authorizeHostLocked(id); err != nil {
		r.mu.Unlock()
		return err
	}
	if r.phase != PhaseRoundBreak {
		r.mu.Unlock()
		return ErrWrongPhase
	}
	closed := r.closeLocked("ended")
	if closed {
		r.broadcastLocked(EventEndGame, nil)
	}
	r.mu.Unlock()
	if closed {
		r.release(r)
	}
	return nil
}

// SubmitGuess compares a trimmed, case-folded guess with the round's answer.
// The participant's guessed flag follows the latest guess.
func (r *Room) SubmitGuess(id ParticipantID, text string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.participants.find(id)
	if p == nil {
		return false, ErrNotAuthenticated
	}
	if r.phase != PhaseRoundActive {
		return false, ErrWrongPhase
	}
	if err := checkInput(text, r.settings.MaxInputLength); err != nil {
		return false, err
	}
	correct := normalizeAnswer(text) == r.answer
	p.GuessedCorrectly = correct
	return correct, nil
}

// SubmitQuery counts the attempt and forwards text to the sandbox. The sandbox call
// runs outside the room lock; its errors are returned unchanged.
func (r *Room) SubmitQuery(ctx context.Context, id ParticipantID, text string) (QueryResult, error) {
	r.mu.Lock()
	p := r.participants.find(id)
	if p == nil {
		r.mu.Unlock()
		return QueryResult{}, ErrNotAuthenticated
	}
	if r.phase != PhaseRoundActive {
		r.mu.Unlock()
		return QueryResult{}, ErrWrongPhase
	}
	if err := checkInput(text, r.settings.MaxInputLength); err != nil {
		r.mu.Unlock()
		return QueryResult{}, err
	}
	p.QueryCount++
	r.mu.Unlock()

	return r.sandbox.Run(ctx, text)
}

// Wait blocks until the most recently started round timer has finished.
func (r *Room) Wait() {
	r.mu.Lock()
	done := r.timerDone
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Stop refuses further rounds for the room and waits for the running timer.
func (r *Room) Stop() {
	r.mu.Lock()
	r.stopping = true
	r.mu.Unlock()
	r.Wait()
}

func (r *Room) authorizeHostLocked(id ParticipantID) error {
	p := r.participants.find(id)
	if p == nil {
		return ErrNotAuthenticated
	}
	if r.phase == PhaseClosed {
		return ErrRoomClosed
	}
	if !p.IsHost {
		return ErrNotHost
	}
	return nil
}

func (r *Room) seedLocked(answer string, hints []Hint) {
	r.answerDisplay = strings.TrimSpace(answer)
	r.answer = normalizeAnswer(answer)
	r.pool = append([]Hint(nil), hints...)
	r.given = nil
	r.countdown = r.settings.RoundTicks
}

// revealHintLocked moves one random hint from the pool into the given log.
func (r *Room) revealHintLocked() {
	if len(r.pool) == 0 {
		return
	}
	i := rand.IntN(len(r.pool))
	hint := r.pool[i]
	r.pool = append(r.pool[:i], r.pool[i+1:]...)
	r.given = append(r.given, hint)
	r.broadcastLocked(EventHint, hint)
}

func (r *Room) closeLocked(reason string) bool {
	if r.phase == PhaseClosed {
		return false
	}
	r.phase = PhaseClosed
	r.closing = false
	r.recorder.Record(r.code, "room_closed", map[string]any{"reason": reason, "round": r.round})
	return true
}

func (r *Room) broadcastLocked(name string, payload any) {
	r.hub.Broadcast(r.code, Event{Name: name, Payload: payload})
}

func fetchContent(ctx context.Context, content ContentProvider) (string, []Hint, error) {
	answer, hints, err := content.NextAnswerAndHints(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("fetching round content: %w", err)
	}
	if len(hints) == 0 {
		return "", nil, ErrNoHints
	}
	return answer, hints, nil
}

func checkInput(text string, maxLength int) error {
	if maxLength > 0 && utf8.RuneCountInString(text) > maxLength {
		return ErrInputTooLarge
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	return nil
}

func normalizeAnswer(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
