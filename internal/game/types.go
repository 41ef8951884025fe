package game

import (
	"context"
	"fmt"
	"time"
)

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseRoundActive
	PhaseRoundBreak
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseRoundActive:
		return "round-active"
	case PhaseRoundBreak:
		return "round-break"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseLobby, PhaseRoundActive, PhaseRoundBreak, PhaseClosed} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

const (
	EventHint             = "hint"
	EventBeginRound       = "begin_round"
	EventEndRound         = "end_round"
	EventUserJoined       = "user_joined"
	EventUserReconnected  = "user_reconnected"
	EventUserDisconnected = "user_disconnected"
	EventStartGame        = "start_game"
	EventEndGame          = "end_game"
	EventJoinSnapshot     = "join_snapshot"
	EventGuessResult      = "guess_result"
	EventQueryResult      = "query_result"
)

// Event is a named message pushed to the participants of one room.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"data,omitempty"`
}

type Hint struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type UserJoinedPayload struct {
	DisplayName string `json:"displayName"`
}

type UserIndexPayload struct {
	Index int `json:"index"`
}

type EndRoundPayload struct {
	RankedSummary []SummaryEntry `json:"rankedSummary"`
	CorrectAnswer string         `json:"correctAnswer"`
}

type GuessResultPayload struct {
	Correct bool   `json:"correct"`
	Error   string `json:"error,omitempty"`
}

type QueryResultPayload struct {
	Rows    [][]string `json:"rows,omitempty"`
	Columns []string   `json:"columns,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type QueryResult struct {
	Rows    [][]string
	Columns []string
}

// Sink receives events for a single live connection. Deliver must not block.
type Sink interface {
	Deliver(ev Event)
}

// Broadcaster fans events out to every sink attached to a room code.
type Broadcaster interface {
	Attach(code string, sink Sink)
	Detach(code string, sink Sink)
	Broadcast(code string, ev Event)
}

type ContentProvider interface {
	NextAnswerAndHints(ctx context.Context) (string, []Hint, error)
}

// QuerySandbox executes untrusted read-only queries and enforces its own time bound.
type QuerySandbox interface {
	Run(ctx context.Context, query string) (QueryResult, error)
}

// TickSource paces round timers.
type TickSource interface {
	Create(interval time.Duration) (<-chan time.Time, func())
}

// Recorder receives room lifecycle records. Implementations must not block.
type Recorder interface {
	Record(code string, kind string, payload any)
}

type Settings struct {
	RoundTicks     int
	HintSegments   int
	TickInterval   time.Duration
	MaxInputLength int
}

func DefaultSettings() Settings {
	return Settings{
		RoundTicks:     80,
		HintSegments:   4,
		TickInterval:   time.Second,
		MaxInputLength: 1000,
	}
}

type systemTicks struct{}

func (systemTicks) Create(interval time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}

// SystemTicks returns a TickSource backed by time.Ticker.
func SystemTicks() TickSource {
	return systemTicks{}
}

type nopBroadcaster struct{}

func (nopBroadcaster) Attach(string, Sink)     {}
func (nopBroadcaster) Detach(string, Sink)     {}
func (nopBroadcaster) Broadcast(string, Event) {}

type nopRecorder struct{}

func (nopRecorder) Record(string, string, any) {}
