package game

import (
	"fmt"

	"github.com/google/uuid"
)

// ParticipantID is the capability token handed to a participant when they join.
type ParticipantID string

func newParticipantID() ParticipantID {
	return ParticipantID(uuid.NewString())
}

type Presence int

const (
	PresenceDisconnected Presence = iota
	PresenceConnected
	PresenceFirstConnecting
)

func (p Presence) String() string {
	switch p {
	case PresenceDisconnected:
		return "disconnected"
	case PresenceConnected:
		return "connected"
	case PresenceFirstConnecting:
		return "first-connecting"
	default:
		return "unknown"
	}
}

func (p Presence) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Presence) UnmarshalText(text []byte) error {
	for _, candidate := range []Presence{PresenceDisconnected, PresenceConnected, PresenceFirstConnecting} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown presence %q", text)
}

type attachKind int

const (
	attachNone attachKind = iota
	attachJoined
	attachReconnected
)

type Participant struct {
	ID               ParticipantID
	DisplayName      string
	IsHost           bool
	Presence         Presence
	QueryCount       int
	GuessedCorrectly bool
	connections      int
}

func newParticipant(displayName string, isHost bool) *Participant {
	return &Participant{
		ID:          newParticipantID(),
		DisplayName: displayName,
		IsHost:      isHost,
		Presence:    PresenceFirstConnecting,
	}
}

func (p *Participant) Connections() int {
	return p.connections
}

func (p *Participant) attach() attachKind {
	p.connections++
	switch p.Presence {
	case PresenceFirstConnecting:
		p.Presence = PresenceConnected
		return attachJoined
	case PresenceDisconnected:
		p.Presence = PresenceConnected
		return attachReconnected
	default:
		return attachNone
	}
}

// detach reports true when the last live connection went away.
func (p *Participant) detach() bool {
	if p.connections == 0 {
		return false
	}
	p.connections--
	if p.connections > 0 {
		return false
	}
	p.Presence = PresenceDisconnected
	return true
}

func (p *Participant) resetRound() {
	p.QueryCount = 0
	p.GuessedCorrectly = false
}

// roster keeps participants in join order.
type roster struct {
	list []*Participant
}

func (r *roster) add(displayName string, isHost bool) *Participant {
	p := newParticipant(displayName, isHost)
	r.list = append(r.list, p)
	return p
}

func (r *roster) remove(id ParticipantID) bool {
	index := r.indexOf(id)
	if index < 0 {
		return false
	}
	r.list = append(r.list[:index], r.list[index+1:]...)
	return true
}

func (r *roster) find(id ParticipantID) *Participant {
	if index := r.indexOf(id); index >= 0 {
		return r.list[index]
	}
	return nil
}

func (r *roster) indexOf(id ParticipantID) int {
	if id == "" {
		return -1
	}
	for i, p := range r.list {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *roster) anyConnected() bool {
	for _, p := range r.list {
		if p.connections > 0 {
			return true
		}
	}
	return false
}

func (r *roster) resetRound() {
	for _, p := range r.list {
		p.resetRound()
	}
}
