package game

type ParticipantView struct {
	DisplayName string   `json:"displayName"`
	Status      Presence `json:"status"`
	IsHost      bool     `json:"isHost"`
}

// JoinSnapshot is everything a (re)connecting participant needs to render the room.
type JoinSnapshot struct {
	Code          string            `json:"code"`
	Participants  []ParticipantView `json:"participants"`
	Status        Phase             `json:"status"`
	Round         int               `json:"round"`
	Countdown     int               `json:"countdown"`
	RevealedHints []Hint            `json:"revealedHints"`
	MyQueryCount  int               `json:"myQueryCount"`
	IsHost        bool              `json:"isHost"`
	Summary       *EndRoundPayload  `json:"summary,omitempty"`
}

func (r *Room) snapshotLocked(p *Participant) JoinSnapshot {
	snap := JoinSnapshot{
		Code:          r.code,
		Participants:  r.participantViewsLocked(),
		Status:        r.phase,
		Round:         r.round,
		Countdown:     r.countdown,
		RevealedHints: append([]Hint(nil), r.given...),
		MyQueryCount:  p.QueryCount,
		IsHost:        p.IsHost,
	}
	if snap.RevealedHints == nil {
		snap.RevealedHints = []Hint{}
	}
	if r.phase == PhaseRoundBreak {
		summary := r.summaryLocked()
		snap.Summary = &summary
	}
	return snap
}

func (r *Room) participantViewsLocked() []ParticipantView {
	views := make([]ParticipantView, 0, len(r.participants.list))
	for _, p := range r.participants.list {
		views = append(views, ParticipantView{
			DisplayName: p.DisplayName,
			Status:      p.Presence,
			IsHost:      p.IsHost,
		})
	}
	return views
}

func (r *Room) summaryLocked() EndRoundPayload {
	return EndRoundPayload{
		RankedSummary: rankParticipants(r.participants.list),
		CorrectAnswer: r.answerDisplay,
	}
}

// GuessResultEvent builds the reply for a guess submitted by one participant.
func GuessResultEvent(correct bool, err error) Event {
	payload := GuessResultPayload{Correct: correct}
	if err != nil {
		payload = GuessResultPayload{Error: err.Error()}
	}
	return Event{Name: EventGuessResult, Payload: payload}
}

// QueryResultEvent builds the reply for a query; sandbox errors are passed through verbatim.
func QueryResultEvent(result QueryResult, err error) Event {
	if err != nil {
		return Event{Name: EventQueryResult, Payload: QueryResultPayload{Error: err.Error()}}
	}
	rows := result.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return Event{Name: EventQueryResult, Payload: QueryResultPayload{Rows: rows, Columns: result.Columns}}
}
