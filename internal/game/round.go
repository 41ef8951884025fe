package game

import "github.com/rs/zerolog/log"

// startTimerLocked spawns the round timer unless one is already running or
// the room is stopping.
func (r *Room) startTimerLocked() {
	if r.timerActive || r.stopping {
		return
	}
	r.timerActive = true
	r.countdown = r.settings.RoundTicks
	done := make(chan struct{})
	r.timerDone = done
	go r.runTimer(done)
}

// runTimer reveals a hint, then ticks the countdown down segment by segment,
// revealing another hint between segments. It is never interrupted; the closing
// flag is only looked at once the whole sequence has run.
func (r *Room) runTimer(done chan struct{}) {
	defer close(done)

	ticks, stop := r.ticks.Create(r.settings.TickInterval)
	defer stop()

	r.mu.Lock()
	r.revealHintLocked()
	r.mu.Unlock()

	segments := segmentLengths(r.settings.RoundTicks, r.settings.HintSegments)
	for i, length := range segments {
		for t := 0; t < length; t++ {
			<-ticks
			r.mu.Lock()
			r.countdown--
			r.mu.Unlock()
		}
		if i < len(segments)-1 {
			r.mu.Lock()
			r.revealHintLocked()
			r.mu.Unlock()
		}
	}

	r.finishRound()
}

func (r *Room) finishRound() {
	r.mu.Lock()
	r.timerActive = false
	if r.closing {
		closed := r.closeLocked("empty")
		r.mu.Unlock()
		if closed {
			log.Info().Str("room", r.code).Msg("room emptied during round, closing")
			r.release(r)
		}
		return
	}
	if r.phase != PhaseRoundActive {
		r.mu.Unlock()
		return
	}
	r.phase = PhaseRoundBreak
	summary := r.summaryLocked()
	r.broadcastLocked(EventEndRound, summary)
	r.recorder.Record(r.code, "round_ended", map[string]any{
		"round":   r.round,
		"answer":  summary.CorrectAnswer,
		"summary": summary.RankedSummary,
	})
	round := r.round
	r.mu.Unlock()
	log.Debug().Str("room", r.code).Int("round", round).Msg("round ended")
}

// segmentLengths splits total ticks into n segments whose lengths differ by at most
// one and sum to total.
func segmentLengths(total, n int) []int {
	if n <= 0 {
		n = 1
	}
	if total < 0 {
		total = 0
	}
	base, extra := total/n, total%n
	lengths := make([]int, n)
	for i := range lengths {
		lengths[i] = base
		if i < extra {
			lengths[i]++
		}
	}
	return lengths
}
