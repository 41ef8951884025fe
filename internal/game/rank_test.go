package game

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestRankParticipantsOrdersCorrectFirstThenFewestQueries(t *testing.T) {
	list := []*Participant{
		{DisplayName: "ana", GuessedCorrectly: true, QueryCount: 3},
		{DisplayName: "ben", GuessedCorrectly: false, QueryCount: 1},
		{DisplayName: "cal", GuessedCorrectly: true, QueryCount: 1},
		{DisplayName: "dee", GuessedCorrectly: false, QueryCount: 0},
	}

	got := rankParticipants(list)

	want := []SummaryEntry{
		{Index: 2, DisplayName: "cal", QueryCount: 1, GuessedCorrectly: true},
		{Index: 0, DisplayName: "ana", QueryCount: 3, GuessedCorrectly: true},
		{Index: 3, DisplayName: "dee", QueryCount: 0},
		{Index: 1, DisplayName: "ben", QueryCount: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestRankParticipantsKeepsJoinOrderOnTies(t *testing.T) {
	list := []*Participant{
		{DisplayName: "a", QueryCount: 2},
		{DisplayName: "b", QueryCount: 2},
		{DisplayName: "c", QueryCount: 2, GuessedCorrectly: true},
		{DisplayName: "d", QueryCount: 2, GuessedCorrectly: true},
	}

	got := rankParticipants(list)

	indexes := make([]int, 0, len(got))
	for _, entry := range got {
		indexes = append(indexes, entry.Index)
	}
	assert.Equal(t, []int{2, 3, 0, 1}, indexes)
}

func TestRankParticipantsEmpty(t *testing.T) {
	assert.Empty(t, rankParticipants(nil))
}
