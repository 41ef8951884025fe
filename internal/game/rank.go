package game

import "sort"

type SummaryEntry struct {
	Index            int    `json:"index"`
	DisplayName      string `json:"displayName"`
	QueryCount       int    `json:"queryCount"`
	GuessedCorrectly bool   `json:"guessedCorrectly"`
}

// rankParticipants orders correct guessers first, then everyone else, each group by
// ascending query count. Ties keep join order.
func rankParticipants(list []*Participant) []SummaryEntry {
	correct := make([]SummaryEntry, 0, len(list))
	incorrect := make([]SummaryEntry, 0, len(list))
	for i, p := range list {
		entry := SummaryEntry{
			Index:            i,
			DisplayName:      p.DisplayName,
			QueryCount:       p.QueryCount,
			GuessedCorrectly: p.GuessedCorrectly,
		}
		if p.GuessedCorrectly {
			correct = append(correct, entry)
		} else {
			incorrect = append(incorrect, entry)
		}
	}
	sort.SliceStable(correct, func(i, j int) bool {
		return correct[i].QueryCount < correct[j].QueryCount
	})
	sort.SliceStable(incorrect, func(i, j int) bool {
		return incorrect[i].QueryCount < incorrect[j].QueryCount
	})
	return append(correct, incorrect...)
}
