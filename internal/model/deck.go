package model

import "strconv"

// HiddenCard is the placeholder clients display in place of a vote
// that has not been revealed yet. It is never stored server-side.
const HiddenCard = "hidden"

// Deck is the allowed set of vote values: the Fibonacci-ish estimation
// scale plus the "unsure" and "break" cards.
var Deck = []string{"0", "0.5", "1", "2", "3", "5", "8", "13", "21", "34", "55", "89", "?", "coffee"}

var deckSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(Deck))
	for _, c := range Deck {
		s[c] = struct{}{}
	}
	return s
}()

func ValidCard(v string) bool {
	_, ok := deckSet[v]
	return ok
}

// NumericCard reports the card's numeric value; "?" and "coffee" are
// not numeric and are excluded from averages.
func NumericCard(v string) (float64, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// RoundSummary holds the facts derived from a revealed vote set.
// Average is nil when no numeric votes were cast.
type RoundSummary struct {
	VoteCount        int
	ParticipantCount int
	Average          *float64
	Consensus        bool
}
