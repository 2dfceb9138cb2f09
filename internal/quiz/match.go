package quiz

import (
	"fmt"

	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/srs"
)

const (
	// MatchPairs is the number of pairs dealt in a match game.
	MatchPairs = 6
	// MinMatchPairs is the fewest playable items a match game needs.
	MinMatchPairs = 4
)

type matchPair struct {
	itemID int64
	front  string
	back   string
}

// Match is a game of pairing fronts with backs. Both columns are shuffled
// independently and addressed by position. It is not safe for concurrent use.
type Match struct {
	pairs   []matchPair
	fronts  []int
	backs   []int
	matched []bool
	errors  int
}

// NewMatch deals up to MatchPairs random non-suspended items.
func NewMatch(items []models.Item, rng srs.Rand) (*Match, error) {
	playable := make([]models.Item, 0, len(items))
	for _, it := range items {
		if it.Status != models.StatusSuspended {
			playable = append(playable, it)
		}
	}
	if len(playable) < MinMatchPairs {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughItems, MinMatchPairs, len(playable))
	}

	picked := shuffled(playable, rng)[:min(MatchPairs, len(playable))]
	m := &Match{
		pairs:   make([]matchPair, len(picked)),
		fronts:  make([]int, len(picked)),
		backs:   make([]int, len(picked)),
		matched: make([]bool, len(picked)),
	}
	for i, it := range picked {
		m.pairs[i] = matchPair{itemID: it.ID, front: it.Front, back: it.Back}
		m.fronts[i] = i
		m.backs[i] = i
	}
	rng.Shuffle(len(m.fronts), func(i, j int) { m.fronts[i], m.fronts[j] = m.fronts[j], m.fronts[i] })
	rng.Shuffle(len(m.backs), func(i, j int) { m.backs[i], m.backs[j] = m.backs[j], m.backs[i] })
	return m, nil
}

// Len is the number of pairs.
func (m *Match) Len() int { return len(m.pairs) }

// Front returns the text at position i of the front column and whether its
// pair has been matched.
func (m *Match) Front(i int) (string, bool) {
	p := m.fronts[i]
	return m.pairs[p].front, m.matched[p]
}

// Back is Front for the back column.
func (m *Match) Back(i int) (string, bool) {
	p := m.backs[i]
	return m.pairs[p].back, m.matched[p]
}

// Try pairs front position f with back position b. A correct pair is marked
// matched and its item ID returned; a wrong one counts as an error. Backs
// with identical text are interchangeable.
func (m *Match) Try(f, b int) (int64, bool, error) {
	if f < 0 || f >= len(m.fronts) || b < 0 || b >= len(m.backs) {
		return 0, false, fmt.Errorf("%w: front %d, back %d", ErrMatchPosition, f, b)
	}
	fp, bp := m.fronts[f], m.backs[b]
	if m.matched[fp] || m.matched[bp] {
		return 0, false, ErrAlreadyMatched
	}

	if fp != bp && m.pairs[fp].back != m.pairs[bp].back {
		m.errors++
		return 0, false, nil
	}
	if fp != bp {
		// Same text, different item: hand the back positions over so each
		// column still pairs one to one.
		for i, p := range m.backs {
			if p == fp {
				m.backs[i], m.backs[b] = bp, fp
				break
			}
		}
	}
	m.matched[fp] = true
	return m.pairs[fp].itemID, true, nil
}

// Matched is the number of pairs found so far.
func (m *Match) Matched() int {
	n := 0
	for _, ok := range m.matched {
		if ok {
			n++
		}
	}
	return n
}

// Errors is the number of wrong pairings.
func (m *Match) Errors() int { return m.errors }

func (m *Match) Done() bool { return m.Matched() == len(m.pairs) }
