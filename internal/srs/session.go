package srs

import (
	"fmt"

	"github.com/vytor/flashdeck/internal/models"
)

const (
	// MaxRequeues is how often one item may be re-inserted per session.
	MaxRequeues = 2
	// requeueWindow is the number of slots after the current one a failed
	// item may land in.
	requeueWindow = 4
)

// Entry is one slot of a study session queue.
type Entry struct {
	Item models.Item `json:"item"`
	// Reversed shows the back and asks for the front.
	Reversed bool `json:"reversed"`
	// ReStudy marks a re-inserted copy; its rating is never durable.
	ReStudy bool `json:"re_study"`
}

// Outcome describes what a rating did to the session.
type Outcome struct {
	Entry   Entry   `json:"entry"`
	Quality Quality `json:"quality"`
	// Durable is true when the caller must run the scheduler and log the review.
	Durable  bool `json:"durable"`
	Requeued bool `json:"requeued"`
}

// Summary aggregates ratings given during a session.
type Summary struct {
	Reviewed      int     `json:"reviewed"`
	Correct       int     `json:"correct"`
	AverageRating float64 `json:"average_rating"`
	Remaining     int     `json:"remaining"`
}

// Session is the live queue of a study or cram session. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	entries  []Entry
	pos      int
	cram     bool
	requeues map[int64]int
	// rated holds items whose durable rating has been given.
	rated   map[int64]bool
	ratings []Quality
}

// NewSession starts a session over items. In cram mode no rating is durable
// and failed items are not re-queued.
func NewSession(items []models.Item, cram bool) *Session {
	entries := make([]Entry, len(items))
	for i, it := range items {
		entries[i] = Entry{Item: it}
	}
	return newSession(entries, cram)
}

// NewReversedSession is NewSession with a reversed twin of every item,
// the whole queue shuffled. Only the first rating of an item, in either
// direction, is durable.
func NewReversedSession(items []models.Item, cram bool, rng Rand) *Session {
	entries := make([]Entry, 0, 2*len(items))
	for _, it := range items {
		entries = append(entries, Entry{Item: it}, Entry{Item: it, Reversed: true})
	}
	rng.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
	return newSession(entries, cram)
}

func newSession(entries []Entry, cram bool) *Session {
	return &Session{
		entries:  entries,
		cram:     cram,
		requeues: make(map[int64]int),
		rated:    make(map[int64]bool),
	}
}

func (s *Session) Cram() bool { return s.cram }

// Current returns the entry awaiting a rating.
func (s *Session) Current() (Entry, bool) {
	if s.pos >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[s.pos], true
}

// Position is the zero-based index of the current entry.
func (s *Session) Position() int { return s.pos }

// Len is the total number of entries, including re-queued copies.
func (s *Session) Len() int { return len(s.entries) }

func (s *Session) Remaining() int { return len(s.entries) - s.pos }

func (s *Session) Done() bool { return s.pos >= len(s.entries) }

// Durable reports whether rating e would reschedule its item: never in cram
// mode, never for re-study copies, and only once per item.
func (s *Session) Durable(e Entry) bool {
	return !s.cram && !e.ReStudy && !s.rated[e.Item.ID]
}

// Rate records quality for the current entry and advances. A failed rating
// outside cram mode re-inserts the item 1 to 4 slots ahead (or at the end),
// at most MaxRequeues times per item.
func (s *Session) Rate(quality Quality, rng Rand) (Outcome, error) {
	if !quality.IsValid() {
		return Outcome{}, fmt.Errorf("%w: got %d", ErrInvalidQuality, int(quality))
	}
	entry, ok := s.Current()
	if !ok {
		return Outcome{}, ErrNoSessionItem
	}

	out := Outcome{
		Entry:   entry,
		Quality: quality,
		Durable: s.Durable(entry),
	}
	if out.Durable {
		s.rated[entry.Item.ID] = true
	}
	s.ratings = append(s.ratings, quality)

	if !quality.Passed() && !s.cram && s.requeues[entry.Item.ID] < MaxRequeues {
		s.requeues[entry.Item.ID]++
		at := s.pos + 1 + rng.Intn(requeueWindow)
		if at > len(s.entries) {
			at = len(s.entries)
		}
		copied := Entry{Item: entry.Item, Reversed: entry.Reversed, ReStudy: true}
		s.entries = append(s.entries, Entry{})
		copy(s.entries[at+1:], s.entries[at:])
		s.entries[at] = copied
		out.Requeued = true
	}

	s.pos++
	return out, nil
}

// Replace swaps the stored item of every pending entry with the same ID, so
// re-study copies show the state written by the durable rating.
func (s *Session) Replace(item models.Item) {
	for i := s.pos; i < len(s.entries); i++ {
		if s.entries[i].Item.ID == item.ID {
			s.entries[i].Item = item
		}
	}
}

func (s *Session) Summary() Summary {
	sum := Summary{Reviewed: len(s.ratings), Remaining: s.Remaining()}
	total := 0
	for _, q := range s.ratings {
		total += int(q)
		if q.Passed() {
			sum.Correct++
		}
	}
	if sum.Reviewed > 0 {
		sum.AverageRating = float64(total) / float64(sum.Reviewed)
	}
	return sum
}
