package services

import (
	"math/rand"
	"sync"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// Clock resolves "now" and the user's calendar day.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock reads wall time in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Location: loc}
}

// Today is the calendar date of now in the clock's location.
func (c Clock) Today() models.Date {
	return models.DateOf(c.Now().In(c.Location))
}

// LockedRand is a *rand.Rand safe for concurrent use by request handlers.
type LockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

func (r *LockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(n, swap)
}
