package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the scheduling lifecycle stage of an item.
type Status string

const (
	StatusNew       Status = "new"
	StatusLearning  Status = "learning"
	StatusReview    Status = "review"
	StatusSuspended Status = "suspended"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusLearning, StatusReview, StatusSuspended:
		return true
	}
	return false
}

// ParseStatus returns the status for its persisted name.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid status: %q", s)
	}
	return st, nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("invalid status: %s", data)
	}
	st, err := ParseStatus(str)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

func (s Status) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid status: %q", string(s))
	}
	return string(s), nil
}

func (s *Status) Scan(src any) error {
	var str string
	switch v := src.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}
	st, err := ParseStatus(str)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// MemoryState is the per-item scheduling state.
type MemoryState struct {
	Repetitions    int     `json:"repetitions"`
	EaseFactor     float64 `json:"ease_factor"`
	Interval       int     `json:"interval"`
	NextReviewDate Date    `json:"next_review_date"`
	Status         Status  `json:"status"`
}

// NewMemoryState returns the state of a freshly created item.
func NewMemoryState() MemoryState {
	return MemoryState{
		EaseFactor: DefaultEaseFactor,
		Status:     StatusNew,
	}
}

type Item struct {
	ID       int64    `json:"id"`
	DeckID   int64    `json:"deck_id"`
	Front    string   `json:"front"`
	Back     string   `json:"back"`
	Tags     []string `json:"tags"`
	Hint     string   `json:"hint,omitempty"`
	Favorite bool     `json:"favorite"`
	MemoryState
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemFilter narrows item listings. Zero values mean "any".
type ItemFilter struct {
	DeckID   int64
	Status   Status
	Favorite *bool
	Tag      string
	Limit    int
	Offset   int
}

type Deck struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeckSummary is a deck with its badge counts.
type DeckSummary struct {
	Deck
	ItemCount int `json:"item_count"`
	DueCount  int `json:"due_count"`
}

// ItemDraft carries the user-editable fields of an item.
type ItemDraft struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags"`
	Hint  string   `json:"hint"`
}
