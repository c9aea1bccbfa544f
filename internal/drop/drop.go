// Package drop resolves one drop-table entry into an item and a stack size.
package drop

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/konkers/sdv-predict/internal/rng"
)

// Unset marks a stack bound the data left empty.
const Unset = -1

var (
	ErrBadItemID = errors.New("bad item id")
	ErrNoItem    = errors.New("drop has neither item_id nor random_item_id")
)

// Spec is a drop record as written in game data. Pointers distinguish
// "absent" from zero.
type Spec struct {
	ID               string   `yaml:"id" json:"id"`
	ItemID           string   `yaml:"item_id,omitempty" json:"item_id,omitempty"`
	RandomItemIDs    []string `yaml:"random_item_id,omitempty" json:"random_item_id,omitempty"`
	MinStack         *int     `yaml:"min_stack,omitempty" json:"min_stack,omitempty"`
	MaxStack         *int     `yaml:"max_stack,omitempty" json:"max_stack,omitempty"`
	Condition        string   `yaml:"condition,omitempty" json:"condition,omitempty"`
	Chance           *float64 `yaml:"chance,omitempty" json:"chance,omitempty"`
	Precedence       int      `yaml:"precedence,omitempty" json:"precedence,omitempty"`
	IgnoreBaseChance bool     `yaml:"ignore_base_chance,omitempty" json:"ignore_base_chance,omitempty"`
}

// Entry is a validated, immutable drop. Exactly one of Item and Candidates
// is set.
type Entry struct {
	ID               string
	Item             string
	Candidates       []string
	MinStack         int
	MaxStack         int
	Condition        string
	Chance           float64
	Precedence       int
	IgnoreBaseChance bool
}

// Reward is what a prediction hands back.
type Reward struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

func (r Reward) String() string {
	return fmt.Sprintf("%s x%d", r.ItemID, r.Quantity)
}

// NewEntry validates a Spec. Item ids are qualified; chance defaults to 1.
func NewEntry(s Spec) (Entry, error) {
	e := Entry{
		ID:               s.ID,
		MinStack:         Unset,
		MaxStack:         Unset,
		Condition:        strings.TrimSpace(s.Condition),
		Chance:           1,
		Precedence:       s.Precedence,
		IgnoreBaseChance: s.IgnoreBaseChance,
	}
	switch {
	case s.ItemID != "" && len(s.RandomItemIDs) > 0:
		return Entry{}, fmt.Errorf("drop %q: item_id and random_item_id are exclusive", s.ID)
	case s.ItemID != "":
		id, err := ParseItemID(s.ItemID)
		if err != nil {
			return Entry{}, fmt.Errorf("drop %q: %w", s.ID, err)
		}
		e.Item = id
	case len(s.RandomItemIDs) > 0:
		e.Candidates = make([]string, 0, len(s.RandomItemIDs))
		for _, raw := range s.RandomItemIDs {
			id, err := ParseItemID(raw)
			if err != nil {
				return Entry{}, fmt.Errorf("drop %q: %w", s.ID, err)
			}
			e.Candidates = append(e.Candidates, id)
		}
	default:
		return Entry{}, fmt.Errorf("drop %q: %w", s.ID, ErrNoItem)
	}
	if s.MinStack != nil {
		e.MinStack = *s.MinStack
	}
	if s.MaxStack != nil {
		e.MaxStack = *s.MaxStack
	}
	if s.Chance != nil {
		e.Chance = *s.Chance
	}
	return e, nil
}

// ParseItemID accepts a qualified id like "(O)390" or a bare id, which is
// taken to be an object.
func ParseItemID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrBadItemID)
	}
	if strings.HasPrefix(s, "(") {
		end := strings.IndexByte(s, ')')
		if end < 2 || end == len(s)-1 {
			return "", fmt.Errorf("%w: %q", ErrBadItemID, raw)
		}
		if strings.ContainsAny(s[end+1:], "() \t") {
			return "", fmt.Errorf("%w: %q", ErrBadItemID, raw)
		}
		return s, nil
	}
	if strings.ContainsAny(s, "() \t") {
		return "", fmt.Errorf("%w: %q", ErrBadItemID, raw)
	}
	return "(O)" + s, nil
}

// Resolve picks the item (drawing only for candidate lists) and then the
// quantity.
func Resolve(e Entry, r *rng.Rng) (Reward, error) {
	item := e.Item
	if len(e.Candidates) > 0 {
		var err error
		item, err = rng.Choose(r, e.Candidates)
		if err != nil {
			return Reward{}, fmt.Errorf("drop %q: %w", e.ID, err)
		}
	}
	n, err := Quantity(e.MinStack, e.MaxStack, r)
	if err != nil {
		return Reward{}, fmt.Errorf("drop %q: %w", e.ID, err)
	}
	return Reward{ItemID: item, Quantity: n}, nil
}

// Quantity applies the host's stack rule. The branch order matters: a max of
// 2 or more draws even when min is larger, and the two fall-through cases
// both give 1.
func Quantity(minStack, maxStack int, r *rng.Rng) (int, error) {
	if minStack == Unset && maxStack == Unset {
		return 1, nil
	}
	if maxStack >= 2 {
		lo := max(minStack, 1)
		hi := max(maxStack, lo)
		return r.NextRange(lo, hi+1)
	}
	if minStack >= 2 {
		return minStack, nil
	}
	return 1, nil
}

// SortByPrecedence orders entries by ascending precedence, keeping data
// order among equals.
func SortByPrecedence(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Precedence, b.Precedence)
	})
}
