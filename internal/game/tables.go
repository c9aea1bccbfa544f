package game

import (
	"fmt"
	"slices"

	"github.com/konkers/sdv-predict/internal/drop"
	"github.com/konkers/sdv-predict/internal/save"
)

// OmniGeodeID owns the treasure pool that other containers fall back to.
const OmniGeodeID = "(O)749"

// Geode is a crackable container with its drops already sorted by
// precedence.
type Geode struct {
	ID              string
	Name            string
	UseDefaultDrops bool
	Drops           []drop.Entry
	Treasures       []string
}

// Can is one garbage can's drop list: before_all, then the can's own items,
// then after_all.
type Can struct {
	ID         string
	BaseChance float32
	Drops      []drop.Entry
}

// Context is a location context's weather setup.
type Context struct {
	ID             string
	IgnoreCalendar bool
	Weather        []WeatherRule
}

type festivalKey struct {
	season save.Season
	day    int
}

// Tables is the immutable, validated game data every predictor reads.
// It is safe for concurrent use.
type Tables struct {
	geodes        map[string]*Geode
	cans          map[string]*Can
	contexts      map[string]*Context
	festivals     map[festivalKey]string
	greenRainDays []int
}

// Build turns merged raw data into Tables. Drop entries are validated and
// geode drops are precedence-sorted here, never at prediction time.
func Build(raw RawData) (*Tables, error) {
	t := &Tables{
		geodes:    make(map[string]*Geode, len(raw.Objects.Geodes)),
		cans:      make(map[string]*Can, len(raw.Garbage.Cans)),
		contexts:  make(map[string]*Context, len(raw.Contexts.Contexts)),
		festivals: make(map[festivalKey]string, len(raw.Calendar.Festivals)),
	}

	for _, g := range raw.Objects.Geodes {
		id, err := drop.ParseItemID(g.ID)
		if err != nil {
			return nil, fmt.Errorf("objects: %w", err)
		}
		geode := &Geode{ID: id, Name: g.Name, UseDefaultDrops: true}
		if g.UseDefaultDrops != nil {
			geode.UseDefaultDrops = *g.UseDefaultDrops
		}
		geode.Drops, err = buildEntries(g.Drops)
		if err != nil {
			return nil, fmt.Errorf("objects %s: %w", id, err)
		}
		drop.SortByPrecedence(geode.Drops)
		for _, s := range g.Treasures {
			item, err := drop.ParseItemID(s)
			if err != nil {
				return nil, fmt.Errorf("objects %s treasures: %w", id, err)
			}
			geode.Treasures = append(geode.Treasures, item)
		}
		t.geodes[id] = geode
	}
	if omni, ok := t.geodes[OmniGeodeID]; ok {
		for _, g := range t.geodes {
			if len(g.Treasures) == 0 {
				g.Treasures = omni.Treasures
			}
		}
	}

	defaultBase := 0.0
	if raw.Garbage.DefaultBaseChance != nil {
		defaultBase = *raw.Garbage.DefaultBaseChance
	}
	before, err := buildEntries(raw.Garbage.BeforeAll)
	if err != nil {
		return nil, fmt.Errorf("garbage before_all: %w", err)
	}
	after, err := buildEntries(raw.Garbage.AfterAll)
	if err != nil {
		return nil, fmt.Errorf("garbage after_all: %w", err)
	}
	for id, c := range raw.Garbage.Cans {
		items, err := buildEntries(c.Items)
		if err != nil {
			return nil, fmt.Errorf("garbage can %s: %w", id, err)
		}
		base := defaultBase
		if c.BaseChance > 0 {
			base = c.BaseChance
		}
		drops := make([]drop.Entry, 0, len(before)+len(items)+len(after))
		drops = append(drops, before...)
		drops = append(drops, items...)
		drops = append(drops, after...)
		t.cans[id] = &Can{ID: id, BaseChance: float32(base), Drops: drops}
	}

	for id, c := range raw.Contexts.Contexts {
		t.contexts[id] = &Context{
			ID:             id,
			IgnoreCalendar: c.IgnoreCalendar,
			Weather:        slices.Clone(c.Weather),
		}
	}

	for _, f := range raw.Calendar.Festivals {
		s, err := save.ParseSeason(f.Season)
		if err != nil {
			return nil, fmt.Errorf("calendar festival %s: %w", f.ID, err)
		}
		t.festivals[festivalKey{s, f.Day}] = f.ID
	}
	t.greenRainDays = slices.Clone(raw.Calendar.GreenRainDays)

	return t, nil
}

func buildEntries(specs []drop.Spec) ([]drop.Entry, error) {
	out := make([]drop.Entry, 0, len(specs))
	for _, s := range specs {
		e, err := drop.NewEntry(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Geode looks up a container by qualified or bare id.
func (t *Tables) Geode(id string) (*Geode, bool) {
	q, err := drop.ParseItemID(id)
	if err != nil {
		return nil, false
	}
	g, ok := t.geodes[q]
	return g, ok
}

func (t *Tables) GeodeIDs() []string {
	return sortedKeys(t.geodes)
}

func (t *Tables) Can(id string) (*Can, bool) {
	c, ok := t.cans[id]
	return c, ok
}

func (t *Tables) CanIDs() []string {
	return sortedKeys(t.cans)
}

func (t *Tables) Context(id string) (*Context, bool) {
	c, ok := t.contexts[id]
	return c, ok
}

func (t *Tables) ContextIDs() []string {
	return sortedKeys(t.contexts)
}

// Festival reports the festival held on d, ignoring the year.
func (t *Tables) Festival(d save.Date) (string, bool) {
	id, ok := t.festivals[festivalKey{d.Season, d.Day}]
	return id, ok
}

// GreenRainDays are the summer days the year's green rain is chosen from,
// in data order.
func (t *Tables) GreenRainDays() []int {
	return t.greenRainDays
}

// DropConditions lists every condition string used by geode and garbage
// drops, in sorted order.
func (t *Tables) DropConditions() []string {
	set := make(map[string]struct{})
	for _, g := range t.geodes {
		for _, e := range g.Drops {
			set[e.Condition] = struct{}{}
		}
	}
	for _, c := range t.cans {
		for _, e := range c.Drops {
			set[e.Condition] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// WeatherConditions lists every condition string used by weather rules.
func (t *Tables) WeatherConditions() []string {
	set := make(map[string]struct{})
	for _, c := range t.contexts {
		for _, w := range c.Weather {
			set[w.Condition] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
