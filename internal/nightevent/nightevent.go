// Package nightevent predicts the special event that plays overnight.
package nightevent

import (
	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
)

type Event string

const (
	None           Event = "none"
	ChildQuestion  Event = "child_question"
	RaccoonStump   Event = "raccoon_stump"
	Fairy          Event = "fairy"
	Witch          Event = "witch"
	Meteorite      Event = "meteorite"
	StoneOwl       Event = "stone_owl"
	StrangeCapsule Event = "strange_capsule"
)

// Predict picks tonight's event for the night after f.DaysPlayed. once
// may be nil; otherwise the stump and capsule flags are read from it and
// set on it when those events fire.
func Predict(s rng.SeedStrategy, f save.Facts, once *save.OnceFlags) Event {
	var flags save.OnceFlags
	if once != nil {
		flags = *once
	}
	night := f.DaysPlayed + 1
	today := f.Date()

	r := rng.New(rng.DaySaveSeed(s, night, f.GameID, 0, 0, 0))
	r.Skip(10)

	if f.WeddingToday {
		return None
	}
	if f.ChildEligible && r.NextDouble() < 0.05 {
		return ChildQuestion
	}
	if !flags.StumpFell && night > save.DaysPerSeason && r.NextDouble() < 0.2 {
		if once != nil {
			once.StumpFell = true
		}
		return RaccoonStump
	}
	if r.NextDouble() < 0.01 && today.Season != save.Winter {
		return Fairy
	}
	if r.NextDouble() < 0.01 && night > 20 {
		return Witch
	}
	if r.NextDouble() < 0.01 && night > 5 {
		return Meteorite
	}
	if r.NextDouble() < 0.005 {
		return StoneOwl
	}
	if r.NextDouble() < 0.008 && today.Year > 1 && !flags.CapsuleSeen {
		if once != nil {
			once.CapsuleSeen = true
		}
		return StrangeCapsule
	}
	return None
}

// Night is one predicted event. Day is the facts' day counter; the event
// plays the night after it.
type Night struct {
	Day   uint32 `json:"day"`
	Event Event  `json:"event"`
}

// PredictRange walks the nights from fromDay to toDay, carrying the
// once-per-save flags forward. Only nights with an event are returned.
func PredictRange(s rng.SeedStrategy, f save.Facts, fromDay, toDay uint32, once *save.OnceFlags) []Night {
	var flags save.OnceFlags
	if once != nil {
		flags = *once
	}
	var out []Night
	for d := fromDay; d <= toDay; d++ {
		if e := Predict(s, f.WithDay(d), &flags); e != None {
			out = append(out, Night{Day: d, Event: e})
		}
		if d == toDay {
			break
		}
	}
	if once != nil {
		*once = flags
	}
	return out
}
