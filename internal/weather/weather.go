// Package weather forecasts tomorrow's weather for a location context.
package weather

import (
	"errors"
	"fmt"

	"github.com/konkers/sdv-predict/internal/condition"
	"github.com/konkers/sdv-predict/internal/game"
	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
)

var ErrUnknownContext = errors.New("unknown location context")

type Weather string

const (
	Sun       Weather = "Sun"
	Rain      Weather = "Rain"
	Storm     Weather = "Storm"
	Snow      Weather = "Snow"
	Wind      Weather = "Wind"
	GreenRain Weather = "GreenRain"
	Festival  Weather = "Festival"
)

// Share is one weather's probability. Shares of a forecast sum to 1.
type Share struct {
	Weather     Weather `json:"weather"`
	Probability float64 `json:"probability"`
}

// Forecast is the weather for Date, the day after the facts' day. Reason
// names the calendar rule that fixed the weather, if any.
type Forecast struct {
	Context string    `json:"context"`
	Date    save.Date `json:"date"`
	Reason  string    `json:"reason,omitempty"`
	Shares  []Share   `json:"shares"`
}

// Most returns the likeliest weather; ties go to the earlier share.
func (f Forecast) Most() Weather {
	best := Share{Weather: Sun, Probability: -1}
	for _, s := range f.Shares {
		if s.Probability > best.Probability {
			best = s
		}
	}
	return best.Weather
}

// Probability is the total share of w.
func (f Forecast) Probability(w Weather) float64 {
	for _, s := range f.Shares {
		if s.Weather == w {
			return s.Probability
		}
	}
	return 0
}

func certain(ctx, reason string, d save.Date, w Weather) Forecast {
	return Forecast{Context: ctx, Date: d, Reason: reason, Shares: []Share{{w, 1}}}
}

// Predict forecasts tomorrow for contextID given today's facts.
func Predict(s rng.SeedStrategy, t *game.Tables, contextID string, f save.Facts) (Forecast, error) {
	c, ok := t.Context(contextID)
	if !ok {
		return Forecast{}, fmt.Errorf("%w: %s", ErrUnknownContext, contextID)
	}
	tomorrow := f.Date().Next()
	night := f.DaysPlayed + 1

	if !c.IgnoreCalendar {
		if id, ok := t.Festival(tomorrow); ok {
			return certain(c.ID, "festival:"+id, tomorrow, Festival), nil
		}
		if tomorrow.Season == save.Summer && tomorrow.Day%13 == 0 {
			return certain(c.ID, "summer_storm", tomorrow, Storm), nil
		}
		if tomorrow.Season == save.Summer {
			day, err := GreenRainDay(s, t, f.GameID, tomorrow.Year)
			if err != nil {
				return Forecast{}, err
			}
			if tomorrow.Day == day {
				return certain(c.ID, "green_rain", tomorrow, GreenRain), nil
			}
		}
		if night == 3 {
			return certain(c.ID, "third_day", tomorrow, Rain), nil
		}
		if tomorrow.Day == 1 || night <= 4 {
			return certain(c.ID, "first_day", tomorrow, Sun), nil
		}
	}

	out := Forecast{Context: c.ID, Date: tomorrow}
	add := func(w Weather, p float64) {
		for i := range out.Shares {
			if out.Shares[i].Weather == w {
				out.Shares[i].Probability += p
				return
			}
		}
		out.Shares = append(out.Shares, Share{w, p})
	}

	ctx := &condition.Context{Facts: f, Strategy: s}
	remaining := 1.0
	for _, rule := range c.Weather {
		p, err := condition.Weather.Eval(rule.Condition, ctx)
		if err != nil {
			return Forecast{}, fmt.Errorf("context %s rule %s: %w", c.ID, rule.ID, err)
		}
		if p <= 0 {
			continue
		}
		share := remaining * p
		if p >= 1 {
			share = remaining
		}
		add(Weather(rule.Weather), share)
		remaining -= share
		if remaining <= 0 {
			break
		}
	}
	if remaining > 0 {
		add(Sun, remaining)
	}
	return out, nil
}

// GreenRainDay is the summer day of the given year that gets green rain.
func GreenRainDay(s rng.SeedStrategy, t *game.Tables, gameID uint64, year int) (int, error) {
	r := rng.New(s.Seed(float64(year*777), float64(gameID), 0, 0, 0))
	day, err := rng.Choose(r, t.GreenRainDays())
	if err != nil {
		return 0, fmt.Errorf("green rain days: %w", err)
	}
	return day, nil
}

// PredictRange forecasts each night from fromDay to toDay inclusive.
func PredictRange(s rng.SeedStrategy, t *game.Tables, contextID string, f save.Facts, fromDay, toDay uint32) ([]Forecast, error) {
	var out []Forecast
	for d := fromDay; d <= toDay; d++ {
		fc, err := Predict(s, t, contextID, f.WithDay(d))
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
		if d == toDay {
			break
		}
	}
	return out, nil
}
