package condition

import (
	"github.com/konkers/sdv-predict/internal/save"
)

// Weather holds the condition strings found on location-context weather
// lists. Each evaluates to the probability that the condition holds:
// SEASON and SYNCED_* clauses are decided exactly, while RANDOM p is drawn
// by the host from an unseeded generator and so contributes p.
var Weather = newRegistry("weather", map[string]Evaluator[float64]{
	"": chance(),

	"RANDOM 0.24": chance(odds(0.24)),
	"RANDOM 0.25": chance(odds(0.25)),
	"RANDOM 0.85": chance(odds(0.85)),

	"SEASON summer, SYNCED_SUMMER_RAIN_RANDOM 0.12 0.003, RANDOM 0.85": chance(
		season(save.Summer), summerRain(0.12, 0.003), odds(0.85),
	),
	"SEASON summer, SYNCED_SUMMER_RAIN_RANDOM 0.12 0.003": chance(
		season(save.Summer), summerRain(0.12, 0.003),
	),

	"SEASON spring fall, SYNCED_RANDOM day location_weather 0.183, RANDOM 0.25": chance(
		season(save.Spring, save.Fall), syncedOdds("location_weather", 0.183), odds(0.25),
	),
	"SEASON spring fall, SYNCED_RANDOM day location_weather 0.183": chance(
		season(save.Spring, save.Fall), syncedOdds("location_weather", 0.183),
	),
	"SEASON spring fall, RANDOM 0.2": chance(season(save.Spring, save.Fall), odds(0.2)),
	"SEASON winter, RANDOM 0.63":     chance(season(save.Winter), odds(0.63)),

	"DAYS_PLAYED 7": chance(daysPlayed(7)),
})

type factor func(ctx *Context) float64

// chance multiplies its factors and stops at the first zero, so synced
// generators behind a failed SEASON check are never created.
func chance(factors ...factor) Evaluator[float64] {
	return func(ctx *Context) (float64, error) {
		p := 1.0
		for _, f := range factors {
			p *= f(ctx)
			if p == 0 {
				return 0, nil
			}
		}
		return p, nil
	}
}

func odds(p float64) factor {
	return func(*Context) float64 { return p }
}

func certain(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

func season(seasons ...save.Season) factor {
	return func(ctx *Context) float64 {
		today := ctx.Facts.Date().Season
		for _, s := range seasons {
			if s == today {
				return 1
			}
		}
		return 0
	}
}

func daysPlayed(n uint32) factor {
	return func(ctx *Context) float64 {
		return certain(ctx.Facts.DaysPlayed >= n)
	}
}

func syncedOdds(key string, p float64) factor {
	return func(ctx *Context) float64 {
		return certain(syncedDay(ctx, key).NextDouble() < p)
	}
}

// summerRain grows linearly through the month. The host computes the
// chance in single precision.
func summerRain(base, step float32) factor {
	return func(ctx *Context) float64 {
		c := base + float32(float32(ctx.Facts.Date().Day)*step)
		return certain(syncedDay(ctx, "summer_rain_chance").NextWeightedBool(float64(c)))
	}
}
