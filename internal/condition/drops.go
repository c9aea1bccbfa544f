package condition

import (
	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
)

// Drops holds every condition string found on geode and garbage-can drop
// entries. Clauses run left to right and stop at the first fixed false, so
// later RANDOM clauses only draw when earlier ones pass.
var Drops = newRegistry("drop", map[string]Evaluator[Result]{
	"": all(),

	"RANDOM 0.2 @addDailyLuck": all(randomLuck(0.2)),

	"SYNCED_RANDOM day garbage_joja 0.2 @addDailyLuck, !PLAYER_HAS_MAIL Host ccMovieTheater": all(
		syncedDayLuck("garbage_joja", 0.2),
		lacksMail("ccMovieTheater"),
	),
	"SYNCED_RANDOM day garbage_joja 0.2 @addDailyLuck, PLAYER_HAS_MAIL Host ccMovieTheater": all(
		syncedDayLuck("garbage_joja", 0.2),
		hasMail("ccMovieTheater"),
	),

	"PLAYER_SPECIAL_ORDER_RULE_ACTIVE Current DROP_QI_BEANS, RANDOM 0.25": all(
		fact(func(f save.Facts) bool { return f.QiBeansActive }),
		random(0.25),
	),
	"PLAYER_STAT Current trashCansChecked 20, RANDOM 0.002": all(
		fact(func(f save.Facts) bool { return f.TrashCansChecked >= 20 }),
		random(0.002),
	),

	"!PLAYER_HAS_MAIL Current goldenCoconutHat": all(lacksMail("goldenCoconutHat")),
	"PLAYER_HAS_MAIL Current goldenCoconutHat":  all(hasMail("goldenCoconutHat")),

	"DAYS_PLAYED 7": all(fact(func(f save.Facts) bool { return f.DaysPlayed >= 7 })),
	"RANDOM 0.1":    all(random(0.1)),
})

type clause func(ctx *Context) (Result, error)

func all(clauses ...clause) Evaluator[Result] {
	return func(ctx *Context) (Result, error) {
		out := Static(true)
		for _, c := range clauses {
			res, err := c(ctx)
			if err != nil {
				return Static(false), err
			}
			out = out.AndResult(res)
			if !out.Bool() {
				return Static(false), nil
			}
		}
		return out, nil
	}
}

// random is "RANDOM p": one draw from the predictor's generator.
func random(p float64) clause {
	return func(ctx *Context) (Result, error) {
		return Static(ctx.Rand.NextDouble() < p), nil
	}
}

// randomLuck is "RANDOM p @addDailyLuck": roll < p + dailyLuck.
func randomLuck(p float64) clause {
	return func(ctx *Context) (Result, error) {
		return luckRoll(ctx.Rand.NextDouble(), p), nil
	}
}

// syncedDayLuck is "SYNCED_RANDOM day key p @addDailyLuck". It rolls on a
// fresh day-save generator keyed by the string hash, so every caller on the
// same day sees the same roll and the predictor's sequence is untouched.
func syncedDayLuck(key string, p float64) clause {
	return func(ctx *Context) (Result, error) {
		r := syncedDay(ctx, key)
		return luckRoll(r.NextDouble(), p), nil
	}
}

func syncedDay(ctx *Context, key string) *rng.Rng {
	return rng.New(rng.DaySaveSeed(ctx.Strategy, ctx.Facts.DaysPlayed, ctx.Facts.GameID,
		float64(rng.HashString(key)), 0, 0))
}

func luckRoll(roll, p float64) Result {
	if roll < p {
		return Static(true)
	}
	return WithDailyLuck(roll - p)
}

func fact(pred func(save.Facts) bool) clause {
	return func(ctx *Context) (Result, error) {
		return Static(pred(ctx.Facts)), nil
	}
}

func hasMail(flag string) clause {
	return fact(func(f save.Facts) bool { return f.HasMail(flag) })
}

func lacksMail(flag string) clause {
	return fact(func(f save.Facts) bool { return !f.HasMail(flag) })
}
