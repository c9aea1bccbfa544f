package condition

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
)

func TestAndResult(t *testing.T) {
	tests := []struct {
		name string
		a, b Result
		want Result
	}{
		{"true,true", Static(true), Static(true), Static(true)},
		{"true,false", Static(true), Static(false), Static(false)},
		{"false,true", Static(false), Static(true), Static(false)},
		{"false,luck", Static(false), WithDailyLuck(-0.5), Static(false)},
		{"luck,false", WithDailyLuck(-0.5), Static(false), Static(false)},
		{"true,luck", Static(true), WithDailyLuck(0.02), WithDailyLuck(0.02)},
		{"luck,true", WithDailyLuck(0.02), Static(true), WithDailyLuck(0.02)},
		{"luck,luck", WithDailyLuck(0.02), WithDailyLuck(0.07), WithDailyLuck(0.07)},
	}
	for _, tt := range tests {
		if got := tt.a.AndResult(tt.b); got != tt.want {
			t.Fatalf("%s: got %v want %v", tt.name, got, tt.want)
		}
	}
}

func TestAnd(t *testing.T) {
	if got := WithDailyLuck(0.01).And(false); got != Static(false) {
		t.Fatalf("and(false) must be static false, got %v", got)
	}
	if got := WithDailyLuck(0.01).And(true); got != WithDailyLuck(0.01) {
		t.Fatalf("and(true) must keep the threshold, got %v", got)
	}
}

func TestBoolEpsilon(t *testing.T) {
	if !WithDailyLuck(0.1).Bool() {
		t.Fatalf("threshold at max luck must still be reachable")
	}
	if !WithDailyLuck(0.100001 - 1e-9).Bool() {
		t.Fatalf("threshold just under the ceiling must be reachable")
	}
	if WithDailyLuck(0.100001).Bool() {
		t.Fatalf("threshold at the ceiling must be unreachable")
	}
	if WithDailyLuck(0.2).Bool() {
		t.Fatalf("threshold above max luck must be unreachable")
	}
}

func TestPasses(t *testing.T) {
	r := WithDailyLuck(0.03)
	if r.Passes(0.03) || !r.Passes(0.031) {
		t.Fatalf("Passes must be strict: %v", r)
	}
	if !Static(true).Passes(-1) || Static(false).Passes(1) {
		t.Fatalf("static results ignore luck")
	}
	if v, ok := r.MinLuck(); !ok || v != 0.03 {
		t.Fatalf("MinLuck = %v,%v", v, ok)
	}
}

func TestResultJSON(t *testing.T) {
	for _, r := range []Result{Static(true), Static(false), WithDailyLuck(-0.0625)} {
		b, err := json.Marshal(r)
		if err != nil {
			t.Fatal(err)
		}
		var back Result
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatal(err)
		}
		if back != r {
			t.Fatalf("%s decoded as %v", b, back)
		}
	}
	var r Result
	if err := json.Unmarshal([]byte(`{}`), &r); err == nil {
		t.Fatalf("empty object must error")
	}
}

func dropCtx(seed int32, f save.Facts) *Context {
	return &Context{Facts: f, Rand: rng.New(seed), Strategy: rng.Hashed{}}
}

func TestUnknownCondition(t *testing.T) {
	_, err := Drops.Eval("RANDOM 0.3", dropCtx(1, save.Facts{}))
	if !errors.Is(err, ErrUnknownCondition) {
		t.Fatalf("want ErrUnknownCondition, got %v", err)
	}
	_, err = Weather.Eval("SEASON spring, RANDOM 0.1", &Context{})
	if !errors.Is(err, ErrUnknownCondition) {
		t.Fatalf("want ErrUnknownCondition, got %v", err)
	}
}

func TestRegistryUnknown(t *testing.T) {
	got := Drops.Unknown([]string{"", "RANDOM 0.1", "FOO", "BAR", "FOO"})
	if len(got) != 2 || got[0] != "FOO" || got[1] != "BAR" {
		t.Fatalf("got %q", got)
	}
	keys := Weather.Keys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("keys not sorted: %q", keys)
		}
	}
}

func TestRandomDrawsFromPredictorRng(t *testing.T) {
	const seed = 163674860
	ctx := dropCtx(seed, save.Facts{})
	ref := rng.New(seed)

	got, err := Drops.Eval("RANDOM 0.1", ctx)
	if err != nil {
		t.Fatal(err)
	}
	// first double of this seed is ~0.887
	if got != Static(ref.NextDouble() < 0.1) || got.Bool() {
		t.Fatalf("got %v", got)
	}
	if ctx.Rand.Next() != ref.Next() {
		t.Fatalf("RANDOM must consume exactly one draw")
	}
}

func TestRandomLuckThreshold(t *testing.T) {
	// seed 1 opens with ~0.2487, so the roll needs luck above ~0.0487
	got, err := Drops.Eval("RANDOM 0.2 @addDailyLuck", dropCtx(1, save.Facts{}))
	if err != nil {
		t.Fatal(err)
	}
	want := WithDailyLuck(rng.New(1).NextDouble() - 0.2)
	if got != want || !got.Bool() {
		t.Fatalf("got %v want %v", got, want)
	}
	if got.Passes(0.04) || !got.Passes(0.05) {
		t.Fatalf("threshold misplaced: %v", got)
	}

	// ~0.887 is out of reach of any daily luck
	got, err = Drops.Eval("RANDOM 0.2 @addDailyLuck", dropCtx(163674860, save.Facts{}))
	if err != nil {
		t.Fatal(err)
	}
	if got != Static(false) {
		t.Fatalf("unreachable roll: got %v", got)
	}
}

func TestShortCircuitSkipsDraw(t *testing.T) {
	const seed = 99
	ctx := dropCtx(seed, save.Facts{TrashCansChecked: 3})
	got, err := Drops.Eval("PLAYER_STAT Current trashCansChecked 20, RANDOM 0.002", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != Static(false) {
		t.Fatalf("got %v", got)
	}
	if ctx.Rand.Next() != rng.New(seed).Next() {
		t.Fatalf("failed stat gate must not draw")
	}

	ctx = dropCtx(seed, save.Facts{TrashCansChecked: 20})
	if _, err := Drops.Eval("PLAYER_STAT Current trashCansChecked 20, RANDOM 0.002", ctx); err != nil {
		t.Fatal(err)
	}
	ref := rng.New(seed)
	ref.NextDouble()
	if ctx.Rand.Next() != ref.Next() {
		t.Fatalf("passed stat gate must draw once")
	}
}

func TestSyncedRandomLeavesPredictorRng(t *testing.T) {
	// day 8 rolls ~0.282 on the garbage_joja generator
	f := save.Facts{GameID: 254546202, DaysPlayed: 8, Mail: []string{"ccMovieTheater"}}
	ctx := dropCtx(7, f)
	const key = "SYNCED_RANDOM day garbage_joja 0.2 @addDailyLuck, PLAYER_HAS_MAIL Host ccMovieTheater"
	got, err := Drops.Eval(key, ctx)
	if err != nil {
		t.Fatal(err)
	}
	day := rng.New(rng.DaySaveSeed(rng.Hashed{}, 8, 254546202, float64(rng.HashString("garbage_joja")), 0, 0))
	want := WithDailyLuck(day.NextDouble() - 0.2)
	if got != want || !got.Bool() {
		t.Fatalf("got %v want %v", got, want)
	}
	if ctx.Rand.Next() != rng.New(7).Next() {
		t.Fatalf("synced clause must not touch the predictor generator")
	}

	got, err = Drops.Eval("SYNCED_RANDOM day garbage_joja 0.2 @addDailyLuck, !PLAYER_HAS_MAIL Host ccMovieTheater", dropCtx(7, f))
	if err != nil {
		t.Fatal(err)
	}
	if got != Static(false) {
		t.Fatalf("negated mail gate: got %v", got)
	}
}

func TestFactClauses(t *testing.T) {
	tests := []struct {
		key  string
		f    save.Facts
		want bool
	}{
		{"", save.Facts{}, true},
		{"DAYS_PLAYED 7", save.Facts{DaysPlayed: 6}, false},
		{"DAYS_PLAYED 7", save.Facts{DaysPlayed: 7}, true},
		{"PLAYER_HAS_MAIL Current goldenCoconutHat", save.Facts{}, false},
		{"!PLAYER_HAS_MAIL Current goldenCoconutHat", save.Facts{}, true},
		{"!PLAYER_HAS_MAIL Current goldenCoconutHat", save.Facts{Mail: []string{"goldenCoconutHat"}}, false},
	}
	for _, tt := range tests {
		got, err := Drops.Eval(tt.key, dropCtx(1, tt.f))
		if err != nil {
			t.Fatal(err)
		}
		if got != Static(tt.want) {
			t.Fatalf("%q with %+v: got %v", tt.key, tt.f, got)
		}
	}
}

func TestWeatherSeasonGate(t *testing.T) {
	spring := &Context{Facts: save.Facts{GameID: 1, DaysPlayed: 5}, Strategy: rng.Hashed{}}
	winter := &Context{Facts: save.Facts{GameID: 1, DaysPlayed: 90}, Strategy: rng.Hashed{}}

	p, err := Weather.Eval("SEASON winter, RANDOM 0.63", spring)
	if err != nil || p != 0 {
		t.Fatalf("spring snow: %v %v", p, err)
	}
	p, err = Weather.Eval("SEASON winter, RANDOM 0.63", winter)
	if err != nil || p != 0.63 {
		t.Fatalf("winter snow: %v %v", p, err)
	}
	p, err = Weather.Eval("DAYS_PLAYED 7", spring)
	if err != nil || p != 0 {
		t.Fatalf("day 5 against DAYS_PLAYED 7: %v %v", p, err)
	}
	p, err = Weather.Eval("DAYS_PLAYED 7", winter)
	if err != nil || p != 1 {
		t.Fatalf("day 90 against DAYS_PLAYED 7: %v %v", p, err)
	}
	p, err = Weather.Eval("", spring)
	if err != nil || p != 1 {
		t.Fatalf("empty condition: %v %v", p, err)
	}
}

func TestWeatherSyncedIsExact(t *testing.T) {
	s := rng.Hashed{}
	for days := uint32(1); days <= 28; days++ {
		ctx := &Context{Facts: save.Facts{GameID: 7269403, DaysPlayed: days}, Strategy: s}
		rain, err := Weather.Eval("SEASON spring fall, SYNCED_RANDOM day location_weather 0.183", ctx)
		if err != nil {
			t.Fatal(err)
		}
		storm, err := Weather.Eval("SEASON spring fall, SYNCED_RANDOM day location_weather 0.183, RANDOM 0.25", ctx)
		if err != nil {
			t.Fatal(err)
		}
		if rain != 0 && rain != 1 {
			t.Fatalf("day %d: synced rain must be exact, got %v", days, rain)
		}
		if math.Abs(storm-rain*0.25) > 1e-15 {
			t.Fatalf("day %d: storm %v rain %v", days, storm, rain)
		}

		r := rng.New(rng.DaySaveSeed(s, days, 7269403, float64(rng.HashString("location_weather")), 0, 0))
		if want := r.NextDouble() < 0.183; want != (rain == 1) {
			t.Fatalf("day %d: rain %v want %v", days, rain, want)
		}
	}
}

func TestSummerRain(t *testing.T) {
	// single precision, day 28 of summer
	c := float32(0.12) + float32(float32(28)*float32(0.003))
	ctx := &Context{Facts: save.Facts{GameID: 7269403, DaysPlayed: 56}, Strategy: rng.Hashed{}}
	p, err := Weather.Eval("SEASON summer, SYNCED_SUMMER_RAIN_RANDOM 0.12 0.003", ctx)
	if err != nil {
		t.Fatal(err)
	}
	r := rng.New(rng.DaySaveSeed(rng.Hashed{}, 56, 7269403, float64(rng.HashString("summer_rain_chance")), 0, 0))
	if want := r.NextDouble() < float64(c); want != (p == 1) {
		t.Fatalf("summer rain: got %v want %v", p, want)
	}
}
