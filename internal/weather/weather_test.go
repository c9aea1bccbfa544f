package weather

import (
	"errors"
	"math"
	"testing"

	"github.com/konkers/sdv-predict/internal/game"
	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
)

const gameID = 7269403

func loadTables(t *testing.T) *game.Tables {
	t.Helper()
	tables, err := game.NewLoader("../../data", "").Tables()
	if err != nil {
		t.Fatalf("load data: %v", err)
	}
	return tables
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// One letter per night of year one: the likeliest weather for the next
// morning. S sun, R rain, T storm, N snow, W wind, G green rain, F festival.
var yearOne = []string{
	"SRSSRSSSSSSFSSSSSRSSSRFSSSRS",
	"SSSSSSSSSFSTTSTTSSSTSGSTTTFS",
	"SSRSRSRSSSRRSSFSSSSSSRSSRFSS",
	"NNNNNNFNNNNNNNNNNNNNNNNFNNNS",
}

var letters = map[Weather]byte{
	Sun: 'S', Rain: 'R', Storm: 'T', Snow: 'N', Wind: 'W', GreenRain: 'G', Festival: 'F',
}

func TestFourSeasons(t *testing.T) {
	tables := loadTables(t)
	fcs, err := PredictRange(rng.Hashed{}, tables, "Default", save.Facts{GameID: gameID}, 1, 112)
	if err != nil {
		t.Fatal(err)
	}
	for i, fc := range fcs {
		want := yearOne[i/28][i%28]
		if got := letters[fc.Most()]; got != want {
			t.Fatalf("night %d (%v): got %c want %c, shares %+v", i+1, fc.Date, got, want, fc.Shares)
		}
		total := 0.0
		for _, s := range fc.Shares {
			total += s.Probability
		}
		if !near(total, 1) {
			t.Fatalf("night %d: shares sum to %v", i+1, total)
		}
	}
}

func TestMixedShares(t *testing.T) {
	tables := loadTables(t)
	tests := []struct {
		day    uint32
		shares []Share
	}{
		{4, []Share{{Wind, 0.2}, {Sun, 0.8}}},
		{5, []Share{{Storm, 0.25}, {Rain, 0.75}}},
		{41, []Share{{Storm, 0.85}, {Rain, 0.15}}},
		{85, []Share{{Snow, 0.63}, {Sun, 0.37}}},
	}
	for _, tt := range tests {
		fc, err := Predict(rng.Hashed{}, tables, "Default", save.Facts{GameID: gameID, DaysPlayed: tt.day})
		if err != nil {
			t.Fatal(err)
		}
		if len(fc.Shares) != len(tt.shares) {
			t.Fatalf("day %d: got %+v", tt.day, fc.Shares)
		}
		for i, s := range tt.shares {
			if fc.Shares[i].Weather != s.Weather || !near(fc.Shares[i].Probability, s.Probability) {
				t.Fatalf("day %d: got %+v want %+v", tt.day, fc.Shares, tt.shares)
			}
		}
	}
}

func TestCalendarOverrides(t *testing.T) {
	tables := loadTables(t)
	tests := []struct {
		day    uint32
		w      Weather
		reason string
	}{
		{2, Rain, "third_day"},
		{3, Sun, "first_day"},
		{12, Festival, "festival:EggFestival"},
		{28, Sun, "first_day"},
		{40, Storm, "summer_storm"},
		{50, GreenRain, "green_rain"},
	}
	for _, tt := range tests {
		fc, err := Predict(rng.Hashed{}, tables, "Default", save.Facts{GameID: gameID, DaysPlayed: tt.day})
		if err != nil {
			t.Fatal(err)
		}
		if fc.Reason != tt.reason || fc.Probability(tt.w) != 1 {
			t.Fatalf("day %d: got %+v", tt.day, fc)
		}
	}
}

func TestGreenRainDay(t *testing.T) {
	tables := loadTables(t)
	want := map[int]int{1: 23, 2: 16, 3: 14, 4: 5}
	for year, day := range want {
		got, err := GreenRainDay(rng.Hashed{}, tables, gameID, year)
		if err != nil {
			t.Fatal(err)
		}
		if got != day {
			t.Fatalf("year %d: got %d want %d", year, got, day)
		}
	}
}

func TestIgnoreCalendar(t *testing.T) {
	tables := loadTables(t)
	fc, err := Predict(rng.Hashed{}, tables, "Island", save.Facts{GameID: gameID, DaysPlayed: 2})
	if err != nil {
		t.Fatal(err)
	}
	if fc.Reason != "" || !near(fc.Probability(Rain), 0.24) || !near(fc.Probability(Sun), 0.76) {
		t.Fatalf("island: %+v", fc)
	}
}

func TestResidualWeighting(t *testing.T) {
	raw := game.RawData{
		Contexts: game.ContextsDoc{Contexts: map[string]game.ContextData{
			"Test": {IgnoreCalendar: true, Weather: []game.WeatherRule{
				{ID: "a", Weather: "Storm", Condition: "RANDOM 0.25"},
				{ID: "b", Weather: "Storm", Condition: "RANDOM 0.85"},
				{ID: "c", Weather: "Rain"},
				{ID: "d", Weather: "Snow"},
			}},
		}},
	}
	tables, err := game.Build(raw)
	if err != nil {
		t.Fatal(err)
	}
	fc, err := Predict(rng.Hashed{}, tables, "Test", save.Facts{GameID: 1, DaysPlayed: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Shares) != 2 {
		t.Fatalf("rules after a certain one must get nothing: %+v", fc.Shares)
	}
	if !near(fc.Probability(Storm), 0.8875) || !near(fc.Probability(Rain), 0.1125) {
		t.Fatalf("got %+v", fc.Shares)
	}
	if fc.Probability(Sun) != 0 || fc.Most() != Storm {
		t.Fatalf("no leftover expected: %+v", fc.Shares)
	}
}

func TestUnknownContext(t *testing.T) {
	tables := loadTables(t)
	if _, err := Predict(rng.Hashed{}, tables, "Moon", save.Facts{GameID: 1, DaysPlayed: 1}); !errors.Is(err, ErrUnknownContext) {
		t.Fatalf("want ErrUnknownContext, got %v", err)
	}
}
