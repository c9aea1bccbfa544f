package game

import "github.com/konkers/sdv-predict/internal/drop"

// RawData is the game data as read from YAML, before validation. Each field
// mirrors one document in the data directory.
type RawData struct {
	Objects  ObjectsDoc
	Garbage  GarbageDoc
	Contexts ContextsDoc
	Calendar CalendarDoc
}

// ObjectsDoc is objects.yaml: every item that can be cracked open.
type ObjectsDoc struct {
	Version string      `yaml:"version"`
	Geodes  []GeodeData `yaml:"geodes"`
}

type GeodeData struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
	// UseDefaultDrops lets the generic ore/treasure table compete with
	// Drops on a coin flip. Nil means true.
	UseDefaultDrops *bool       `yaml:"use_default_drops,omitempty"`
	Drops           []drop.Spec `yaml:"drops,omitempty"`
	// Treasures is the mineral pool for the treasure branch. Empty falls
	// back to the omni geode's pool.
	Treasures []string `yaml:"treasures,omitempty"`
}

// GarbageDoc is garbage_cans.yaml.
type GarbageDoc struct {
	Version           string             `yaml:"version"`
	DefaultBaseChance *float64           `yaml:"default_base_chance,omitempty"`
	BeforeAll         []drop.Spec        `yaml:"before_all,omitempty"`
	AfterAll          []drop.Spec        `yaml:"after_all,omitempty"`
	Cans              map[string]CanData `yaml:"cans"`
}

type CanData struct {
	// BaseChance <= 0 means use the document default.
	BaseChance float64     `yaml:"base_chance,omitempty"`
	Items      []drop.Spec `yaml:"items,omitempty"`
}

// ContextsDoc is location_contexts.yaml.
type ContextsDoc struct {
	Version  string                 `yaml:"version"`
	Contexts map[string]ContextData `yaml:"contexts"`
}

type ContextData struct {
	// IgnoreCalendar skips festival/storm/green-rain/opening-day overrides.
	IgnoreCalendar bool          `yaml:"ignore_calendar,omitempty"`
	Weather        []WeatherRule `yaml:"weather"`
}

type WeatherRule struct {
	ID        string `yaml:"id"`
	Weather   string `yaml:"weather"`
	Condition string `yaml:"condition,omitempty"`
}

// CalendarDoc is calendar.yaml.
type CalendarDoc struct {
	Version       string     `yaml:"version"`
	Festivals     []Festival `yaml:"festivals"`
	GreenRainDays []int      `yaml:"green_rain_days"`
}

type Festival struct {
	ID     string `yaml:"id"`
	Season string `yaml:"season"`
	Day    int    `yaml:"day"`
}
