package game

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/konkers/sdv-predict/internal/drop"
	"github.com/konkers/sdv-predict/internal/save"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBase = "https://sdv-predict.invalid/schemas/"

var (
	schemaOnce sync.Once
	schemas    map[string]*jsonschema.Schema
	schemaErr  error
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		schemaErr = err
		return
	}
	for _, e := range entries {
		b, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			schemaErr = err
			return
		}
		if err := c.AddResource(schemaBase+e.Name(), bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema %s: %w", e.Name(), err)
			return
		}
	}
	schemas = make(map[string]*jsonschema.Schema, len(documents))
	for _, doc := range documents {
		name := strings.TrimSuffix(doc, ".yaml") + ".schema.json"
		s, err := c.Compile(schemaBase + name)
		if err != nil {
			schemaErr = fmt.Errorf("compile schema %s: %w", name, err)
			return
		}
		schemas[doc] = s
	}
}

// validateSchema checks one YAML document against its embedded schema. The
// YAML is normalized through JSON so the validator sees JSON types.
func validateSchema(doc string, b []byte) error {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return schemaErr
	}
	s, ok := schemas[doc]
	if !ok {
		return fmt.Errorf("no schema for %s", doc)
	}

	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if v == nil {
		v = map[string]any{}
	}
	js, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	var doc2 any
	if err := json.Unmarshal(js, &doc2); err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	if err := s.Validate(doc2); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

var weatherNames = map[string]bool{
	"Sun": true, "Rain": true, "Storm": true, "Snow": true,
	"Wind": true, "GreenRain": true, "Festival": true,
}

// ValidateRaw checks semantic constraints the schemas cannot express.
// Every problem is reported, not just the first.
func ValidateRaw(raw RawData) error {
	var errs []string

	// objects
	seen := make(map[string]bool)
	for i, g := range raw.Objects.Geodes {
		id, err := drop.ParseItemID(g.ID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("objects.geodes[%d].id: %v", i, err))
			continue
		}
		if seen[id] {
			errs = append(errs, fmt.Sprintf("objects.geodes[%d]: duplicate id %s", i, id))
		}
		seen[id] = true
		for _, t := range g.Treasures {
			if _, err := drop.ParseItemID(t); err != nil {
				errs = append(errs, fmt.Sprintf("objects.geodes[%s].treasures: %v", id, err))
			}
		}
		errs = append(errs, checkDrops("objects.geodes["+id+"].drops", g.Drops)...)
	}
	if !seen["(O)749"] {
		for _, g := range raw.Objects.Geodes {
			if len(g.Treasures) == 0 {
				errs = append(errs, fmt.Sprintf("objects.geodes[%s]: no treasures and no omni geode to inherit from", g.ID))
			}
		}
	}

	// garbage
	if p := raw.Garbage.DefaultBaseChance; p != nil && (*p < 0 || *p > 1) {
		errs = append(errs, "garbage.default_base_chance must be in [0,1]")
	}
	errs = append(errs, checkDrops("garbage.before_all", raw.Garbage.BeforeAll)...)
	errs = append(errs, checkDrops("garbage.after_all", raw.Garbage.AfterAll)...)
	for id, c := range raw.Garbage.Cans {
		if c.BaseChance > 1 {
			errs = append(errs, fmt.Sprintf("garbage.cans[%s].base_chance must be <= 1", id))
		}
		errs = append(errs, checkDrops("garbage.cans["+id+"].items", c.Items)...)
	}

	// contexts
	if _, ok := raw.Contexts.Contexts["Default"]; !ok {
		errs = append(errs, "location_contexts: Default context is required")
	}
	for id, c := range raw.Contexts.Contexts {
		if len(c.Weather) == 0 {
			errs = append(errs, fmt.Sprintf("location_contexts[%s]: empty weather list", id))
		}
		for i, w := range c.Weather {
			if !weatherNames[w.Weather] {
				errs = append(errs, fmt.Sprintf("location_contexts[%s].weather[%d]: unknown weather %q", id, i, w.Weather))
			}
		}
	}

	// calendar
	for i, f := range raw.Calendar.Festivals {
		if _, err := save.ParseSeason(f.Season); err != nil {
			errs = append(errs, fmt.Sprintf("calendar.festivals[%d]: %v", i, err))
		}
		if f.Day < 1 || f.Day > save.DaysPerSeason {
			errs = append(errs, fmt.Sprintf("calendar.festivals[%d].day must be in [1,%d]", i, save.DaysPerSeason))
		}
	}
	if len(raw.Calendar.GreenRainDays) == 0 {
		errs = append(errs, "calendar.green_rain_days must not be empty")
	}
	for i, d := range raw.Calendar.GreenRainDays {
		if d < 1 || d > save.DaysPerSeason {
			errs = append(errs, fmt.Sprintf("calendar.green_rain_days[%d] must be in [1,%d]", i, save.DaysPerSeason))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("game data validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func checkDrops(where string, specs []drop.Spec) []string {
	var errs []string
	for i, s := range specs {
		if _, err := drop.NewEntry(s); err != nil {
			errs = append(errs, fmt.Sprintf("%s[%d]: %v", where, i, err))
		}
		if s.Chance != nil && *s.Chance < 0 {
			errs = append(errs, fmt.Sprintf("%s[%d].chance must be >= 0", where, i))
		}
		if s.MinStack != nil && s.MaxStack != nil && *s.MaxStack >= 2 && *s.MinStack > *s.MaxStack {
			errs = append(errs, fmt.Sprintf("%s[%d]: min_stack > max_stack", where, i))
		}
	}
	return errs
}
