// Package service answers prediction requests given as string parameters.
// The HTTP and gRPC front doors both sit on top of it.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/konkers/sdv-predict/internal/condition"
	"github.com/konkers/sdv-predict/internal/forecast"
	"github.com/konkers/sdv-predict/internal/game"
	"github.com/konkers/sdv-predict/internal/garbage"
	"github.com/konkers/sdv-predict/internal/geode"
	"github.com/konkers/sdv-predict/internal/nightevent"
	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
	"github.com/konkers/sdv-predict/internal/store"
	"github.com/konkers/sdv-predict/internal/weather"
)

// ErrBadRequest marks errors caused by the caller's parameters.
var ErrBadRequest = errors.New("bad request")

const (
	maxGeodeCount = 1000
	maxScanDays   = 4 * 112
)

// Kind classifies an error for the transports.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindNotFound
	// KindBadData means the loaded game data cannot answer the request.
	KindBadData
)

// Classify maps an error returned by Predictor to a Kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, ErrBadRequest):
		return KindBadRequest
	case errors.Is(err, geode.ErrNotGeode), errors.Is(err, garbage.ErrUnknownCan),
		errors.Is(err, weather.ErrUnknownContext):
		return KindNotFound
	case errors.Is(err, condition.ErrUnknownCondition):
		return KindBadData
	default:
		return KindInternal
	}
}

// Predictor runs predictions against the current game tables.
type Predictor struct {
	Source   game.Source
	Strategy rng.SeedStrategy
	// Archive, when set, receives every forecast scan.
	Archive *store.Store
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// request holds the parameters every method reads.
type request struct {
	strategy rng.SeedStrategy
	tables   *game.Tables
	facts    save.Facts
}

func (p *Predictor) begin(get save.Lookup) (request, error) {
	s := p.Strategy
	if name, ok := get("strategy"); ok && name != "" {
		var err error
		if s, err = rng.StrategyByName(name); err != nil {
			return request{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}
	f, err := save.ParseFacts(get)
	if err != nil {
		return request{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	t, err := p.Source.Tables()
	if err != nil {
		return request{}, fmt.Errorf("game data: %w", err)
	}
	return request{strategy: s, tables: t, facts: f}, nil
}

func intParam(get save.Lookup, key string, def, lo, hi int) (int, error) {
	s, ok := get(key)
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < lo || v > hi {
		return 0, badRequest("%s must be an integer in [%d,%d]", key, lo, hi)
	}
	return v, nil
}

// Geode predicts the next count cracks of one geode type.
func (p *Predictor) Geode(get save.Lookup) ([]geode.Prediction, error) {
	req, err := p.begin(get)
	if err != nil {
		return nil, err
	}
	id, _ := get("geode")
	if id == "" {
		return nil, badRequest("missing param geode")
	}
	n, err := intParam(get, "count", 1, 1, maxGeodeCount)
	if err != nil {
		return nil, err
	}
	return geode.PredictSeries(req.strategy, req.tables, id, n, req.facts)
}

// Garbage checks one can, or every can when none is named.
func (p *Predictor) Garbage(get save.Lookup) ([]garbage.Prediction, error) {
	req, err := p.begin(get)
	if err != nil {
		return nil, err
	}
	if id, _ := get("can"); id != "" {
		pred, err := garbage.Predict(req.strategy, req.tables, id, req.facts)
		if err != nil {
			return nil, err
		}
		return []garbage.Prediction{pred}, nil
	}
	return garbage.PredictAll(req.strategy, req.tables, req.facts)
}

// Weather forecasts tomorrow for a location context, Default if unnamed.
func (p *Predictor) Weather(get save.Lookup) (weather.Forecast, error) {
	req, err := p.begin(get)
	if err != nil {
		return weather.Forecast{}, err
	}
	id, _ := get("context")
	if id == "" {
		id = "Default"
	}
	return weather.Predict(req.strategy, req.tables, id, req.facts)
}

// WeatherRange is a run of nightly forecasts for one context.
type WeatherRange struct {
	Context   string             `json:"context"`
	Forecasts []weather.Forecast `json:"forecasts"`
}

// WeatherDays forecasts every night from "days" through "to" for one
// context, Default if unnamed.
func (p *Predictor) WeatherDays(get save.Lookup) (WeatherRange, error) {
	req, err := p.begin(get)
	if err != nil {
		return WeatherRange{}, err
	}
	from := req.facts.DaysPlayed
	to, err := dayRange(get, from)
	if err != nil {
		return WeatherRange{}, err
	}
	id, _ := get("context")
	if id == "" {
		id = "Default"
	}
	fcs, err := weather.PredictRange(req.strategy, req.tables, id, req.facts, from, to)
	if err != nil {
		return WeatherRange{}, err
	}
	return WeatherRange{Context: id, Forecasts: fcs}, nil
}

// dayRange reads the optional "to" day counter, which defaults to from.
func dayRange(get save.Lookup, from uint32) (uint32, error) {
	to := from
	if s, ok := get("to"); ok && s != "" {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil || uint32(v) < from {
			return 0, badRequest("to must be a day counter >= days")
		}
		to = uint32(v)
	}
	if to-from >= maxScanDays {
		return 0, badRequest("at most %d days per scan", maxScanDays)
	}
	return to, nil
}

// NightResult is tonight's event and the once-per-save flags after it.
type NightResult struct {
	Day   uint32           `json:"day"`
	Event nightevent.Event `json:"event"`
	Once  save.OnceFlags   `json:"once"`
}

func (p *Predictor) NightEvent(get save.Lookup) (NightResult, error) {
	req, err := p.begin(get)
	if err != nil {
		return NightResult{}, err
	}
	once, err := save.ParseOnceFlags(get)
	if err != nil {
		return NightResult{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	ev := nightevent.Predict(req.strategy, req.facts, &once)
	return NightResult{Day: req.facts.DaysPlayed, Event: ev, Once: once}, nil
}

// ForecastResult is a scan with its summary.
type ForecastResult struct {
	Summary forecast.Summary `json:"summary"`
	Report  *forecast.Report `json:"report"`
}

// Forecast scans days from "days" through "to" (default: the same day) for
// every can, the named contexts (default Default) and night events. With
// an archive configured the records are stored as well.
func (p *Predictor) Forecast(ctx context.Context, get save.Lookup) (ForecastResult, error) {
	req, err := p.begin(get)
	if err != nil {
		return ForecastResult{}, err
	}
	from := req.facts.DaysPlayed
	to, err := dayRange(get, from)
	if err != nil {
		return ForecastResult{}, err
	}
	once, err := save.ParseOnceFlags(get)
	if err != nil {
		return ForecastResult{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	contexts := []string{"Default"}
	if s, ok := get("context"); ok && s != "" {
		contexts = []string{s}
	}

	rep, err := forecast.Scan(ctx, req.strategy, req.tables, forecast.Request{
		Facts:       req.facts,
		From:        from,
		To:          to,
		AllCans:     true,
		Contexts:    contexts,
		NightEvents: true,
		Once:        once,
	})
	if err != nil {
		return ForecastResult{}, err
	}
	if p.Archive != nil {
		recs, err := rep.Records()
		if err != nil {
			return ForecastResult{}, err
		}
		run := store.Run{GameID: rep.GameID, Strategy: rep.Strategy}
		if err := p.Archive.Put(ctx, run, recs); err != nil {
			return ForecastResult{}, fmt.Errorf("archive: %w", err)
		}
	}
	return ForecastResult{Summary: forecast.Summarize(rep), Report: rep}, nil
}

// archiveRun reads the game_id and strategy naming an archived run.
func (p *Predictor) archiveRun(get save.Lookup) (store.Run, error) {
	if p.Archive == nil {
		return store.Run{}, badRequest("no forecast archive configured")
	}
	gid, ok := get("game_id")
	if !ok || gid == "" {
		return store.Run{}, badRequest("missing param game_id")
	}
	id, err := strconv.ParseUint(gid, 10, 64)
	if err != nil {
		return store.Run{}, badRequest("invalid game_id")
	}
	s := p.Strategy
	if name, ok := get("strategy"); ok && name != "" {
		if s, err = rng.StrategyByName(name); err != nil {
			return store.Run{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}
	return store.Run{GameID: id, Strategy: s.Name()}, nil
}

// Archived lists stored records for game_id under the request's strategy.
func (p *Predictor) Archived(ctx context.Context, get save.Lookup) ([]forecast.Record, error) {
	run, err := p.archiveRun(get)
	if err != nil {
		return nil, err
	}
	from, err := intParam(get, "from", 0, 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	to, err := intParam(get, "to", 0, 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	kind, _ := get("kind")
	return p.Archive.List(ctx, store.Query{
		Run:     run,
		Kind:    kind,
		FromDay: uint32(from),
		ToDay:   uint32(to),
	})
}

// Purge drops every archived record for game_id under the request's
// strategy and reports how many went.
func (p *Predictor) Purge(ctx context.Context, get save.Lookup) (int64, error) {
	run, err := p.archiveRun(get)
	if err != nil {
		return 0, err
	}
	return p.Archive.Delete(ctx, run)
}

// ConditionReport lists the recognized condition strings and any used by
// the loaded data that are not recognized.
type ConditionReport struct {
	Drops          []string `json:"drops"`
	Weather        []string `json:"weather"`
	UnknownDrops   []string `json:"unknown_drops,omitempty"`
	UnknownWeather []string `json:"unknown_weather,omitempty"`
}

func (p *Predictor) Conditions() (ConditionReport, error) {
	t, err := p.Source.Tables()
	if err != nil {
		return ConditionReport{}, fmt.Errorf("game data: %w", err)
	}
	return Lint(t), nil
}

// Lint checks every condition used by t against the registries.
func Lint(t *game.Tables) ConditionReport {
	return ConditionReport{
		Drops:          condition.Drops.Keys(),
		Weather:        condition.Weather.Keys(),
		UnknownDrops:   condition.Drops.Unknown(t.DropConditions()),
		UnknownWeather: condition.Weather.Unknown(t.WeatherConditions()),
	}
}
