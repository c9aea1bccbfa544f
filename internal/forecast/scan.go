// Package forecast runs the predictors over a range of days and exports
// the results.
package forecast

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/konkers/sdv-predict/internal/game"
	"github.com/konkers/sdv-predict/internal/garbage"
	"github.com/konkers/sdv-predict/internal/geode"
	"github.com/konkers/sdv-predict/internal/nightevent"
	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
	"github.com/konkers/sdv-predict/internal/weather"
)

// Request selects what a scan covers. Facts.DaysPlayed is ignored; every
// day in [From, To] is predicted from the same facts otherwise.
type Request struct {
	Facts save.Facts
	From  uint32
	To    uint32

	// Cans lists garbage cans to check each day. Empty means none; use
	// AllCans for every can in the tables.
	Cans    []string
	AllCans bool
	// Contexts lists location contexts to forecast weather for.
	Contexts []string
	// NightEvents threads Once through every night in order.
	NightEvents bool
	Once        save.OnceFlags

	// Geodes are cracked GeodeCount times each, continuing from
	// Facts.GeodesCracked. Cracks do not depend on the day.
	Geodes     []string
	GeodeCount int

	// Workers bounds the per-day goroutines. <=0 means GOMAXPROCS.
	Workers int
}

// Day is everything predicted for one day counter.
type Day struct {
	Day     uint32               `json:"day"`
	Date    save.Date            `json:"date"`
	Garbage []garbage.Prediction `json:"garbage,omitempty"`
	Weather []weather.Forecast   `json:"weather,omitempty"`
	Night   nightevent.Event     `json:"night,omitempty"`
}

// Report is a finished scan. Days are in ascending order.
type Report struct {
	Strategy string             `json:"strategy"`
	GameID   uint64             `json:"game_id"`
	Days     []Day              `json:"days"`
	Geodes   []geode.Prediction `json:"geodes,omitempty"`
	// Once is the flag state after the last night.
	Once save.OnceFlags `json:"once"`
}

// Scan predicts every requested day. Days run in parallel since each
// prediction owns its generator; night events run afterwards in day order
// because they carry the once-per-save flags.
func Scan(ctx context.Context, s rng.SeedStrategy, t *game.Tables, req Request) (*Report, error) {
	if req.To < req.From {
		return nil, fmt.Errorf("scan: empty range %d..%d", req.From, req.To)
	}
	cans := req.Cans
	if req.AllCans {
		cans = t.CanIDs()
	}
	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	days := make([]Day, req.To-req.From+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range days {
		day := req.From + uint32(i)
		out := &days[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return predictDay(s, t, req.Facts.WithDay(day), cans, req.Contexts, out)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{Strategy: s.Name(), GameID: req.Facts.GameID, Days: days, Once: req.Once}
	if req.NightEvents {
		for i := range rep.Days {
			rep.Days[i].Night = nightevent.None
		}
		for _, n := range nightevent.PredictRange(s, req.Facts, req.From, req.To, &rep.Once) {
			rep.Days[n.Day-req.From].Night = n.Event
		}
	}
	for _, id := range req.Geodes {
		preds, err := geode.PredictSeries(s, t, id, req.GeodeCount, req.Facts)
		if err != nil {
			return nil, err
		}
		rep.Geodes = append(rep.Geodes, preds...)
	}
	return rep, nil
}

func predictDay(s rng.SeedStrategy, t *game.Tables, f save.Facts, cans, contexts []string, out *Day) error {
	out.Day = f.DaysPlayed
	out.Date = f.Date()
	for _, id := range cans {
		p, err := garbage.Predict(s, t, id, f)
		if err != nil {
			return fmt.Errorf("day %d: %w", f.DaysPlayed, err)
		}
		out.Garbage = append(out.Garbage, p)
	}
	for _, id := range contexts {
		fc, err := weather.Predict(s, t, id, f)
		if err != nil {
			return fmt.Errorf("day %d: %w", f.DaysPlayed, err)
		}
		out.Weather = append(out.Weather, fc)
	}
	return nil
}
