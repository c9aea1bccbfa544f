// Package garbage predicts what checking a garbage can turns up.
package garbage

import (
	"errors"
	"fmt"

	"github.com/konkers/sdv-predict/internal/condition"
	"github.com/konkers/sdv-predict/internal/drop"
	"github.com/konkers/sdv-predict/internal/game"
	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
)

var ErrUnknownCan = errors.New("unknown garbage can")

// trashBookBonus is added to the base chance once the trash book is read.
const trashBookBonus float32 = 0.2

// Prediction is one can's outcome for a day. Found is false when nothing
// would drop. Condition is what daily luck must beat for the reward.
type Prediction struct {
	Can       string           `json:"can"`
	Day       uint32           `json:"day"`
	Found     bool             `json:"found"`
	Reward    drop.Reward      `json:"reward"`
	DropID    string           `json:"drop_id,omitempty"`
	Condition condition.Result `json:"condition"`
}

// Predict checks can canID on day f.DaysPlayed.
func Predict(s rng.SeedStrategy, t *game.Tables, canID string, f save.Facts) (Prediction, error) {
	can, ok := t.Can(canID)
	if !ok {
		return Prediction{}, fmt.Errorf("%w: %s", ErrUnknownCan, canID)
	}

	base := can.BaseChance
	if f.HasTrashBook {
		base += trashBookBonus
	}

	r := rng.New(rng.DaySaveSeed(s, f.DaysPlayed, f.GameID, float64(777+rng.HashString(can.ID)), 0, 0))
	for i := 0; i < 2; i++ {
		if err := r.Prewarm(0, 100); err != nil {
			return Prediction{}, err
		}
	}

	roll := r.NextDouble()
	baseResult := condition.Static(true)
	if roll >= float64(base) {
		baseResult = condition.WithDailyLuck(roll - float64(base))
	}

	out := Prediction{Can: can.ID, Day: f.DaysPlayed, Condition: condition.Static(false)}
	ctx := &condition.Context{Facts: f, Rand: r, Strategy: s}
	for _, e := range can.Drops {
		if !baseResult.Bool() && !e.IgnoreBaseChance {
			continue
		}
		res, err := condition.Drops.Eval(e.Condition, ctx)
		if err != nil {
			return Prediction{}, fmt.Errorf("garbage can %s drop %s: %w", can.ID, e.ID, err)
		}
		if !e.IgnoreBaseChance {
			res = baseResult.AndResult(res)
		}
		if !res.Bool() {
			continue
		}
		reward, err := drop.Resolve(e, r)
		if err != nil {
			return Prediction{}, fmt.Errorf("garbage can %s: %w", can.ID, err)
		}
		out.Found = true
		out.Reward = reward
		out.DropID = e.ID
		out.Condition = res
		return out, nil
	}
	return out, nil
}

// PredictAll predicts every can for one day, in can id order.
func PredictAll(s rng.SeedStrategy, t *game.Tables, f save.Facts) ([]Prediction, error) {
	ids := t.CanIDs()
	out := make([]Prediction, 0, len(ids))
	for _, id := range ids {
		p, err := Predict(s, t, id, f)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
