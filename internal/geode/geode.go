// Package geode predicts what cracking a geode-like container yields.
package geode

import (
	"errors"
	"fmt"

	"github.com/konkers/sdv-predict/internal/condition"
	"github.com/konkers/sdv-predict/internal/drop"
	"github.com/konkers/sdv-predict/internal/game"
	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
)

var ErrNotGeode = errors.New("not a geode")

// ErrBadCount is returned for a negative number of cracks.
var ErrBadCount = errors.New("negative crack count")

const (
	geodeID  = "(O)535"
	frozenID = "(O)536"
	magmaID  = "(O)537"
	omniID   = "(O)749"
)

// Source tags where a reward came from.
const (
	SourceQiBeans   = "qi_beans"
	SourceDrop      = "drop"
	SourceOre       = "ore"
	SourceTreasure  = "treasure"
	SourcePrismatic = "prismatic_shard"
)

// Prediction is the outcome of one crack. Condition is the folded
// condition of the winning drop; it is static true for fallback rewards.
type Prediction struct {
	Geode     string           `json:"geode"`
	Cracked   uint32           `json:"cracked"`
	Reward    drop.Reward      `json:"reward"`
	Source    string           `json:"source"`
	DropID    string           `json:"drop_id,omitempty"`
	Condition condition.Result `json:"condition"`
}

// Predict simulates cracking geodeID when the player's crack counter is
// cracked. The counter seeds the generator, so the n-th crack of a save
// uses n.
func Predict(s rng.SeedStrategy, t *game.Tables, geodeID string, cracked uint32, f save.Facts) (Prediction, error) {
	g, ok := t.Geode(geodeID)
	if !ok {
		return Prediction{}, fmt.Errorf("%w: %s", ErrNotGeode, geodeID)
	}
	r := rng.New(s.Seed(float64(cracked), float64(f.GameID/2), float64(f.MultiplayerID/2), 0, 0))
	for i := 0; i < 2; i++ {
		if err := r.Prewarm(1, 10); err != nil {
			return Prediction{}, err
		}
	}

	out := Prediction{Geode: g.ID, Cracked: cracked, Condition: condition.Static(true)}

	if r.NextDouble() < 0.1 && f.QiBeansActive {
		n := 1
		if r.NextDouble() < 0.25 {
			n = 5
		}
		out.Reward = drop.Reward{ItemID: "(O)890", Quantity: n}
		out.Source = SourceQiBeans
		return out, nil
	}

	if len(g.Drops) > 0 && (!g.UseDefaultDrops || r.NextBool()) {
		ctx := &condition.Context{Facts: f, Rand: r, Strategy: s}
		for _, e := range g.Drops {
			if !r.NextWeightedBool(e.Chance) {
				continue
			}
			res, err := condition.Drops.Eval(e.Condition, ctx)
			if err != nil {
				return Prediction{}, fmt.Errorf("geode %s drop %s: %w", g.ID, e.ID, err)
			}
			if !res.Bool() {
				continue
			}
			reward, err := drop.Resolve(e, r)
			if err != nil {
				return Prediction{}, fmt.Errorf("geode %s: %w", g.ID, err)
			}
			out.Reward = reward
			out.Source = SourceDrop
			out.DropID = e.ID
			out.Condition = res
			return out, nil
		}
	}

	reward, src, err := fallback(r, g, cracked, f.DeepestMineLevel)
	if err != nil {
		return Prediction{}, fmt.Errorf("geode %s: %w", g.ID, err)
	}
	out.Reward = reward
	out.Source = src
	return out, nil
}

// fallback is the generic ore/mineral table every geode falls through to.
func fallback(r *rng.Rng, g *game.Geode, cracked uint32, deepest int) (drop.Reward, string, error) {
	if r.NextDouble() < 0.5 {
		n, err := r.NextMax(3)
		if err != nil {
			return drop.Reward{}, "", err
		}
		amount := n*2 + 1
		if r.NextDouble() < 0.1 {
			amount = 10
		}
		if r.NextDouble() < 0.01 {
			amount = 20
		}

		if r.NextDouble() < 0.5 {
			pick, err := r.NextMax(4)
			if err != nil {
				return drop.Reward{}, "", err
			}
			switch pick {
			case 0, 1:
				return drop.Reward{ItemID: "(O)390", Quantity: amount}, SourceOre, nil
			case 2:
				return drop.Reward{ItemID: "(O)330", Quantity: 1}, SourceOre, nil
			default:
				item, err := material(r, g.ID)
				return drop.Reward{ItemID: item, Quantity: 1}, SourceOre, err
			}
		}

		item, quantity, err := ore(r, g.ID, amount, deepest)
		return drop.Reward{ItemID: item, Quantity: quantity}, SourceOre, err
	}

	if g.ID == omniID && r.NextDouble() < 0.008 && cracked > 15 {
		return drop.Reward{ItemID: "(O)74", Quantity: 1}, SourcePrismatic, nil
	}
	item, err := rng.Choose(r, g.Treasures)
	if err != nil {
		return drop.Reward{}, "", fmt.Errorf("treasures: %w", err)
	}
	return drop.Reward{ItemID: item, Quantity: 1}, SourceTreasure, nil
}

// material is the geode-specific mineral: earth crystal, frozen tear or
// fire quartz, with the omni geode picking among all three.
func material(r *rng.Rng, id string) (string, error) {
	switch id {
	case omniID:
		n, err := r.NextMax(3)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(O)%d", 82+n*2), nil
	case geodeID:
		return "(O)86", nil
	case frozenID:
		return "(O)84", nil
	default:
		return "(O)82", nil
	}
}

// ore picks a bar ore. Deeper mine progress upgrades the geode and frozen
// geode tables; anything else can roll iridium at a reduced stack.
func ore(r *rng.Rng, id string, amount, deepest int) (string, int, error) {
	switch id {
	case geodeID:
		n, err := r.NextMax(3)
		if err != nil {
			return "", 0, err
		}
		switch n {
		case 0:
			return "(O)378", amount, nil
		case 1:
			if deepest > 25 {
				return "(O)380", amount, nil
			}
			return "(O)378", amount, nil
		default:
			return "(O)382", amount, nil
		}
	case frozenID:
		n, err := r.NextMax(4)
		if err != nil {
			return "", 0, err
		}
		switch n {
		case 0:
			return "(O)378", amount, nil
		case 1:
			return "(O)380", amount, nil
		case 2:
			return "(O)382", amount, nil
		default:
			if deepest > 75 {
				return "(O)384", amount, nil
			}
			return "(O)380", amount, nil
		}
	default:
		n, err := r.NextMax(5)
		if err != nil {
			return "", 0, err
		}
		switch n {
		case 0:
			return "(O)378", amount, nil
		case 1:
			return "(O)380", amount, nil
		case 2:
			return "(O)382", amount, nil
		case 3:
			return "(O)384", amount, nil
		default:
			return "(O)386", amount/2 + 1, nil
		}
	}
}

// PredictSeries predicts the next n cracks of the same container, starting
// after the counter in f.
func PredictSeries(s rng.SeedStrategy, t *game.Tables, geodeID string, n int, f save.Facts) ([]Prediction, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadCount, n)
	}
	out := make([]Prediction, 0, n)
	for i := 1; i <= n; i++ {
		p, err := Predict(s, t, geodeID, f.GeodesCracked+uint32(i), f)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
