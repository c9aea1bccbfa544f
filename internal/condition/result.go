package condition

import (
	"encoding/json"
	"fmt"
	"math"
)

// luckCeiling is just above the best attainable daily luck (0.1) so that a
// threshold exactly at the maximum still counts as reachable.
const luckCeiling = 0.100001

// Result is either a fixed outcome or one that passes only when the
// player's daily luck beats a threshold.
type Result struct {
	pending bool
	value   bool
	minLuck float64
}

// Static is a fixed outcome.
func Static(v bool) Result {
	return Result{value: v}
}

// WithDailyLuck passes when daily luck exceeds minLuck.
func WithDailyLuck(minLuck float64) Result {
	return Result{pending: true, minLuck: minLuck}
}

// And folds in a plain boolean.
func (r Result) And(b bool) Result {
	if !b {
		return Static(false)
	}
	return r
}

// AndResult folds in another outcome. A fixed false wins, a fixed true
// defers to the other side, and two thresholds keep the stricter one.
func (r Result) AndResult(o Result) Result {
	switch {
	case !r.pending && !r.value:
		return Static(false)
	case !r.pending:
		return o
	case !o.pending && !o.value:
		return Static(false)
	case !o.pending:
		return r
	default:
		return WithDailyLuck(math.Max(r.minLuck, o.minLuck))
	}
}

// Bool reports whether the outcome can pass at all.
func (r Result) Bool() bool {
	if !r.pending {
		return r.value
	}
	return r.minLuck < luckCeiling
}

// Passes decides the outcome for a known daily luck value.
func (r Result) Passes(dailyLuck float64) bool {
	if !r.pending {
		return r.value
	}
	return r.minLuck < dailyLuck
}

// MinLuck returns the luck threshold when the outcome depends on luck.
func (r Result) MinLuck() (float64, bool) {
	return r.minLuck, r.pending
}

func (r Result) String() string {
	if !r.pending {
		return fmt.Sprintf("static(%t)", r.value)
	}
	return fmt.Sprintf("luck>%.6f", r.minLuck)
}

type resultJSON struct {
	Static  *bool    `json:"static,omitempty"`
	MinLuck *float64 `json:"min_luck,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.pending {
		v := r.minLuck
		return json.Marshal(resultJSON{MinLuck: &v})
	}
	v := r.value
	return json.Marshal(resultJSON{Static: &v})
}

func (r *Result) UnmarshalJSON(b []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch {
	case raw.MinLuck != nil:
		*r = WithDailyLuck(*raw.MinLuck)
	case raw.Static != nil:
		*r = Static(*raw.Static)
	default:
		return fmt.Errorf("condition result: neither static nor min_luck set")
	}
	return nil
}
