package condition

import (
	"errors"
	"fmt"
	"sort"

	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
)

// ErrUnknownCondition means game data used a condition string outside the
// recognized set. Guessing would produce silently wrong predictions.
var ErrUnknownCondition = errors.New("unknown condition")

// Context is what an evaluator may read. Rand is the predictor's own
// generator; evaluators that draw from it advance the shared sequence.
type Context struct {
	Facts    save.Facts
	Rand     *rng.Rng
	Strategy rng.SeedStrategy
}

// Evaluator computes one condition string.
type Evaluator[T any] func(ctx *Context) (T, error)

// Registry is a closed dispatch table from literal condition strings to
// evaluators. It is built once and only read afterwards.
type Registry[T any] struct {
	name  string
	evals map[string]Evaluator[T]
}

func newRegistry[T any](name string, evals map[string]Evaluator[T]) *Registry[T] {
	return &Registry[T]{name: name, evals: evals}
}

// Eval runs the evaluator registered for key.
func (r *Registry[T]) Eval(key string, ctx *Context) (T, error) {
	ev, ok := r.evals[key]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s condition %q: %w", r.name, key, ErrUnknownCondition)
	}
	return ev(ctx)
}

// Keys lists the recognized condition strings in sorted order.
func (r *Registry[T]) Keys() []string {
	keys := make([]string, 0, len(r.evals))
	for k := range r.evals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unknown returns the keys from candidates that the registry does not
// recognize, in input order without duplicates.
func (r *Registry[T]) Unknown(candidates []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, k := range candidates {
		if _, ok := r.evals[k]; ok || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
