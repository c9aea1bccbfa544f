package rng

import (
	"errors"
	"math"
)

const (
	mbig  = math.MaxInt32
	mseed = 161803398
)

var (
	ErrInvalidRange = errors.New("invalid range; min must not exceed max")
	ErrNegativeMax  = errors.New("invalid max; must be >= 0")
	ErrEmptyChoice  = errors.New("cannot choose from an empty list")
)

// Rng reproduces the host runtime's legacy subtractive generator
// (Knuth's algorithm as shipped in System.Random) draw for draw.
// It is not safe for concurrent use; every prediction owns its own Rng.
type Rng struct {
	next      int32
	nextP     int32
	seedArray [56]int32
}

// New seeds a generator exactly like the host does.
func New(seed int32) *Rng {
	r := &Rng{}

	var subtraction int32
	if seed == math.MinInt32 {
		subtraction = mbig
	} else {
		subtraction = seed
		if subtraction < 0 {
			subtraction = -subtraction
		}
	}

	mj := mseed - subtraction
	r.seedArray[55] = mj
	mk := int32(1)
	// slot 0 is never used
	for i := int32(1); i < 55; i++ {
		ii := (21 * i) % 55
		r.seedArray[ii] = mk
		mk = mj - mk
		if mk < 0 {
			mk += mbig
		}
		mj = r.seedArray[ii]
	}
	for k := 1; k < 5; k++ {
		for i := 1; i < 56; i++ {
			r.seedArray[i] -= r.seedArray[1+(i+30)%55]
			if r.seedArray[i] < 0 {
				r.seedArray[i] += mbig
			}
		}
	}

	r.next = 0
	r.nextP = 21
	return r
}

func (r *Rng) internalSample() int32 {
	locNext := r.next + 1
	if locNext >= 56 {
		locNext = 1
	}
	locNextP := r.nextP + 1
	if locNextP >= 56 {
		locNextP = 1
	}

	retVal := r.seedArray[locNext] - r.seedArray[locNextP]
	if retVal == mbig {
		retVal--
	}
	if retVal < 0 {
		retVal += mbig
	}

	r.seedArray[locNext] = retVal
	r.next = locNext
	r.nextP = locNextP
	return retVal
}

// Next returns a raw draw in [0, MaxInt32).
func (r *Rng) Next() int32 {
	return r.internalSample()
}

// Sample returns a double in [0, 1) carrying 31 bits of entropy.
func (r *Rng) Sample() float64 {
	return float64(r.internalSample()) * (1.0 / mbig)
}

// NextDouble is Sample under the name the host scripts use.
func (r *Rng) NextDouble() float64 {
	return r.Sample()
}

// SampleLargeRange spends two raw draws to cover ranges wider than MaxInt32.
func (r *Rng) SampleLargeRange() float64 {
	result := r.internalSample()
	if r.internalSample()%2 == 0 {
		result = -result
	}
	d := float64(result)
	d += mbig - 1
	d /= 2*mbig - 1
	return d
}

// NextMax returns a value in [0, max).
func (r *Rng) NextMax(max int) (int, error) {
	if max < 0 {
		return 0, ErrNegativeMax
	}
	return int(int32(r.Sample() * float64(max))), nil
}

// NextRange returns a value in [min, max). Both bounds must fit in an int32.
func (r *Rng) NextRange(min, max int) (int, error) {
	if min > max {
		return 0, ErrInvalidRange
	}
	span := int64(max) - int64(min)
	if span <= mbig {
		return int(int32(r.Sample()*float64(span)) + int32(min)), nil
	}
	return int(int32(int64(r.SampleLargeRange()*float64(span)) + int64(min))), nil
}

// NextBool is a fair coin flip.
func (r *Rng) NextBool() bool {
	return r.Sample() < 0.5
}

// NextWeightedBool passes with probability p. A chance of 1 or more passes
// without consuming a draw.
func (r *Rng) NextWeightedBool(p float64) bool {
	if p >= 1.0 {
		return true
	}
	return r.Sample() < p
}

// Skip discards n doubles.
func (r *Rng) Skip(n int) {
	for i := 0; i < n; i++ {
		r.Sample()
	}
}

// Prewarm draws a count in [min, max) and discards that many doubles.
func (r *Rng) Prewarm(min, max int) error {
	n, err := r.NextRange(min, max)
	if err != nil {
		return err
	}
	r.Skip(n)
	return nil
}

// Choose picks one element with an index drawn by NextMax(len(items)).
func Choose[T any](r *Rng, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyChoice
	}
	i, err := r.NextMax(len(items))
	if err != nil {
		return zero, err
	}
	return items[i], nil
}
