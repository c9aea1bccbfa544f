package rng

import (
	"errors"
	"math"
	"testing"
)

// 34 + 327349652/2: the seed of a known save's first geode.
const goldenSeed = 34 + 327349652/2

func TestNextGolden(t *testing.T) {
	r := New(goldenSeed)
	want := []int32{1903971056, 2089011827, 539281092, 729551037, 975257154, 1550402750}
	for i, w := range want {
		if got := r.Next(); got != w {
			t.Fatalf("draw %d: got %d want %d", i, got, w)
		}
	}
}

func TestNextRangeGolden(t *testing.T) {
	r := New(goldenSeed)
	want := []int{8, 9, 3, 4, 5, 7}
	for i, w := range want {
		got, err := r.NextRange(1, 10)
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Fatalf("draw %d: got %d want %d", i, got, w)
		}
	}
}

func TestSeedEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		seed int32
		want []int32
	}{
		{"zero", 0, []int32{1559595546, 1755192844, 1649316166}},
		{"negative one", -1, []int32{534011718, 237820880, 1002897798}},
		{"max", math.MaxInt32, []int32{1559595546, 1755192844, 1649316172}},
		// MinInt32 has no positive counterpart and is treated as MaxInt32.
		{"min", math.MinInt32, []int32{1559595546, 1755192844, 1649316172}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.seed)
			for i, w := range tt.want {
				if got := r.Next(); got != w {
					t.Fatalf("draw %d: got %d want %d", i, got, w)
				}
			}
		})
	}
}

func TestNextDoubleGolden(t *testing.T) {
	r := New(goldenSeed)
	want := []float64{0.8866056133464936, 0.9727719370148945, 0.2511223276383813}
	for i, w := range want {
		if got := r.NextDouble(); got != w {
			t.Fatalf("draw %d: got %v want %v", i, got, w)
		}
	}
}

func TestLargeRange(t *testing.T) {
	r := New(goldenSeed)
	if got := r.SampleLargeRange(); got != 0.943302806660046 {
		t.Fatalf("large sample: got %v", got)
	}
	got, err := r.NextRange(math.MinInt32, math.MaxInt32)
	if err != nil {
		t.Fatal(err)
	}
	if got != 539281091 {
		t.Fatalf("full-range draw: got %d", got)
	}
}

func TestNextMax(t *testing.T) {
	r := New(goldenSeed)
	want := []int{6, 6, 1, 2, 3}
	for i, w := range want {
		got, err := r.NextMax(7)
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Fatalf("draw %d: got %d want %d", i, got, w)
		}
	}
	if _, err := r.NextMax(-1); !errors.Is(err, ErrNegativeMax) {
		t.Fatalf("negative max: got %v", err)
	}
}

func TestNextRangeInvalid(t *testing.T) {
	r := New(1)
	if _, err := r.NextRange(5, 4); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("min > max must error; got %v", err)
	}
	got, err := r.NextRange(3, 3)
	if err != nil || got != 3 {
		t.Fatalf("empty range: got %d err %v", got, err)
	}
}

func TestBounds(t *testing.T) {
	r := New(42)
	for i := 0; i < 10000; i++ {
		if v := r.Next(); v < 0 || v == math.MaxInt32 {
			t.Fatalf("raw draw out of range: %d", v)
		}
		if d := r.NextDouble(); d < 0 || d >= 1 {
			t.Fatalf("double out of range: %v", d)
		}
		v, err := r.NextRange(-3, 4)
		if err != nil {
			t.Fatal(err)
		}
		if v < -3 || v >= 4 {
			t.Fatalf("range draw out of range: %d", v)
		}
	}
}

func TestWeightedBoolCertainDoesNotDraw(t *testing.T) {
	a, b := New(7), New(7)
	if !a.NextWeightedBool(1) {
		t.Fatalf("p=1 should always pass")
	}
	if a.Next() != b.Next() {
		t.Fatalf("p=1 consumed a draw")
	}
	if a.NextWeightedBool(0) {
		t.Fatalf("p=0 should never pass")
	}
}

func TestPrewarm(t *testing.T) {
	a, b := New(goldenSeed), New(goldenSeed)
	if err := a.Prewarm(1, 10); err != nil {
		t.Fatal(err)
	}
	// first NextRange(1,10) on this seed is 8
	b.Skip(9)
	if a.Next() != b.Next() {
		t.Fatalf("prewarm skipped the wrong number of draws")
	}
	if err := a.Prewarm(10, 1); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("inverted prewarm bounds: got %v", err)
	}
}

func TestChoose(t *testing.T) {
	r := New(goldenSeed)
	items := []string{"a", "b", "c", "d", "e", "f", "g"}
	got, err := Choose(r, items)
	if err != nil {
		t.Fatal(err)
	}
	if got != "g" {
		t.Fatalf("choose: got %q", got)
	}
	if _, err := Choose(r, []int(nil)); !errors.Is(err, ErrEmptyChoice) {
		t.Fatalf("empty choose: got %v", err)
	}
}

func TestIndependentInstances(t *testing.T) {
	a := New(99)
	a.Skip(5)
	b := New(99)
	c := New(99)
	for i := 0; i < 50; i++ {
		if b.Next() != c.Next() {
			t.Fatalf("same seed diverged at %d", i)
		}
	}
}
