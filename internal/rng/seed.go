package rng

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/OneOfOne/xxhash"
)

// seedModulus is applied to every seed input before combination.
const seedModulus = 2147483647.0

// SeedStrategy combines up to five numeric facts into one generator seed.
// The host switched strategies between releases; a prediction uses exactly one.
type SeedStrategy interface {
	Seed(a, b, c, d, e float64) int32
	Name() string
}

// Legacy sums the reduced inputs.
type Legacy struct{}

// Hashed feeds the reduced inputs through xxHash32.
type Hashed struct{}

func (Legacy) Name() string { return "legacy" }
func (Hashed) Name() string { return "hashed" }

func (Legacy) Seed(a, b, c, d, e float64) int32 {
	sum := math.Mod(a, seedModulus) +
		math.Mod(b, seedModulus) +
		math.Mod(c, seedModulus) +
		math.Mod(d, seedModulus) +
		math.Mod(e, seedModulus)
	return int32(math.Mod(sum, seedModulus))
}

func (Hashed) Seed(a, b, c, d, e float64) int32 {
	h := xxhash.NewS32(0)
	var buf [4]byte
	for _, v := range [...]float64{a, b, c, d, e} {
		binary.LittleEndian.PutUint32(buf[:], uint32(int32(math.Mod(v, seedModulus))))
		_, _ = h.Write(buf[:])
	}
	return int32(h.Sum32())
}

// DaySaveSeed is the host's "day + save" seed: (daysPlayed, gameID/2, a, b, c).
func DaySaveSeed(s SeedStrategy, daysPlayed uint32, gameID uint64, a, b, c float64) int32 {
	return s.Seed(float64(daysPlayed), float64(gameID/2), a, b, c)
}

// HashString is the host's deterministic string hash: xxHash32 of the
// UTF-8 bytes with seed 0, reinterpreted as signed.
func HashString(s string) int32 {
	return int32(xxhash.ChecksumString32S(s, 0))
}

// StrategyByName maps a configuration value to a strategy.
func StrategyByName(name string) (SeedStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "legacy":
		return Legacy{}, nil
	case "", "hashed":
		return Hashed{}, nil
	default:
		return nil, fmt.Errorf("unknown seed strategy %q (want legacy or hashed)", name)
	}
}
