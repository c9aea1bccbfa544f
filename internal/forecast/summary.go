package forecast

import (
	"math"
	"slices"

	"github.com/konkers/sdv-predict/internal/nightevent"
	"github.com/konkers/sdv-predict/internal/weather"
)

// Stats summarizes a set of luck thresholds.
type Stats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
}

// calcStats computes mean, spread and interpolated percentiles.
func calcStats(xs []float64) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	mean := sum / float64(n)

	// population variance
	var acc float64
	for _, v := range xs {
		d := v - mean
		acc += d * d
	}

	cp := slices.Clone(xs)
	slices.Sort(cp)
	percentile := func(p float64) float64 {
		if n == 1 {
			return cp[0]
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return cp[i]
		}
		return cp[i]*(1-f) + cp[i+1]*f
	}

	return Stats{
		N:      n,
		Mean:   mean,
		StdDev: math.Sqrt(acc / float64(n)),
		Min:    cp[0],
		P50:    percentile(0.50),
		P90:    percentile(0.90),
	}
}

// Summary condenses a report.
type Summary struct {
	Days int `json:"days"`

	// GarbageSure counts can checks that find something regardless of
	// luck; GarbageLuck counts those that need daily luck above a
	// threshold, summarized in LuckNeeded.
	GarbageSure int   `json:"garbage_sure"`
	GarbageLuck int   `json:"garbage_luck"`
	LuckNeeded  Stats `json:"luck_needed"`
	// GarbageAt counts finds that pass at the given daily luck.
	GarbageAt map[string]int `json:"garbage_at_luck"`

	Weather map[weather.Weather]int  `json:"weather"`
	Nights  map[nightevent.Event]int `json:"nights,omitempty"`
}

// luckLevels are the daily-luck values reported in Summary.GarbageAt.
var luckLevels = []struct {
	name string
	luck float64
}{
	{"-0.1", -0.1},
	{"0", 0},
	{"0.05", 0.05},
	{"0.1", 0.1},
}

// Summarize tallies a report. Weather counts the likeliest weather of each
// forecast.
func Summarize(r *Report) Summary {
	sum := Summary{
		Days:      len(r.Days),
		GarbageAt: make(map[string]int, len(luckLevels)),
		Weather:   make(map[weather.Weather]int),
	}
	var need []float64
	for _, d := range r.Days {
		for _, p := range d.Garbage {
			if !p.Found {
				continue
			}
			if v, ok := p.Condition.MinLuck(); ok {
				sum.GarbageLuck++
				need = append(need, v)
			} else {
				sum.GarbageSure++
			}
			for _, l := range luckLevels {
				if p.Condition.Passes(l.luck) {
					sum.GarbageAt[l.name]++
				}
			}
		}
		for _, fc := range d.Weather {
			sum.Weather[fc.Most()]++
		}
		if d.Night != "" && d.Night != nightevent.None {
			if sum.Nights == nil {
				sum.Nights = make(map[nightevent.Event]int)
			}
			sum.Nights[d.Night]++
		}
	}
	sum.LuckNeeded = calcStats(need)
	return sum
}
