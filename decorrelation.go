package admrender

import (
	"math"
	"sort"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/llehouerou/go-admrender/internal/mt19937"
)

// designDecorrelationFilter builds one channel's random-phase all-pass
// FIR: the inverse real FFT of a unit-magnitude spectrum whose phase is
// zero at DC and Nyquist and uniformly random (seeded, so reproducible)
// everywhere else. length must be even.
func designDecorrelationFilter(length int, seed uint32) ([]float64, error) {
	plan, err := algofft.NewPlanReal64(length)
	if err != nil {
		return nil, err
	}

	rng := mt19937.New(seed)
	spectrum := make([]complex128, length/2+1)
	spectrum[0] = complex(1, 0)
	for k := 1; k < length/2; k++ {
		phi := 2 * math.Pi * rng.Float64()
		spectrum[k] = complex(math.Cos(phi), math.Sin(phi))
	}
	spectrum[length/2] = complex(1, 0)

	filter := make([]float64, length)
	plan.Inverse(filter, spectrum)
	return filter, nil
}

// channelSeeds returns, for each name in names (in its given order), the
// index of that name within the alphabetically sorted set of names: the
// deterministic per-channel decorrelator seed the spec calls "the sorted
// channel-name index".
func channelSeeds(names []string) []uint32 {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	rank := make(map[string]int, len(sorted))
	for i, n := range sorted {
		rank[n] = i
	}

	seeds := make([]uint32, len(names))
	for i, n := range names {
		seeds[i] = uint32(rank[n])
	}
	return seeds
}
