package fountain

import (
	"math"
	"sort"
)

// robustSolitonC and robustSolitonDelta are the fixed shape parameters for
// the degree distribution (spec.md §4.4 step 2).
const (
	robustSolitonC     = 0.01
	robustSolitonDelta = 0.5
)

// degreeProbabilities returns the robust soliton probability mass function
// over degrees 1..k at index 1..k (index 0 is unused).
func degreeProbabilities(k int) []float64 {
	rho := make([]float64, k+1)
	rho[1] = 1.0 / float64(k)
	for i := 2; i <= k; i++ {
		rho[i] = 1.0 / (float64(i) * float64(i-1))
	}

	r := robustSolitonC * math.Log(float64(k)/robustSolitonDelta) * math.Sqrt(float64(k))
	tau := make([]float64, k+1)
	limit := int(float64(k) / r)
	for i := 1; i < limit && i <= k; i++ {
		tau[i] = r / (float64(i) * float64(k))
	}
	if limit >= 1 && limit <= k {
		tau[limit] += r * math.Log(r/robustSolitonDelta) / float64(k)
	}

	beta := 0.0
	for i := 1; i <= k; i++ {
		beta += rho[i] + tau[i]
	}

	mu := make([]float64, k+1)
	for i := 1; i <= k; i++ {
		mu[i] = (rho[i] + tau[i]) / beta
	}
	return mu
}

// Sampler draws the degree and fragment-index set for a fountain part. It
// is deterministic in (checksum, seqNum, seqLen) so an encoder and a
// decoder that agree on those three values always agree on the mix,
// without exchanging any sampler state over the wire (spec.md §4.4).
type Sampler struct {
	seqLen int
	mu     []float64
}

// NewSampler builds a sampler for a message split into seqLen source
// fragments. The degree table is computed once and reused for every part
// in the stream.
func NewSampler(seqLen int) *Sampler {
	return &Sampler{seqLen: seqLen, mu: degreeProbabilities(seqLen)}
}

// Degree returns the fountain degree for part seqNum.
func (s *Sampler) Degree(checksum uint32, seqNum uint32) int {
	return len(s.ChooseFragmentIndexes(checksum, seqNum))
}

// ChooseFragmentIndexes returns the 0-based source-fragment indexes part
// seqNum mixes together. Pure parts (seqNum in 1..=seqLen) always mix
// exactly their own fragment at index seqNum-1, matching spec.md's "first N
// parts are pure" rule. Mixed parts seed a fresh PRNG from
// checksum‖seqNum, draw a degree from the robust soliton distribution, and
// sample that many distinct indexes from the continuation of that same
// PRNG stream.
func (s *Sampler) ChooseFragmentIndexes(checksum uint32, seqNum uint32) []int {
	if int(seqNum) <= s.seqLen && seqNum >= 1 {
		return []int{int(seqNum) - 1}
	}

	rng := newXoshiro256(seedKey(checksum, seqNum))
	degree := s.drawDegree(rng)
	return sampleDistinct(rng, s.seqLen, degree)
}

func (s *Sampler) drawDegree(rng *xoshiro256ss) int {
	f := rng.nextFloat()
	cum := 0.0
	for d := 1; d <= s.seqLen; d++ {
		cum += s.mu[d]
		if f < cum {
			return d
		}
	}
	return s.seqLen
}

// sampleDistinct draws k distinct values from [0, n) via a partial
// Fisher-Yates shuffle driven by rng, returning them in ascending order.
func sampleDistinct(rng *xoshiro256ss, n int, k int) []int {
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}
	indexes := make([]int, n)
	for i := range indexes {
		indexes[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + int(rng.nextIntN(uint32(n-i)))
		indexes[i], indexes[j] = indexes[j], indexes[i]
	}
	result := indexes[:k]
	sort.Ints(result)
	return result
}
