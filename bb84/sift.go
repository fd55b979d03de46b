package bb84

import (
	"math/rand"

	"github.com/qkdlab/bb84sim/bb84/bitarray"
)

// Sift performs basis reconciliation: it retains only the positions where
// Alice and Bob chose the same basis, preserving transmission order. All four
// inputs are indexed identically; empty input yields empty keys.
func Sift(aliceBits, aliceBases, bobBases, bobBits bitarray.Dense) (aliceSifted, bobSifted bitarray.Dense) {
	agree := aliceBases.XNor(bobBases)
	return aliceBits.Select(agree), bobBits.Select(agree)
}

// EstimateQBER samples up to sampleSize distinct positions of the two keys,
// uniformly without replacement, and returns the fraction that disagree.
// Degenerate inputs (empty key, non-positive sample) report a rate of zero
// rather than failing.
func EstimateQBER(aliceKey, bobKey bitarray.Dense, sampleSize int, rng *rand.Rand) float64 {
	qber, _ := sampleQBER(aliceKey, bobKey, sampleSize, rng)
	return qber
}

// sampleQBER additionally reports which positions were disclosed, so the
// orchestrator can optionally drop them from the working keys.
func sampleQBER(aliceKey, bobKey bitarray.Dense, sampleSize int, rng *rand.Rand) (float64, []int) {
	n := aliceKey.Size()
	if n == 0 || sampleSize <= 0 {
		return 0, nil
	}
	if sampleSize > n {
		sampleSize = n
	}
	sampled := rng.Perm(n)[:sampleSize]
	errors := 0
	for _, i := range sampled {
		if aliceKey.Get(i) != bobKey.Get(i) {
			errors++
		}
	}
	return float64(errors) / float64(sampleSize), sampled
}

// discard removes the given positions from both keys, preserving the order of
// the survivors.
func discard(aliceKey, bobKey bitarray.Dense, positions []int) (bitarray.Dense, bitarray.Dense) {
	dropped := make(map[int]bool, len(positions))
	for _, i := range positions {
		dropped[i] = true
	}
	keep := bitarray.Empty()
	for i := 0; i < aliceKey.Size(); i++ {
		keep.AppendBit(!dropped[i])
	}
	return aliceKey.Select(keep), bobKey.Select(keep)
}
