package bb84

import (
	"github.com/qkdlab/bb84sim/bb84/bitarray"
)

// CorrectionStats reports what a reconciliation pass did and disclosed. Every
// parity check leaks one bit of information to an eavesdropper listening on
// the classical channel.
type CorrectionStats struct {
	ErrorsCorrected int
	ParityChecks    int
	BlockSize       int
}

// Correct runs a single pass of adaptive block-parity reconciliation. Both
// keys are partitioned into consecutive blocks sized by the observed error
// rate (noisier channels get smaller blocks); whenever block parities
// disagree, the first differing position is patched on Bob's side with
// Alice's value. At most one error is repaired per block, so blocks holding
// an even number of discrepancies pass unnoticed. Alice's key is returned
// unchanged.
func Correct(aliceKey, bobKey bitarray.Dense, qber float64) (bitarray.Dense, bitarray.Dense, CorrectionStats) {
	var stats CorrectionStats
	n := aliceKey.Size()
	if n == 0 {
		return bitarray.Empty(), bitarray.Empty(), stats
	}
	stats.BlockSize = blockSizeFor(qber)
	fixed := bobKey.Clone()
	for start := 0; start < n; start += stats.BlockSize {
		end := min(start+stats.BlockSize, n)
		stats.ParityChecks++
		if blockParity(aliceKey, start, end) == blockParity(fixed, start, end) {
			continue
		}
		for i := start; i < end; i++ {
			if aliceKey.Get(i) != fixed.Get(i) {
				fixed.Set(i, aliceKey.Get(i))
				stats.ErrorsCorrected++
				break
			}
		}
	}
	return aliceKey, fixed, stats
}

// blockSizeFor maps an error-rate estimate to a parity block size, clamped to
// a minimum of 4 bits. The rate is floored at 1% so a clean channel still
// yields a finite block.
func blockSizeFor(qber float64) int {
	if qber < 0.01 {
		qber = 0.01
	}
	bs := int(16 / qber)
	if bs < 4 {
		bs = 4
	}
	return bs
}

func blockParity(d bitarray.Dense, start, end int) bool {
	parity := false
	for i := start; i < end; i++ {
		if d.Get(i) {
			parity = !parity
		}
	}
	return parity
}
