package bb84

import (
	"math/rand"

	"github.com/qkdlab/bb84sim/bb84/bitarray"
)

// Run executes one complete BB84 pass: preparation, transmission through the
// (possibly tapped) quantum channel, measurement, sifting, error estimation
// and the optional post-processing stages. Each run is a single deterministic
// pipeline over the injected randomness source; no state is shared between
// runs. The only error condition is a malformed config, reported before any
// stage executes.
func Run(cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	var eve eavesdropper
	if cfg.Eavesdropper {
		var err error
		if eve, err = newEavesdropper(cfg.EveStrategy); err != nil {
			return Result{}, err
		}
	}
	rng := cfg.Rand
	n := cfg.BitCount

	// Alice prepares, Eve optionally intercepts, Bob measures.
	aliceBits := randomDense(rng, n)
	aliceBases := randomDense(rng, n)
	bobBases := randomDense(rng, n)
	bobBits := bitarray.NewDense(nil, n)
	for i := 0; i < n; i++ {
		bit, basis := aliceBits.Get(i), basisAt(aliceBases, i)
		if eve != nil {
			bit, basis = eve.intercept(bit, basis, rng)
		}
		bobBits.Set(i, Measure(bit, basis, basisAt(bobBases, i), rng))
	}

	aliceKey, bobKey := Sift(aliceBits, aliceBases, bobBases, bobBits)
	res := Result{
		SiftedKeyLength:             aliceKey.Size(),
		SiftingRate:                 float64(aliceKey.Size()) / float64(n),
		ErrorCorrectionEnabled:      cfg.ErrorCorrection,
		PrivacyAmplificationEnabled: cfg.PrivacyAmplification,
	}

	qber, sampled := sampleQBER(aliceKey, bobKey, sampleSizeFor(aliceKey.Size()), rng)
	res.QBERAfterSifting = qber
	if cfg.DiscardSampled {
		aliceKey, bobKey = discard(aliceKey, bobKey, sampled)
	}

	if cfg.ErrorCorrection {
		aliceKey, bobKey, res.ErrorCorrectionStats = Correct(aliceKey, bobKey, qber)
	}
	if cfg.PrivacyAmplification {
		// Both parties run the same public extractor scheme on their own
		// keys; matching inputs give matching outputs.
		aliceKey, res.PrivacyAmplificationStats = Amplify(aliceKey, qber)
		bobKey, _ = Amplify(bobKey, qber)
	}

	res.FinalKeyLength = aliceKey.Size()
	res.OverallKeyRate = float64(res.FinalKeyLength) / float64(n)
	res.FinalQBER = finalQBER(&res, cfg, aliceKey, bobKey, rng)
	res.Secure = res.FinalQBER <= SecurityThreshold && res.FinalKeyLength > 0
	res.AliceKey, res.BobKey = aliceKey, bobKey
	return res, nil
}

// finalQBER re-estimates the error rate on the post-processing keys. When no
// stage touched the sifted keys the final key is the sifted key, so the
// sifting-stage estimate is carried forward unchanged instead of re-sampled.
func finalQBER(res *Result, cfg Config, aliceKey, bobKey bitarray.Dense, rng *rand.Rand) float64 {
	if !cfg.ErrorCorrection && !cfg.PrivacyAmplification && !cfg.DiscardSampled {
		return res.QBERAfterSifting
	}
	if res.FinalKeyLength == 0 {
		return 0
	}
	return EstimateQBER(aliceKey, bobKey, sampleSizeFor(res.FinalKeyLength), rng)
}

func sampleSizeFor(keyLen int) int {
	if half := keyLen / 2; half < DefaultSampleSize {
		return half
	}
	return DefaultSampleSize
}

func randomDense(rng *rand.Rand, n int) bitarray.Dense {
	buf := make([]byte, bitarray.BytesFor(n))
	rng.Read(buf)
	return bitarray.NewDense(buf, n)
}

func basisAt(bases bitarray.Dense, i int) Basis {
	if bases.Get(i) {
		return Diagonal
	}
	return Rectilinear
}
