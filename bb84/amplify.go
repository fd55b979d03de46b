package bb84

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/qkdlab/bb84sim/bb84/bitarray"
)

// AmplificationStats reports the leakage accounting behind a privacy
// amplification pass.
type AmplificationStats struct {
	OriginalLength      int
	SecureLength        int
	EveInfoEstimate     float64
	SecurityParameter   int
	KeyCompressionRatio float64
}

// Amplify compresses a partially-leaked key down to a length that discounts
// the estimated information available to an eavesdropper plus a fixed safety
// margin. The output is derived with a deterministic hashing extractor, so
// two parties holding identical input keys converge on identical output keys.
// An empty key passes through untouched with a zero compression ratio.
func Amplify(key bitarray.Dense, qber float64) (bitarray.Dense, AmplificationStats) {
	var stats AmplificationStats
	n := key.Size()
	if n == 0 {
		return bitarray.Empty(), stats
	}
	nf := float64(n)
	// Crude leakage model: the observed error rate plus a flat 10% overhead,
	// capped at half the key. Not a leftover-hash-lemma bound.
	eveInfo := math.Min(qber*nf+0.1*nf, 0.5*nf)
	secParam := int(0.1 * nf)
	if secParam < 10 {
		secParam = 10
	}
	secureLen := int(math.Floor(nf - eveInfo - float64(secParam)))
	if secureLen < 1 {
		secureLen = 1
	}
	stats = AmplificationStats{
		OriginalLength:      n,
		SecureLength:        secureLen,
		EveInfoEstimate:     eveInfo,
		SecurityParameter:   secParam,
		KeyCompressionRatio: float64(secureLen) / nf,
	}
	return extract(key, secureLen), stats
}

// extract derives outLen bits by hashing the key material against an
// incrementing counter, concatenating digests until enough bits accumulate.
// The scheme (BLAKE2b-256, big-endian uint32 counter from zero) is public;
// only the key material is secret.
func extract(key bitarray.Dense, outLen int) bitarray.Dense {
	material := key.Data()
	out := bitarray.Empty()
	buf := make([]byte, len(material)+4)
	copy(buf, material)
	for counter := uint32(0); out.Size() < outLen; counter++ {
		binary.BigEndian.PutUint32(buf[len(material):], counter)
		sum := blake2b.Sum256(buf)
		out.Append(bitarray.NewDense(sum[:], -1))
	}
	// The slice bounds hold by the loop condition above.
	trimmed, _ := out.Slice(0, outLen)
	return trimmed
}
