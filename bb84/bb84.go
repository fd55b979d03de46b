// Package bb84 simulates BB84 quantum key distribution between two parties,
// producing a shared secret bit sequence together with a security verdict.
// The quantum channel is modeled analytically (no circuit simulation), an
// optional eavesdropper can be placed on it, and the classical
// post-processing stages (sifting, error estimation, block-parity
// reconciliation, hash-based privacy amplification) are deliberately
// simplified pedagogical renditions rather than production QKD.
package bb84

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/qkdlab/bb84sim/bb84/bitarray"
)

// SecurityThreshold is the maximum tolerable final error rate below which a
// negotiated key is deemed secure.
const SecurityThreshold = 0.11

// DefaultSampleSize caps the number of sifted bits disclosed during error
// estimation.
const DefaultSampleSize = 50

// ErrInvalidConfig tags configuration errors, which are always surfaced
// before any protocol stage executes.
var ErrInvalidConfig = errors.New("invalid protocol config")

// A Config parameterizes a single protocol run.
type Config struct {
	// BitCount is the number of qubits Alice transmits. Must be positive.
	BitCount int

	// Eavesdropper places an adversary on the quantum channel, mounting
	// EveStrategy against every qubit in transit.
	Eavesdropper bool
	EveStrategy  EveStrategy

	// ErrorCorrection enables block-parity reconciliation of the sifted keys.
	ErrorCorrection bool

	// PrivacyAmplification enables hash-based key compression, discounting
	// the estimated leakage.
	PrivacyAmplification bool

	// DiscardSampled drops the positions disclosed during error estimation
	// from both keys before post-processing. The reference behavior keeps
	// them, which weakens the security argument; this flag is the opt-in fix.
	DiscardSampled bool

	// Rand supplies every random draw consumed during the run: basis and bit
	// choices, eavesdropper bases, state collapses and estimation samples.
	// Runs with equal configs and identically-seeded sources are
	// byte-identical. Must be non-nil; a process-global generator is never
	// consulted.
	Rand *rand.Rand
}

func (c Config) validate() error {
	if c.BitCount <= 0 {
		return fmt.Errorf("%w: bit count must be positive, got %d", ErrInvalidConfig, c.BitCount)
	}
	if c.Rand == nil {
		return fmt.Errorf("%w: must provide a randomness source", ErrInvalidConfig)
	}
	return nil
}

// A Result captures every stage's output and derived metrics for one protocol
// run. External analysis and reporting layers depend on this schema staying
// stable.
type Result struct {
	SiftedKeyLength  int
	SiftingRate      float64
	QBERAfterSifting float64

	ErrorCorrectionEnabled bool
	ErrorCorrectionStats   CorrectionStats

	PrivacyAmplificationEnabled bool
	PrivacyAmplificationStats   AmplificationStats

	FinalKeyLength int
	FinalQBER      float64
	OverallKeyRate float64
	Secure         bool

	// The parties' final keys. After correction these agree with high
	// probability, but residual mismatches survive amplification, so equality
	// is not guaranteed.
	AliceKey bitarray.Dense
	BobKey   bitarray.Dense
}
