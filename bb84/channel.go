package bb84

import (
	"fmt"
	"math/rand"
)

// A Basis is one of the two conjugate single-qubit encoding bases.
type Basis int

const (
	// Rectilinear is the computational (Z) basis.
	Rectilinear Basis = iota
	// Diagonal is the Hadamard (X) basis.
	Diagonal
)

// String implements fmt.Stringer.
func (b Basis) String() string {
	switch b {
	case Rectilinear:
		return "rectilinear"
	case Diagonal:
		return "diagonal"
	}
	return fmt.Sprintf("Basis(%d)", int(b))
}

// Measure returns the outcome of measuring a qubit prepared as (bit, prep) in
// the meas basis. Matching bases reproduce the prepared bit exactly.
// Mismatched bases collapse the state to a uniformly random outcome,
// consuming one draw from rng.
func Measure(bit bool, prep, meas Basis, rng *rand.Rand) bool {
	if prep == meas {
		return bit
	}
	return rng.Intn(2) == 1
}

// An EveStrategy selects the attack an eavesdropper mounts against the
// quantum channel.
type EveStrategy int

const (
	// InterceptResend measures every qubit in a random basis and forwards a
	// freshly prepared replacement.
	InterceptResend EveStrategy = iota
)

// String implements fmt.Stringer.
func (s EveStrategy) String() string {
	switch s {
	case InterceptResend:
		return "intercept-resend"
	}
	return fmt.Sprintf("EveStrategy(%d)", int(s))
}

// An eavesdropper sits on the quantum channel between Alice and Bob. Its
// intercept method receives the qubit Alice prepared and returns the qubit
// Bob will actually measure. New attack strategies are additional
// implementations; the orchestrator's contract does not change.
type eavesdropper interface {
	intercept(bit bool, basis Basis, rng *rand.Rand) (bool, Basis)
}

func newEavesdropper(s EveStrategy) (eavesdropper, error) {
	switch s {
	case InterceptResend:
		return interceptResend{}, nil
	}
	return nil, fmt.Errorf("%w: unknown eavesdropper strategy %v", ErrInvalidConfig, s)
}

// interceptResend measures each qubit in an independently random basis, then
// re-prepares with whatever it observed. When Eve guesses the wrong basis
// (probability 1/2) her measurement destroys the original state, so a
// basis-matched Bob still reads a random bit. Post-sifting this drives the
// error rate toward 25%.
type interceptResend struct{}

func (interceptResend) intercept(bit bool, basis Basis, rng *rand.Rand) (bool, Basis) {
	eveBasis := randomBasis(rng)
	observed := Measure(bit, basis, eveBasis, rng)
	return observed, eveBasis
}

func randomBasis(rng *rand.Rand) Basis {
	return Basis(rng.Intn(2))
}
