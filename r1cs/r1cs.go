// Package r1cs lowers the canonical IR into a Rank-1 Constraint System over
// the BN254 scalar field and solves witnesses for it. The definition layout
// (witness index 0 fixed to 1, private inputs before public inputs) matches
// the external toolchain's witness ordering so independently produced
// witness vectors reconcile index by index.
package r1cs

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// DefaultComparisonBits is the range width used for comparison operators
// unless WithComparisonBits overrides it.
const DefaultComparisonBits = 64

// Term is one (coefficient, witness index) pair of a linear combination.
// WID 0 refers to the reserved constant-one witness, so a constant k is the
// term (k, 0).
type Term struct {
	Coeff fr.Element
	WID   int
}

// LinearCombination is Σ coeff_i · w_i.
type LinearCombination []Term

// Constraint encodes (A·w) · (B·w) = (C·w). An empty C means = 0.
type Constraint struct {
	A LinearCombination
	B LinearCombination
	C LinearCombination
}

// AuxKind tags an auxiliary witness computation.
type AuxKind uint8

const (
	// AuxSubtract sets Target = w[Left] - w[Right] + Offset over the
	// integers. A negative result means the asserted comparison is false.
	AuxSubtract AuxKind = iota
	// AuxBitDecompose decomposes w[Source] into NumBits little-endian
	// boolean witnesses at indices Bits. Values outside [0, 2^NumBits)
	// cannot be decomposed and fail witness generation.
	AuxBitDecompose
)

// AuxComputation derives witness values the constraint system alone cannot
// assign. The prover runs these while solving the witness.
type AuxComputation struct {
	Kind AuxKind

	// AuxSubtract fields
	Target int
	Left   int
	Right  int
	Offset int64

	// AuxBitDecompose fields
	Source  int
	Bits    []int
	NumBits int
}

// Definition is a fully lowered circuit. It is built once per compile, is
// deterministic for a given IR, and may be cached next to trusted-setup key
// material.
type Definition struct {
	NumWitnesses  int
	PublicInputs  []int
	PrivateInputs []int
	Constraints   []Constraint
	Aux           []AuxComputation

	// ComparisonBits is the bit width comparisons were lowered with.
	ComparisonBits int
}

// Modulus returns the BN254 scalar field modulus.
func Modulus() *big.Int {
	return fr.Modulus()
}

// NewElement reduces v into the scalar field.
func NewElement(v *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(v)
	return e
}

func one() fr.Element {
	var e fr.Element
	e.SetOne()
	return e
}

func minusOne() fr.Element {
	var e fr.Element
	e.SetOne()
	e.Neg(&e)
	return e
}

// lcOne is the linear combination consisting of the constant 1.
func lcOne() LinearCombination {
	return LinearCombination{{Coeff: one(), WID: 0}}
}

// Eval computes lc·w. Every referenced index must be present in w.
func (lc LinearCombination) Eval(w Witness) (fr.Element, bool) {
	var acc, t fr.Element
	for _, term := range lc {
		v, ok := w[term.WID]
		if !ok {
			return acc, false
		}
		t.Mul(&term.Coeff, &v)
		acc.Add(&acc, &t)
	}
	return acc, true
}
