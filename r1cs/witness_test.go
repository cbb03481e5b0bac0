package r1cs

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func bigs(vals ...int64) []*big.Int {
	out := make([]*big.Int, len(vals))
	for i, v := range vals {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestSolveProduct(t *testing.T) {
	def := build(t, `([expected], [a, b]) => { assert(a * b == expected); }`)

	w, err := def.Solve(bigs(100), bigs(10, 10))
	require.NoError(t, err)
	require.NoError(t, def.CheckWitness(w))

	e := w[def.PublicInputs[0]]
	hundred := NewElement(big.NewInt(100))
	require.True(t, hundred.Equal(&e))
}

func TestSolveViolatedEqualityIsNotAnError(t *testing.T) {
	// A false equality must not fail witness generation; it yields a
	// witness CheckWitness rejects with a typed error so backends can tell
	// invalid inputs from other failures.
	def := build(t, `([expected], [a, b]) => { assert(a * b == expected); }`)

	w, err := def.Solve(bigs(100), bigs(11, 10))
	require.NoError(t, err)

	err = def.CheckWitness(w)
	var uerr *UnsatisfiedError
	require.True(t, errors.As(err, &uerr))
	require.Equal(t, 0, uerr.Constraint)
}

func TestSolveIntermediatePropagation(t *testing.T) {
	def := build(t, `([total], [price, qty, fee]) => {
		assert(price * qty + fee == total);
	}`)

	w, err := def.Solve(bigs(53), bigs(10, 5, 3))
	require.NoError(t, err)
	require.NoError(t, def.CheckWitness(w))
	require.Len(t, w, def.NumWitnesses)
}

func TestSolveComparisonHolds(t *testing.T) {
	def := build(t, `([minimum], [balance]) => { assert(balance >= minimum); }`)

	w, err := def.Solve(bigs(100), bigs(150))
	require.NoError(t, err)
	require.NoError(t, def.CheckWitness(w))

	diff := w[def.Aux[0].Target]
	fifty := NewElement(big.NewInt(50))
	require.True(t, fifty.Equal(&diff))
}

func TestSolveComparisonEqualBoundary(t *testing.T) {
	def := build(t, `([minimum], [balance]) => { assert(balance >= minimum); }`)
	w, err := def.Solve(bigs(100), bigs(100))
	require.NoError(t, err, "equality satisfies >=")
	require.NoError(t, def.CheckWitness(w))

	strict := build(t, `([minimum], [balance]) => { assert(balance > minimum); }`)
	_, err = strict.Solve(bigs(100), bigs(100))
	var werr *WitnessError
	require.True(t, errors.As(err, &werr), "equality violates >")
}

func TestSolveComparisonFails(t *testing.T) {
	def := build(t, `([minimum], [balance]) => { assert(balance >= minimum); }`)

	_, err := def.Solve(bigs(100), bigs(50))
	var werr *WitnessError
	require.True(t, errors.As(err, &werr), "want WitnessError, got %T: %v", err, err)
}

func TestSolveComparisonOutOfRange(t *testing.T) {
	def := build(t, `([minimum], [balance]) => { assert(balance >= minimum); }`, WithComparisonBits(8))

	// diff = 300 does not fit in 8 bits
	_, err := def.Solve(bigs(0), bigs(300))
	var werr *WitnessError
	require.True(t, errors.As(err, &werr))
	require.Contains(t, werr.Msg, "8 bits")
}

func TestSolveInputCountMismatch(t *testing.T) {
	def := build(t, `([expected], [a, b]) => { assert(a * b == expected); }`)

	_, err := def.Solve(bigs(100), bigs(10))
	require.Error(t, err)
	_, err = def.Solve(nil, bigs(10, 10))
	require.Error(t, err)
}

func TestSolveReducesInputsIntoField(t *testing.T) {
	def := build(t, `([expected], [a, b]) => { assert(a * b == expected); }`)

	over := new(big.Int).Add(Modulus(), big.NewInt(5)) // ≡ 5
	w, err := def.Solve(bigs(25), []*big.Int{over, big.NewInt(5)})
	require.NoError(t, err)
	require.NoError(t, def.CheckWitness(w))
}

func TestSolveBitDecompositionBits(t *testing.T) {
	def := build(t, `([minimum], [balance]) => { assert(balance >= minimum); }`)

	w, err := def.Solve(bigs(0), bigs(0b1011))
	require.NoError(t, err)

	wantBits := []uint64{1, 1, 0, 1}
	for i, want := range wantBits {
		bit := w[def.Aux[1].Bits[i]]
		var expect fr.Element
		expect.SetUint64(want)
		require.True(t, expect.Equal(&bit), "bit %d", i)
	}
}

func TestWitnessVector(t *testing.T) {
	def := build(t, `([expected], [a, b]) => { assert(a * b == expected); }`)
	w, err := def.Solve(bigs(100), bigs(10, 10))
	require.NoError(t, err)

	vec := w.Vector(def.NumWitnesses)
	require.Len(t, vec, def.NumWitnesses)
	require.True(t, vec[0].IsOne())
}
