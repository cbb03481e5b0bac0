package r1cs

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/francoperez03/izinoir/parser"
)

func build(t *testing.T, src string, opts ...BuildOption) *Definition {
	t.Helper()
	c, err := parser.Parse(src)
	require.NoError(t, err)
	def, err := Build(c, opts...)
	require.NoError(t, err)
	return def
}

func buildErr(t *testing.T, src string) error {
	t.Helper()
	c, err := parser.Parse(src)
	require.NoError(t, err)
	_, err = Build(c)
	require.Error(t, err)
	return err
}

func TestBuildWitnessAllocation(t *testing.T) {
	// Private before public, both after the reserved constant at 0.
	def := build(t, `([p, q], [a, b, c]) => { assert(a * b == c); }`)

	require.Equal(t, []int{1, 2, 3}, def.PrivateInputs)
	require.Equal(t, []int{4, 5}, def.PublicInputs)
	require.Equal(t, 6, def.NumWitnesses)
}

func TestBuildMulShape(t *testing.T) {
	def := build(t, `([expected], [a, b]) => { assert(a * b == expected); }`)

	require.Len(t, def.Constraints, 1, "canonical a*b==c needs no intermediates")
	con := def.Constraints[0]
	require.Equal(t, LinearCombination{{Coeff: one(), WID: 1}}, con.A)
	require.Equal(t, LinearCombination{{Coeff: one(), WID: 2}}, con.B)
	require.Equal(t, LinearCombination{{Coeff: one(), WID: 3}}, con.C)
}

func TestBuildMulShapeFlipped(t *testing.T) {
	// The product may sit on either side of the equality.
	def := build(t, `([expected], [a, b]) => { assert(expected == a * b); }`)
	require.Len(t, def.Constraints, 1)
	require.Equal(t, 3, def.Constraints[0].C[0].WID)
}

func TestBuildAddSubShapes(t *testing.T) {
	add := build(t, `([s], [a, b]) => { assert(a + b == s); }`)
	require.Len(t, add.Constraints, 1)
	require.Equal(t, lcOne(), add.Constraints[0].B)
	require.Len(t, add.Constraints[0].A, 2)

	sub := build(t, `([d], [a, b]) => { assert(a - b == d); }`)
	require.Len(t, sub.Constraints, 1)
	neg := minusOne()
	require.Equal(t, neg, sub.Constraints[0].A[1].Coeff)
}

func TestBuildGenericEqualityFallsBackToZeroForm(t *testing.T) {
	// Nested arithmetic forces intermediates plus a final (L-R)·1 = 0.
	def := build(t, `([d], [a, b, c]) => { assert(a * b + c == d); }`)

	// t1 = a*b, t2 = t1+c, then (t2 - d)·1 = 0
	require.Len(t, def.Constraints, 3)
	last := def.Constraints[len(def.Constraints)-1]
	require.Nil(t, last.C)
	require.Equal(t, lcOne(), last.B)
}

func TestBuildUnaryNeg(t *testing.T) {
	def := build(t, `([d], [a]) => { assert(-a == d); }`)
	// (-1)·a = t, then (t - d)·1 = 0
	require.Len(t, def.Constraints, 2)
	neg := minusOne()
	require.Equal(t, neg, def.Constraints[0].A[0].Coeff)
}

func TestBuildComparisonLowering(t *testing.T) {
	def := build(t, `([minimum], [balance]) => { assert(balance >= minimum); }`)

	// 1 diff constraint + 64 booleanity + 1 weighted sum
	require.Len(t, def.Constraints, 1+DefaultComparisonBits+1)
	require.Len(t, def.Aux, 2)

	require.Equal(t, AuxSubtract, def.Aux[0].Kind)
	require.Equal(t, int64(0), def.Aux[0].Offset, ">= carries no offset")
	require.Equal(t, AuxBitDecompose, def.Aux[1].Kind)
	require.Equal(t, DefaultComparisonBits, def.Aux[1].NumBits)
	require.Len(t, def.Aux[1].Bits, DefaultComparisonBits)
	require.Equal(t, def.Aux[0].Target, def.Aux[1].Source, "decomposition reads the diff witness")
}

func TestBuildStrictComparisonOffset(t *testing.T) {
	def := build(t, `([minimum], [balance]) => { assert(balance > minimum); }`)
	require.Equal(t, int64(-1), def.Aux[0].Offset, "> subtracts one more")

	// The diff constraint's constant term is derived from the same offset
	// the aux computation records.
	diffLC := def.Constraints[0].A
	require.Len(t, diffLC, 3)
	require.Equal(t, 0, diffLC[2].WID, "offset rides on the constant witness")
	want := NewElement(big.NewInt(def.Aux[0].Offset))
	require.True(t, want.Equal(&diffLC[2].Coeff))

	// Lt and Lte swap operands.
	lt := build(t, `([maximum], [balance]) => { assert(balance < maximum); }`)
	require.Equal(t, int64(-1), lt.Aux[0].Offset)
	require.Equal(t, lt.PublicInputs[0], lt.Aux[0].Left, "a < b lowers as b - a")
}

func TestBuildComparisonBitsOption(t *testing.T) {
	def := build(t, `([m], [b]) => { assert(b >= m); }`, WithComparisonBits(8))
	require.Equal(t, 8, def.ComparisonBits)
	require.Len(t, def.Constraints, 1+8+1)
	require.Equal(t, 8, def.Aux[1].NumBits)

	c, err := parser.Parse(`([m], [b]) => { assert(b >= m); }`)
	require.NoError(t, err)
	_, err = Build(c, WithComparisonBits(0))
	require.Error(t, err)
	_, err = Build(c, WithComparisonBits(253))
	require.Error(t, err)
}

func TestBuildUnsupportedConstructs(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not equal", `([a], [b]) => { assert(a != b); }`},
		{"logical and", `([a], [b]) => { assert(a == 1 && b == 1); }`},
		{"logical or", `([a], [b]) => { assert(a == 1 || b == 1); }`},
		{"for loop", `([a], [b]) => { for (let i = 0; i < 4; i++) { assert(a == b); } }`},
		{"if statement", `([a], [b]) => { if (a > 1) { assert(b == 1); } }`},
		{"ternary", `([a], [b]) => { assert(b == (a > 1 ? 1 : 0)); }`},
		{"division", `([a], [b]) => { assert(a / b == 2); }`},
		{"modulo", `([a], [b]) => { assert(a % b == 2); }`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := buildErr(t, tc.src)
			var uerr *UnsupportedError
			require.True(t, errors.As(err, &uerr), "want UnsupportedError, got %T: %v", err, err)
		})
	}
}

func TestBuildVarDeclAndAssign(t *testing.T) {
	def := build(t, `([s], [a, b]) => {
		let t = a + b;
		assert(t * t == s);
	}`)
	// t = a+b intermediate plus the product constraint
	require.Len(t, def.Constraints, 2)

	err := buildErr(t, `([s], [a]) => { let t = a; t = s; assert(t == s); }`)
	require.Contains(t, err.Error(), "immutable")

	def = build(t, `([s], [a]) => { let mut_t = a; t = s; assert(t == s); }`)
	require.NotNil(t, def)
}

func TestBuildUndefinedIdentifier(t *testing.T) {
	err := buildErr(t, `([a], [b]) => { assert(a == nosuch); }`)
	require.Contains(t, err.Error(), "nosuch")
}

func TestBuildDeterministic(t *testing.T) {
	src := `([m], [balance, spent]) => {
		let remaining = balance - spent;
		assert(remaining >= m);
	}`
	first := build(t, src)
	second := build(t, src)
	require.True(t, bytes.Equal(first.Serialize(), second.Serialize()),
		"same IR must lower to identical bytes")
}
