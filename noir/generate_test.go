package noir

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/francoperez03/izinoir/parser"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	c, err := parser.Parse(src)
	require.NoError(t, err)
	out, err := Generate(c)
	require.NoError(t, err)
	return out
}

func TestGenerateBasic(t *testing.T) {
	got := generate(t, `([expected], [a, b]) => { assert(a * b == expected); }`)
	want := `fn main(expected: pub Field, a: Field, b: Field) {
    assert(((a * b) == expected));
}
`
	require.Equal(t, want, got)
}

func TestGenerateAssertMessage(t *testing.T) {
	got := generate(t, `([m], [balance]) => { assert(balance >= m, "insufficient balance"); }`)
	require.Contains(t, got, `assert((balance >= m), "insufficient balance");`)
}

func TestGenerateMutAndAssign(t *testing.T) {
	got := generate(t, `([total], [a, b]) => {
		let mut_acc = a;
		acc = acc + b;
		assert(acc == total);
	}`)
	want := `fn main(total: pub Field, a: Field, b: Field) {
    let mut acc = a;
    acc = (acc + b);
    assert((acc == total));
}
`
	require.Equal(t, want, got)
}

func TestGenerateForLoop(t *testing.T) {
	got := generate(t, `([x], [y]) => {
		for (let i = 0; i < 4; i++) { assert(x == y); }
	}`)
	require.Contains(t, got, "for i in 0..4 {")

	got = generate(t, `([x], [y]) => {
		for (let i = 1; i <= 4; i++) { assert(x == y); }
	}`)
	require.Contains(t, got, "for i in 1..=4 {")
}

func TestGenerateIfElse(t *testing.T) {
	got := generate(t, `([x], [y]) => {
		if (x > 1) { assert(y == 1); } else { assert(y == 2); }
	}`)
	want := `fn main(x: pub Field, y: Field) {
    if (x > 1) {
        assert((y == 1));
    } else {
        assert((y == 2));
    }
}
`
	require.Equal(t, want, got)
}

func TestGenerateLogicalOperatorsSpellBitwise(t *testing.T) {
	got := generate(t, `([x], [y]) => { assert(x == 1 && y == 2); }`)
	require.Contains(t, got, "((x == 1) & (y == 2))")

	got = generate(t, `([x], [y]) => { assert(x == 1 || y == 2); }`)
	require.Contains(t, got, "((x == 1) | (y == 2))")
}

func TestGenerateTernary(t *testing.T) {
	got := generate(t, `([x], [y]) => { let v = x > 1 ? 1 : 0; assert(v == y); }`)
	require.Contains(t, got, "let v = if (x > 1) { 1 } else { 0 };")
}

func TestGenerateLengthCall(t *testing.T) {
	got := generate(t, `([n], [items]) => { assert(items.length == n); }`)
	require.Contains(t, got, "items.len()")
}

func TestProverToml(t *testing.T) {
	c, err := parser.Parse(`([expected], [a, b]) => { assert(a * b == expected); }`)
	require.NoError(t, err)

	toml, err := ProverToml(c, []*big.Int{big.NewInt(100)}, []*big.Int{big.NewInt(10), big.NewInt(10)})
	require.NoError(t, err)
	want := "expected = \"100\"\na = \"10\"\nb = \"10\"\n"
	require.Equal(t, want, toml)

	_, err = ProverToml(c, nil, []*big.Int{big.NewInt(10), big.NewInt(10)})
	require.Error(t, err)
	_, err = ProverToml(c, []*big.Int{big.NewInt(100)}, []*big.Int{big.NewInt(10)})
	require.Error(t, err)
}

func TestNargoToml(t *testing.T) {
	got := NargoToml("payment")
	require.Contains(t, got, `name = "payment"`)
	require.Contains(t, got, `type = "bin"`)
}
