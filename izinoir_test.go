package izinoir

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

const mulSource = `([expected], [a, b]) => { assert(a * b == expected); }`

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(BackendGroth16)
	require.NoError(t, err)
	require.NotNil(t, b)

	b, err = NewBackend(BackendNargoCLI)
	require.NoError(t, err)
	require.NotNil(t, b)

	_, err = NewBackend("plonk")
	require.Error(t, err)
}

func TestParseAndGenerate(t *testing.T) {
	circuit, err := Parse(mulSource)
	require.NoError(t, err)
	require.Len(t, circuit.Public, 1)
	require.Len(t, circuit.Private, 2)

	noirSrc, err := GenerateNoir(mulSource)
	require.NoError(t, err)
	require.Contains(t, noirSrc, "fn main(expected: pub Field, a: Field, b: Field)")

	def, err := BuildR1CS(mulSource)
	require.NoError(t, err)
	require.Len(t, def.Constraints, 1)
}

func TestProveOneShot(t *testing.T) {
	system, err := NewBackend(BackendGroth16)
	require.NoError(t, err)

	proof, err := Prove(context.Background(), system, mulSource,
		[]*big.Int{big.NewInt(100)},
		[]*big.Int{big.NewInt(10), big.NewInt(10)},
	)
	require.NoError(t, err)
	require.NotEmpty(t, proof.Bytes)
}
