package groth16

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/francoperez03/izinoir/backend"
	"github.com/francoperez03/izinoir/chain/solana"
	"github.com/francoperez03/izinoir/r1cs"
)

const mulSource = `([expected], [a, b]) => { assert(a * b == expected); }`
const cmpSource = `([minimum], [balance]) => { assert(balance >= minimum); }`

func bigs(vals ...int64) []*big.Int {
	out := make([]*big.Int, len(vals))
	for i, v := range vals {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestEndToEnd(t *testing.T) {
	b := New()
	ctx := context.Background()

	circuit, err := b.Compile(ctx, mulSource, backend.WithCircuitName("mul"))
	require.NoError(t, err)
	require.Equal(t, 1, circuit.NbPublicInputs())

	proof, err := b.GenerateProof(ctx, circuit, backend.Inputs{
		Public:  bigs(100),
		Private: bigs(10, 10),
	})
	require.NoError(t, err)
	require.Len(t, proof.PublicInputs, 1)
	require.Equal(t, r1cs.FormatFieldElement(r1cs.NewElement(big.NewInt(100))), proof.PublicInputs[0])

	ok, err := b.VerifyProof(ctx, circuit, proof.Bytes, proof.PublicInputs)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsWrongPublicInput(t *testing.T) {
	b := New()
	ctx := context.Background()

	circuit, err := b.Compile(ctx, mulSource)
	require.NoError(t, err)
	proof, err := b.GenerateProof(ctx, circuit, backend.Inputs{Public: bigs(100), Private: bigs(10, 10)})
	require.NoError(t, err)

	ok, err := b.VerifyProof(ctx, circuit, proof.Bytes, []string{"0x65"}) // 101
	require.NoError(t, err, "a mismatched input is a rejection, not an error")
	require.False(t, ok)
}

func TestFalseEqualityRejectedBeforeProving(t *testing.T) {
	b := New()
	ctx := context.Background()

	circuit, err := b.Compile(ctx, mulSource)
	require.NoError(t, err)

	// 11 * 10 != 100: the witness solves, but the constraint check rejects
	// it with a typed error before the engine runs.
	_, err = b.GenerateProof(ctx, circuit, backend.Inputs{Public: bigs(100), Private: bigs(11, 10)})
	var uerr *r1cs.UnsatisfiedError
	require.True(t, errors.As(err, &uerr))
	var eerr *backend.EngineError
	require.False(t, errors.As(err, &eerr), "invalid inputs are not engine failures")
}

func TestFalseComparisonFailsAtWitness(t *testing.T) {
	b := New()
	ctx := context.Background()

	circuit, err := b.Compile(ctx, cmpSource)
	require.NoError(t, err)

	_, err = b.GenerateProof(ctx, circuit, backend.Inputs{Public: bigs(100), Private: bigs(50)})
	var werr *r1cs.WitnessError
	require.True(t, errors.As(err, &werr), "comparison failures surface before the engine runs")
}

func TestComparisonEndToEnd(t *testing.T) {
	b := New()
	ctx := context.Background()

	circuit, err := b.Compile(ctx, cmpSource)
	require.NoError(t, err)
	proof, err := b.GenerateProof(ctx, circuit, backend.Inputs{Public: bigs(100), Private: bigs(150)})
	require.NoError(t, err)

	ok, err := b.VerifyProof(ctx, circuit, proof.Bytes, proof.PublicInputs)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUnsupportedSourceFailsCompile(t *testing.T) {
	b := New()
	_, err := b.Compile(context.Background(), `([a], [b]) => { assert(a != b); }`)
	var uerr *r1cs.UnsupportedError
	require.True(t, errors.As(err, &uerr))
}

func TestSetupIsSharedAcrossConcurrentProofs(t *testing.T) {
	b := New()
	ctx := context.Background()
	compiled, err := b.Compile(ctx, mulSource)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			proof, err := b.GenerateProof(ctx, compiled, backend.Inputs{Public: bigs(100), Private: bigs(10, 10)})
			require.NoError(t, err)
			ok, err := b.VerifyProof(ctx, compiled, proof.Bytes, proof.PublicInputs)
			require.NoError(t, err)
			require.True(t, ok)
		}()
	}
	wg.Wait()
}

func TestRejectsForeignCircuit(t *testing.T) {
	b := New()
	_, err := b.GenerateProof(context.Background(), foreignCircuit{}, backend.Inputs{})
	require.Error(t, err)
	_, err = b.VerifyProof(context.Background(), foreignCircuit{}, nil, nil)
	require.Error(t, err)
}

type foreignCircuit struct{}

func (foreignCircuit) BackendName() string { return "other" }
func (foreignCircuit) NbPublicInputs() int { return 0 }

func TestSolanaFormatterIntegration(t *testing.T) {
	b := New()
	ctx := context.Background()

	compiled, err := b.Compile(ctx, mulSource, backend.WithEagerSetup())
	require.NoError(t, err)
	circuit := compiled.(*Circuit)

	proof, err := b.GenerateProof(ctx, circuit, backend.Inputs{Public: bigs(100), Private: bigs(10, 10)})
	require.NoError(t, err)

	chainProof, err := ChainProofBytes(proof.Bytes)
	require.NoError(t, err)
	rawVK, err := circuit.VerifyingKeyRaw(ctx)
	require.NoError(t, err)

	formatted, err := solana.New().FormatProof(chainProof, proof.PublicInputs, rawVK)
	require.NoError(t, err)
	require.Equal(t, 621, formatted.AccountSize, "one public input")
	require.Len(t, formatted.VerifyingKeyAccount, 621-solana.DiscriminatorSize)
}

func TestChainProofBytes(t *testing.T) {
	_, err := ChainProofBytes(make([]byte, 100))
	require.Error(t, err)

	got, err := ChainProofBytes(make([]byte, 324))
	require.NoError(t, err)
	require.Len(t, got, 256)
}
