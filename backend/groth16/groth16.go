// Package groth16 is the in-process proving backend over the direct R1CS
// path. It lowers the IR with the r1cs builder, replays the definition
// through gnark and uses gnark's Groth16 implementation as the external
// proving engine, yielding compact proofs suitable for on-chain
// verification.
package groth16

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	gnarkgroth16 "github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	cs "github.com/consensys/gnark/frontend/cs/r1cs"
	"golang.org/x/sync/singleflight"

	"github.com/francoperez03/izinoir/backend"
	"github.com/francoperez03/izinoir/logger"
	"github.com/francoperez03/izinoir/parser"
	"github.com/francoperez03/izinoir/r1cs"
)

const engineName = "gnark-groth16"

// chainProofSize is the A|B|C segment of a raw proof, the part on-chain
// verifiers consume.
const chainProofSize = 256

// ChainProofBytes extracts the 256-byte A|B|C segment from a raw proof.
// Raw proofs carry trailing commitment fields the on-chain verifier does
// not read; replayed circuits never commit, so those bytes are always the
// empty-commitment suffix.
func ChainProofBytes(proofBytes []byte) ([]byte, error) {
	if len(proofBytes) < chainProofSize {
		return nil, fmt.Errorf("raw proof is %d bytes, need at least %d", len(proofBytes), chainProofSize)
	}
	return proofBytes[:chainProofSize], nil
}

// Backend implements backend.ProvingSystem.
type Backend struct{}

// New returns the Groth16 backend.
func New() *Backend {
	return &Backend{}
}

// Circuit is a compiled circuit with its R1CS definition and, once setup
// has run, cached key material. Key material is write-once: concurrent
// first use runs setup exactly once and either both keys are published or
// neither is.
type Circuit struct {
	name string
	def  *r1cs.Definition
	ccs  constraint.ConstraintSystem

	setupGroup singleflight.Group
	mu         sync.RWMutex
	pk         gnarkgroth16.ProvingKey
	vk         gnarkgroth16.VerifyingKey
}

func (c *Circuit) BackendName() string { return engineName }

func (c *Circuit) NbPublicInputs() int { return len(c.def.PublicInputs) }

// Definition exposes the lowered constraint system.
func (c *Circuit) Definition() *r1cs.Definition { return c.def }

// VerifyingKeyRaw returns the verifying key in gnark raw (uncompressed,
// big-endian) form, running setup first if needed. This is the encoding the
// chain formatter consumes.
func (c *Circuit) VerifyingKeyRaw(ctx context.Context) ([]byte, error) {
	if err := c.ensureSetup(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	vk := c.vk
	c.mu.RUnlock()
	var buf bytes.Buffer
	if _, err := vk.WriteRawTo(&buf); err != nil {
		return nil, backend.NewEngineError(engineName, "serialize verifying key", err)
	}
	return buf.Bytes(), nil
}

// Compile parses the source, lowers it to R1CS and compiles the replayed
// constraint system. With WithEagerSetup the trusted setup runs here;
// otherwise it is deferred to the first prove or verify.
func (b *Backend) Compile(ctx context.Context, source string, opts ...backend.CompileOption) (backend.CompiledCircuit, error) {
	cfg := backend.NewCompileConfig(opts...)

	parsed, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	var buildOpts []r1cs.BuildOption
	if cfg.ComparisonBits != 0 {
		buildOpts = append(buildOpts, r1cs.WithComparisonBits(cfg.ComparisonBits))
	}
	def, err := r1cs.Build(parsed, buildOpts...)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), cs.NewBuilder, newReplayTemplate(def))
	if err != nil {
		return nil, backend.NewEngineError(engineName, "compile", err)
	}
	logger.Logger().Debug().
		Str("circuit", cfg.CircuitName).
		Int("nbConstraints", ccs.GetNbConstraints()).
		Msg("compiled groth16 circuit")

	circuit := &Circuit{name: cfg.CircuitName, def: def, ccs: ccs}
	if cfg.EagerSetup {
		if err := circuit.ensureSetup(ctx); err != nil {
			return nil, err
		}
	}
	return circuit, nil
}

// GenerateProof solves the witness (including auxiliary computations),
// lazily runs setup, and proves. A falsified comparison surfaces as a
// r1cs.WitnessError and a falsified equality as a r1cs.UnsatisfiedError,
// both before the engine runs; an EngineError always means the engine
// itself failed on a satisfiable witness.
func (b *Backend) GenerateProof(ctx context.Context, circuit backend.CompiledCircuit, inputs backend.Inputs) (*backend.Proof, error) {
	c, err := b.own(circuit)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, err := c.def.Solve(inputs.Public, inputs.Private)
	if err != nil {
		return nil, err
	}
	// gnark's prover aborts on an unsatisfiable witness instead of emitting
	// a proof, so falsified equalities are rejected here with a typed error.
	if err := c.def.CheckWitness(w); err != nil {
		return nil, err
	}
	if err := c.ensureSetup(ctx); err != nil {
		return nil, err
	}

	fullWitness, err := frontend.NewWitness(assignment(c.def, w, nil), ecc.BN254.ScalarField())
	if err != nil {
		return nil, backend.NewEngineError(engineName, "witness", err)
	}
	c.mu.RLock()
	pk := c.pk
	c.mu.RUnlock()

	proof, err := gnarkgroth16.Prove(c.ccs, pk, fullWitness)
	if err != nil {
		return nil, backend.NewEngineError(engineName, "prove", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteRawTo(&buf); err != nil {
		return nil, backend.NewEngineError(engineName, "serialize proof", err)
	}

	publics := make([]string, len(c.def.PublicInputs))
	for i, wid := range c.def.PublicInputs {
		publics[i] = r1cs.FormatFieldElement(w[wid])
	}
	return &backend.Proof{Bytes: buf.Bytes(), PublicInputs: publics}, nil
}

// VerifyProof verifies proof bytes against hex-encoded public inputs,
// materializing the verifying key from cached setup data if needed. It
// works with or without a prior GenerateProof call.
func (b *Backend) VerifyProof(ctx context.Context, circuit backend.CompiledCircuit, proofBytes []byte, publicInputs []string) (bool, error) {
	c, err := b.own(circuit)
	if err != nil {
		return false, err
	}
	if len(publicInputs) != len(c.def.PublicInputs) {
		return false, fmt.Errorf("expected %d public inputs, got %d", len(c.def.PublicInputs), len(publicInputs))
	}
	values := make([]*big.Int, len(publicInputs))
	for i, s := range publicInputs {
		e, err := r1cs.ParseFieldElement(s)
		if err != nil {
			return false, err
		}
		values[i] = new(big.Int)
		e.BigInt(values[i])
	}
	if err := c.ensureSetup(ctx); err != nil {
		return false, err
	}

	proof := gnarkgroth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return false, backend.NewEngineError(engineName, "decode proof", err)
	}
	publicWitness, err := frontend.NewWitness(assignment(c.def, nil, values), ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, backend.NewEngineError(engineName, "public witness", err)
	}
	c.mu.RLock()
	vk := c.vk
	c.mu.RUnlock()

	if err := gnarkgroth16.Verify(proof, vk, publicWitness); err != nil {
		logger.Logger().Debug().Err(err).Str("circuit", c.name).Msg("proof rejected")
		return false, nil
	}
	return true, nil
}

func (b *Backend) own(circuit backend.CompiledCircuit) (*Circuit, error) {
	c, ok := circuit.(*Circuit)
	if !ok {
		return nil, fmt.Errorf("circuit was compiled by backend %q, not %q", circuit.BackendName(), engineName)
	}
	return c, nil
}

// ensureSetup runs trusted setup at most once per circuit. Concurrent
// callers share a single in-flight setup; a failed setup publishes nothing
// so a later call can retry.
func (c *Circuit) ensureSetup(ctx context.Context) error {
	c.mu.RLock()
	ready := c.pk != nil && c.vk != nil
	c.mu.RUnlock()
	if ready {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err, _ := c.setupGroup.Do("setup", func() (interface{}, error) {
		c.mu.RLock()
		ready := c.pk != nil && c.vk != nil
		c.mu.RUnlock()
		if ready {
			return nil, nil
		}
		pk, vk, err := gnarkgroth16.Setup(c.ccs)
		if err != nil {
			return nil, backend.NewEngineError(engineName, "setup", err)
		}
		c.mu.Lock()
		c.pk, c.vk = pk, vk
		c.mu.Unlock()
		logger.Logger().Debug().Str("circuit", c.name).Msg("trusted setup complete")
		return nil, nil
	})
	return err
}
