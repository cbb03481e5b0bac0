// Package backend defines the proving-system contract every backend
// implements: compile a circuit, generate a proof for concrete inputs,
// verify a proof. Callers stay backend-agnostic; backends differ in
// environment and proof-size tradeoffs, not in surface.
package backend

import (
	"context"
	"math/big"
)

// Inputs are the concrete argument values for one proof request, aligned
// positionally with the circuit's public and private parameter lists.
type Inputs struct {
	Public  []*big.Int
	Private []*big.Int
}

// Proof is the generic proof record every backend produces. PublicInputs
// are 0x-prefixed 32-byte big-endian field elements.
type Proof struct {
	Bytes        []byte
	PublicInputs []string
}

// CompiledCircuit is a backend-owned compiled artifact. It may cache
// trusted-setup key material; witness data never outlives a proof request.
type CompiledCircuit interface {
	// BackendName identifies the backend that produced the circuit.
	BackendName() string
	// NbPublicInputs is the number of public parameters.
	NbPublicInputs() int
}

// ProvingSystem is the uniform three-method contract.
type ProvingSystem interface {
	Compile(ctx context.Context, source string, opts ...CompileOption) (CompiledCircuit, error)
	GenerateProof(ctx context.Context, circuit CompiledCircuit, inputs Inputs) (*Proof, error)
	VerifyProof(ctx context.Context, circuit CompiledCircuit, proof []byte, publicInputs []string) (bool, error)
}

// CompileConfig carries the cross-backend compile options.
type CompileConfig struct {
	// EagerSetup runs trusted setup during Compile instead of lazily on
	// first prove or verify.
	EagerSetup bool
	// ComparisonBits overrides the comparison range width (R1CS backend).
	ComparisonBits int
	// CircuitName names the circuit in generated project files.
	CircuitName string
	// WorkDir points at the pre-compiled circuit project (CLI backend).
	WorkDir string
}

// CompileOption mutates a CompileConfig.
type CompileOption func(*CompileConfig)

// NewCompileConfig applies opts over defaults.
func NewCompileConfig(opts ...CompileOption) CompileConfig {
	cfg := CompileConfig{CircuitName: "circuit"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithEagerSetup makes Compile perform trusted setup immediately.
func WithEagerSetup() CompileOption {
	return func(cfg *CompileConfig) { cfg.EagerSetup = true }
}

// WithComparisonBits sets the comparison range width for the R1CS backend.
func WithComparisonBits(n int) CompileOption {
	return func(cfg *CompileConfig) { cfg.ComparisonBits = n }
}

// WithCircuitName names the circuit in generated artifacts.
func WithCircuitName(name string) CompileOption {
	return func(cfg *CompileConfig) { cfg.CircuitName = name }
}

// WithWorkDir points the CLI backend at a pre-compiled circuit directory.
func WithWorkDir(dir string) CompileOption {
	return func(cfg *CompileConfig) { cfg.WorkDir = dir }
}
