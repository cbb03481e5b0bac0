// Package honk is the Noir/UltraHonk proving backend. It generates Noir
// source from the IR and delegates compilation, witness execution, and
// proving to injected toolchain and engine implementations, so the package
// carries no dependency on any particular Noir distribution.
package honk

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/francoperez03/izinoir/backend"
	"github.com/francoperez03/izinoir/logger"
	"github.com/francoperez03/izinoir/noir"
	"github.com/francoperez03/izinoir/parser"
	"github.com/francoperez03/izinoir/r1cs"
)

const engineName = "noir-ultrahonk"

// Toolchain compiles Noir source and executes witnesses. Implementations
// typically wrap a nargo installation or an embedded ACVM.
type Toolchain interface {
	// CompileNoir compiles a Noir program and returns its ACIR bytecode.
	CompileNoir(ctx context.Context, source string) (bytecode []byte, err error)
	// Execute runs the compiled program against named inputs and returns
	// the serialized witness stack.
	Execute(ctx context.Context, bytecode []byte, inputs map[string]string) (witness []byte, err error)
}

// Engine produces and checks UltraHonk proofs over ACIR bytecode.
type Engine interface {
	Setup(ctx context.Context, bytecode []byte) (verifyingKey []byte, err error)
	Prove(ctx context.Context, bytecode, witness []byte) (proof []byte, err error)
	Verify(ctx context.Context, verifyingKey, proof []byte, publicInputs []string) (bool, error)
}

// Backend implements backend.ProvingSystem over an injected Toolchain and
// Engine.
type Backend struct {
	toolchain Toolchain
	engine    Engine
}

// New returns a honk backend. Both dependencies are required.
func New(toolchain Toolchain, engine Engine) (*Backend, error) {
	if toolchain == nil {
		return nil, fmt.Errorf("honk: nil toolchain")
	}
	if engine == nil {
		return nil, fmt.Errorf("honk: nil engine")
	}
	return &Backend{toolchain: toolchain, engine: engine}, nil
}

// Circuit carries the generated Noir source, its compiled bytecode, and
// the witness name layout needed to feed the toolchain.
type Circuit struct {
	name     string
	source   string
	bytecode []byte
	public   []string
	private  []string

	setupGroup singleflight.Group
	mu         sync.RWMutex
	vk         []byte
}

func (c *Circuit) BackendName() string { return engineName }

func (c *Circuit) NbPublicInputs() int { return len(c.public) }

// NoirSource returns the generated Noir program.
func (c *Circuit) NoirSource() string { return c.source }

// Compile parses the source, emits Noir, and compiles it through the
// toolchain.
func (b *Backend) Compile(ctx context.Context, source string, opts ...backend.CompileOption) (backend.CompiledCircuit, error) {
	cfg := backend.NewCompileConfig(opts...)

	parsed, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	noirSrc, err := noir.Generate(parsed)
	if err != nil {
		return nil, err
	}
	bytecode, err := b.toolchain.CompileNoir(ctx, noirSrc)
	if err != nil {
		return nil, backend.NewEngineError(engineName, "compile", err)
	}

	public := make([]string, len(parsed.Public))
	for i, p := range parsed.Public {
		public[i] = p.Name
	}
	private := make([]string, len(parsed.Private))
	for i, p := range parsed.Private {
		private[i] = p.Name
	}
	logger.Logger().Debug().
		Str("circuit", cfg.CircuitName).
		Int("bytecode", len(bytecode)).
		Msg("compiled noir circuit")

	circuit := &Circuit{
		name:     cfg.CircuitName,
		source:   noirSrc,
		bytecode: bytecode,
		public:   public,
		private:  private,
	}
	if cfg.EagerSetup {
		if err := circuit.ensureSetup(ctx, b.engine); err != nil {
			return nil, err
		}
	}
	return circuit, nil
}

// GenerateProof executes the witness and proves with UltraHonk. The
// toolchain consumes decimal input values; the returned proof carries
// public inputs in the canonical 0x-hex form shared by all backends.
func (b *Backend) GenerateProof(ctx context.Context, circuit backend.CompiledCircuit, inputs backend.Inputs) (*backend.Proof, error) {
	c, err := b.own(circuit)
	if err != nil {
		return nil, err
	}
	if len(inputs.Public) != len(c.public) || len(inputs.Private) != len(c.private) {
		return nil, fmt.Errorf("expected %d public and %d private inputs, got %d and %d",
			len(c.public), len(c.private), len(inputs.Public), len(inputs.Private))
	}

	named := make(map[string]string, len(c.public)+len(c.private))
	publics := make([]string, len(c.public))
	for i, name := range c.public {
		named[name] = inputs.Public[i].String()
		publics[i] = r1cs.FormatFieldElement(r1cs.NewElement(inputs.Public[i]))
	}
	for i, name := range c.private {
		named[name] = inputs.Private[i].String()
	}

	witness, err := b.toolchain.Execute(ctx, c.bytecode, named)
	if err != nil {
		return nil, backend.NewEngineError(engineName, "execute", err)
	}
	proof, err := b.engine.Prove(ctx, c.bytecode, witness)
	if err != nil {
		return nil, backend.NewEngineError(engineName, "prove", err)
	}
	return &backend.Proof{Bytes: proof, PublicInputs: publics}, nil
}

// VerifyProof checks a proof against public inputs in either the canonical
// 0x-hex form or decimal; the engine always sees decimal.
func (b *Backend) VerifyProof(ctx context.Context, circuit backend.CompiledCircuit, proofBytes []byte, publicInputs []string) (bool, error) {
	c, err := b.own(circuit)
	if err != nil {
		return false, err
	}
	if len(publicInputs) != len(c.public) {
		return false, fmt.Errorf("expected %d public inputs, got %d", len(c.public), len(publicInputs))
	}
	decimals := make([]string, len(publicInputs))
	for i, s := range publicInputs {
		e, err := r1cs.ParseInput(s)
		if err != nil {
			return false, err
		}
		var v big.Int
		e.BigInt(&v)
		decimals[i] = v.String()
	}
	if err := c.ensureSetup(ctx, b.engine); err != nil {
		return false, err
	}
	c.mu.RLock()
	vk := c.vk
	c.mu.RUnlock()

	ok, err := b.engine.Verify(ctx, vk, proofBytes, decimals)
	if err != nil {
		return false, backend.NewEngineError(engineName, "verify", err)
	}
	return ok, nil
}

func (b *Backend) own(circuit backend.CompiledCircuit) (*Circuit, error) {
	c, ok := circuit.(*Circuit)
	if !ok {
		return nil, fmt.Errorf("circuit was compiled by backend %q, not %q", circuit.BackendName(), engineName)
	}
	return c, nil
}

func (c *Circuit) ensureSetup(ctx context.Context, engine Engine) error {
	c.mu.RLock()
	ready := c.vk != nil
	c.mu.RUnlock()
	if ready {
		return nil
	}
	_, err, _ := c.setupGroup.Do("setup", func() (interface{}, error) {
		c.mu.RLock()
		ready := c.vk != nil
		c.mu.RUnlock()
		if ready {
			return nil, nil
		}
		vk, err := engine.Setup(ctx, c.bytecode)
		if err != nil {
			return nil, backend.NewEngineError(engineName, "setup", err)
		}
		c.mu.Lock()
		c.vk = vk
		c.mu.Unlock()
		return nil, nil
	})
	return err
}
