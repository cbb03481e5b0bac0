// Package nargocli is the proving backend that shells out to a nargo and
// bb installation. It materializes a Noir project on disk, drives the
// binaries with exec.CommandContext, and reads artifacts back from the
// project's target directory.
package nargocli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/francoperez03/izinoir/ast"
	"github.com/francoperez03/izinoir/backend"
	"github.com/francoperez03/izinoir/logger"
	"github.com/francoperez03/izinoir/noir"
	"github.com/francoperez03/izinoir/parser"
	"github.com/francoperez03/izinoir/r1cs"
)

const engineName = "nargo-cli"

// Backend implements backend.ProvingSystem by orchestrating the nargo and
// bb command line tools.
type Backend struct {
	nargoPath string
	bbPath    string
}

// Option configures a Backend.
type Option func(*Backend)

// WithNargoPath overrides the nargo binary looked up on PATH.
func WithNargoPath(path string) Option {
	return func(b *Backend) { b.nargoPath = path }
}

// WithBBPath overrides the bb binary looked up on PATH.
func WithBBPath(path string) Option {
	return func(b *Backend) { b.bbPath = path }
}

// New returns a CLI backend. Binaries default to "nargo" and "bb" on PATH.
func New(opts ...Option) *Backend {
	b := &Backend{nargoPath: "nargo", bbPath: "bb"}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Circuit is a compiled circuit backed by an on-disk Noir project.
type Circuit struct {
	name   string
	dir    string
	parsed *ast.ParsedCircuit
}

func (c *Circuit) BackendName() string { return engineName }

func (c *Circuit) NbPublicInputs() int { return len(c.parsed.Public) }

// Dir returns the project directory holding Nargo.toml and artifacts.
func (c *Circuit) Dir() string { return c.dir }

// Compile writes the Noir project (Nargo.toml, src/main.nr) and runs
// `nargo compile`. The project directory comes from WithWorkDir or a fresh
// temp directory; it is left in place so prove and verify can reuse the
// compiled artifact.
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

	dir := cfg.WorkDir
	if dir == "" {
		dir, err = os.MkdirTemp("", "izinoir-"+cfg.CircuitName+"-")
		if err != nil {
			return nil, fmt.Errorf("create project dir: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Nargo.toml"), []byte(noir.NargoToml(cfg.CircuitName)), 0o644); err != nil {
		return nil, fmt.Errorf("write Nargo.toml: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "main.nr"), []byte(noirSrc), 0o644); err != nil {
		return nil, fmt.Errorf("write main.nr: %w", err)
	}
	if err := b.run(ctx, dir, b.nargoPath, "compile"); err != nil {
		return nil, err
	}

	logger.Logger().Debug().Str("circuit", cfg.CircuitName).Str("dir", dir).Msg("compiled noir project")
	return &Circuit{name: cfg.CircuitName, dir: dir, parsed: parsed}, nil
}

// GenerateProof writes Prover.toml, executes the witness with nargo, and
// proves with bb. The proof bytes are read back from the project's target
// directory; public inputs come back in the canonical 0x-hex form shared
// by all backends.
func (b *Backend) GenerateProof(ctx context.Context, circuit backend.CompiledCircuit, inputs backend.Inputs) (*backend.Proof, error) {
	c, err := b.own(circuit)
	if err != nil {
		return nil, err
	}
	toml, err := noir.ProverToml(c.parsed, inputs.Public, inputs.Private)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(c.dir, "Prover.toml"), []byte(toml), 0o644); err != nil {
		return nil, fmt.Errorf("write Prover.toml: %w", err)
	}
	if err := b.run(ctx, c.dir, b.nargoPath, "execute", "witness"); err != nil {
		return nil, err
	}

	bytecodePath := filepath.Join(c.dir, "target", c.name+".json")
	witnessPath := filepath.Join(c.dir, "target", "witness.gz")
	proofDir := filepath.Join(c.dir, "target", "proof")
	if err := b.run(ctx, c.dir, b.bbPath, "prove", "-b", bytecodePath, "-w", witnessPath, "-o", proofDir); err != nil {
		return nil, err
	}
	proofBytes, err := os.ReadFile(filepath.Join(proofDir, "proof"))
	if err != nil {
		return nil, backend.NewEngineError(engineName, "read proof", err)
	}

	publics := make([]string, len(inputs.Public))
	for i, v := range inputs.Public {
		publics[i] = r1cs.FormatFieldElement(r1cs.NewElement(v))
	}
	return &backend.Proof{Bytes: proofBytes, PublicInputs: publics}, nil
}

// VerifyProof stages the proof and public inputs under target/ and runs
// `bb verify`, generating the verifying key first if the project does not
// have one yet. A non-zero bb exit means the proof was rejected; staging
// failures are errors.
func (b *Backend) VerifyProof(ctx context.Context, circuit backend.CompiledCircuit, proofBytes []byte, publicInputs []string) (bool, error) {
	c, err := b.own(circuit)
	if err != nil {
		return false, err
	}
	if len(publicInputs) != len(c.parsed.Public) {
		return false, fmt.Errorf("expected %d public inputs, got %d", len(c.parsed.Public), len(publicInputs))
	}

	bytecodePath := filepath.Join(c.dir, "target", c.name+".json")
	vkPath := filepath.Join(c.dir, "target", "vk", "vk")
	if _, err := os.Stat(vkPath); err != nil {
		if err := b.run(ctx, c.dir, b.bbPath, "write_vk", "-b", bytecodePath, "-o", filepath.Dir(vkPath)); err != nil {
			return false, err
		}
	}
	verifyDir := filepath.Join(c.dir, "target", "verify")
	if err := os.MkdirAll(verifyDir, 0o755); err != nil {
		return false, fmt.Errorf("create verify dir: %w", err)
	}
	proofPath := filepath.Join(verifyDir, "proof")
	if err := os.WriteFile(proofPath, proofBytes, 0o644); err != nil {
		return false, fmt.Errorf("write proof: %w", err)
	}
	// Inputs arrive in the canonical 0x-hex form or decimal; bb reads
	// decimal, one value per line.
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
	inputsPath := filepath.Join(verifyDir, "public_inputs")
	if err := os.WriteFile(inputsPath, []byte(strings.Join(decimals, "\n")+"\n"), 0o644); err != nil {
		return false, fmt.Errorf("write public inputs: %w", err)
	}

	err = b.run(ctx, c.dir, b.bbPath, "verify", "-k", vkPath, "-p", proofPath, "-i", inputsPath)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Logger().Debug().Str("circuit", c.name).Msg("proof rejected by bb")
			return false, nil
		}
		return false, err
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

// run executes a binary in dir, capturing stderr for diagnostics.
func (b *Backend) run(ctx context.Context, dir, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	logger.Logger().Debug().Str("bin", bin).Strs("args", args).Msg("exec")
	if err := cmd.Run(); err != nil {
		return backend.NewEngineErrorStderr(engineName, bin+" "+strings.Join(args, " "), stderr.String(), err)
	}
	return nil
}
