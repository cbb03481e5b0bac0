// Package izinoir compiles restricted-JavaScript circuit descriptions into
// zero-knowledge proof artifacts. A circuit is parsed once into a canonical
// IR and lowered either to textual Noir source or directly to an R1CS,
// then proved through a pluggable backend.
package izinoir

import (
	"context"
	"fmt"
	"math/big"

	"github.com/francoperez03/izinoir/ast"
	"github.com/francoperez03/izinoir/backend"
	"github.com/francoperez03/izinoir/backend/groth16"
	"github.com/francoperez03/izinoir/backend/nargocli"
	"github.com/francoperez03/izinoir/noir"
	"github.com/francoperez03/izinoir/parser"
	"github.com/francoperez03/izinoir/r1cs"
)

// BackendKind names the built-in proving backends.
type BackendKind string

const (
	// BackendGroth16 is the in-process direct-R1CS Groth16 backend.
	BackendGroth16 BackendKind = "groth16"
	// BackendNargoCLI shells out to nargo and bb.
	BackendNargoCLI BackendKind = "nargo"
)

// NewBackend returns a built-in backend by name. The honk backend is not
// constructible here because it needs an injected toolchain and engine.
func NewBackend(kind BackendKind) (backend.ProvingSystem, error) {
	switch kind {
	case BackendGroth16:
		return groth16.New(), nil
	case BackendNargoCLI:
		return nargocli.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// Parse parses restricted-JavaScript circuit source into the canonical IR.
func Parse(source string) (*ast.ParsedCircuit, error) {
	return parser.Parse(source)
}

// GenerateNoir parses source and emits the equivalent Noir program.
func GenerateNoir(source string) (string, error) {
	circuit, err := parser.Parse(source)
	if err != nil {
		return "", err
	}
	return noir.Generate(circuit)
}

// BuildR1CS parses source and lowers it to an R1CS definition.
func BuildR1CS(source string, opts ...r1cs.BuildOption) (*r1cs.Definition, error) {
	circuit, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return r1cs.Build(circuit, opts...)
}

// Prove compiles source with the given backend and proves it for the given
// inputs in one shot. Callers that prove repeatedly should hold on to the
// compiled circuit instead, so setup key material is reused.
func Prove(ctx context.Context, system backend.ProvingSystem, source string, public, private []*big.Int, opts ...backend.CompileOption) (*backend.Proof, error) {
	circuit, err := system.Compile(ctx, source, opts...)
	if err != nil {
		return nil, err
	}
	return system.GenerateProof(ctx, circuit, backend.Inputs{Public: public, Private: private})
}
