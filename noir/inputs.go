package noir

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/francoperez03/izinoir/ast"
)

// ProverToml renders a Prover.toml assigning the given inputs to the circuit
// parameters. Values are decimal strings, one key per parameter, public
// parameters first, both groups in declaration order.
func ProverToml(circuit *ast.ParsedCircuit, public, private []*big.Int) (string, error) {
	if len(public) != len(circuit.Public) {
		return "", fmt.Errorf("noir: expected %d public inputs, got %d", len(circuit.Public), len(public))
	}
	if len(private) != len(circuit.Private) {
		return "", fmt.Errorf("noir: expected %d private inputs, got %d", len(circuit.Private), len(private))
	}
	var sb strings.Builder
	write := func(params []ast.CircuitParam, values []*big.Int) {
		for i, p := range params {
			fmt.Fprintf(&sb, "%s = \"%s\"\n", p.Name, values[i].String())
		}
	}
	write(circuit.Public, public)
	write(circuit.Private, private)
	return sb.String(), nil
}

// NargoToml renders the minimal project manifest nargo needs to compile a
// generated circuit.
func NargoToml(name string) string {
	return fmt.Sprintf("[package]\nname = %q\ntype = \"bin\"\n\n[dependencies]\n", name)
}
