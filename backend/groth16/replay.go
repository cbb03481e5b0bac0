package groth16

import (
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/francoperez03/izinoir/r1cs"
)

// replayCircuit feeds an already-lowered r1cs.Definition through the gnark
// frontend. Every witness of the definition becomes a declared variable
// (public parameters public, everything else secret) and Define replays the
// constraint list verbatim, so the engine proves exactly the system the
// builder produced.
//
// The definition orders witnesses constant-one first, then private inputs,
// then public inputs, then intermediates; gnark orders public before
// secret. The index maps below reconcile the two orderings.
type replayCircuit struct {
	Public []frontend.Variable `gnark:",public"`
	Hidden []frontend.Variable `gnark:",secret"`

	def *r1cs.Definition
}

// newReplayTemplate sizes the variable slices for frontend.Compile.
func newReplayTemplate(def *r1cs.Definition) *replayCircuit {
	return &replayCircuit{
		Public: make([]frontend.Variable, len(def.PublicInputs)),
		Hidden: make([]frontend.Variable, hiddenCount(def)),
		def:    def,
	}
}

func hiddenCount(def *r1cs.Definition) int {
	return def.NumWitnesses - 1 - len(def.PublicInputs)
}

func (c *replayCircuit) Define(api frontend.API) error {
	vars := make([]frontend.Variable, c.def.NumWitnesses)
	vars[0] = 1
	for i, wid := range c.def.PublicInputs {
		vars[wid] = c.Public[i]
	}
	hid := 0
	for wid := 1; wid < c.def.NumWitnesses; wid++ {
		if vars[wid] == nil {
			vars[wid] = c.Hidden[hid]
			hid++
		}
	}

	for _, con := range c.def.Constraints {
		a := lcVar(api, vars, con.A)
		b := lcVar(api, vars, con.B)
		cc := lcVar(api, vars, con.C)
		api.AssertIsEqual(api.Mul(a, b), cc)
	}
	return nil
}

func lcVar(api frontend.API, vars []frontend.Variable, lc r1cs.LinearCombination) frontend.Variable {
	acc := frontend.Variable(0)
	for _, t := range lc {
		coeff := new(big.Int)
		t.Coeff.BigInt(coeff)
		acc = api.Add(acc, api.Mul(coeff, vars[t.WID]))
	}
	return acc
}

// assignment builds the witness assignment matching the template shape.
// With a nil witness the secret side stays unassigned (public-only witness
// for verification).
func assignment(def *r1cs.Definition, w r1cs.Witness, publicValues []*big.Int) *replayCircuit {
	a := &replayCircuit{
		Public: make([]frontend.Variable, len(def.PublicInputs)),
		Hidden: make([]frontend.Variable, hiddenCount(def)),
	}
	if w != nil {
		assigned := make([]bool, def.NumWitnesses)
		assigned[0] = true
		for i, wid := range def.PublicInputs {
			a.Public[i] = elementValue(w, wid)
			assigned[wid] = true
		}
		hid := 0
		for wid := 1; wid < def.NumWitnesses; wid++ {
			if !assigned[wid] {
				a.Hidden[hid] = elementValue(w, wid)
				hid++
			}
		}
		return a
	}
	for i := range def.PublicInputs {
		a.Public[i] = publicValues[i]
	}
	return a
}

func elementValue(w r1cs.Witness, wid int) *big.Int {
	v := w[wid]
	out := new(big.Int)
	v.BigInt(out)
	return out
}
