package r1cs

import (
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Witness is a sparse witness map. Index 0 always holds the field's
// multiplicative identity and is never reassigned.
type Witness map[int]fr.Element

// Solve derives the full witness for the given inputs. Inputs align
// positionally with the circuit's parameter lists and are reduced into the
// field before assignment.
//
// Solving interleaves two mechanisms until fixpoint: auxiliary computations
// whose sources are known, and constraints with a single remaining unknown.
// An auxiliary computation that cannot produce a valid value (negative or
// out-of-range comparison difference) returns a WitnessError: the asserted
// relation is false for these inputs. A violated equality is deliberately
// NOT an error here; CheckWitness reports it separately so callers decide
// whether to abort.
func (d *Definition) Solve(public, private []*big.Int) (Witness, error) {
	if len(public) != len(d.PublicInputs) {
		return nil, witnessErr(-1, "expected %d public inputs, got %d", len(d.PublicInputs), len(public))
	}
	if len(private) != len(d.PrivateInputs) {
		return nil, witnessErr(-1, "expected %d private inputs, got %d", len(d.PrivateInputs), len(private))
	}

	w := make(Witness, d.NumWitnesses)
	solved := bitset.New(uint(d.NumWitnesses))

	set := func(idx int, v fr.Element) {
		w[idx] = v
		solved.Set(uint(idx))
	}

	set(0, one())
	for i, wid := range d.PrivateInputs {
		set(wid, NewElement(private[i]))
	}
	for i, wid := range d.PublicInputs {
		set(wid, NewElement(public[i]))
	}

	auxDone := make([]bool, len(d.Aux))
	for {
		progress := false

		for i := range d.Aux {
			if auxDone[i] {
				continue
			}
			done, err := d.runAux(&d.Aux[i], w, solved, set)
			if err != nil {
				return nil, err
			}
			if done {
				auxDone[i] = true
				progress = true
			}
		}

		for i := range d.Constraints {
			if d.propagate(&d.Constraints[i], w, solved, set) {
				progress = true
			}
		}

		if !progress {
			break
		}
	}

	for i := 0; i < d.NumWitnesses; i++ {
		if !solved.Test(uint(i)) {
			return nil, witnessErr(i, "witness cannot be derived from inputs, constraints or auxiliary computations")
		}
	}
	return w, nil
}

// runAux executes one auxiliary computation if its sources are available.
func (d *Definition) runAux(aux *AuxComputation, w Witness, solved *bitset.BitSet, set func(int, fr.Element)) (bool, error) {
	switch aux.Kind {
	case AuxSubtract:
		if !solved.Test(uint(aux.Left)) || !solved.Test(uint(aux.Right)) {
			return false, nil
		}
		var lb, rb big.Int
		lv := w[aux.Left]
		rv := w[aux.Right]
		lv.BigInt(&lb)
		rv.BigInt(&rb)
		diff := new(big.Int).Sub(&lb, &rb)
		diff.Add(diff, big.NewInt(aux.Offset))
		if diff.Sign() < 0 {
			return false, witnessErr(aux.Target, "comparison difference %s is negative: asserted relation does not hold", diff)
		}
		set(aux.Target, NewElement(diff))
		return true, nil

	case AuxBitDecompose:
		if !solved.Test(uint(aux.Source)) {
			return false, nil
		}
		var vb big.Int
		sv := w[aux.Source]
		sv.BigInt(&vb)
		if vb.BitLen() > aux.NumBits {
			return false, witnessErr(aux.Source, "value %s does not fit in %d bits", &vb, aux.NumBits)
		}
		for i, wid := range aux.Bits {
			var bit fr.Element
			bit.SetUint64(uint64(vb.Bit(i)))
			set(wid, bit)
		}
		return true, nil
	}
	return false, witnessErr(-1, "unknown auxiliary computation kind %d", aux.Kind)
}

// propagate solves a constraint with a single unknown. The builder only
// emits solvable unknowns as the lone C term or inside A with B and C fully
// known; both cases are handled.
func (d *Definition) propagate(c *Constraint, w Witness, solved *bitset.BitSet, set func(int, fr.Element)) bool {
	known := func(lc LinearCombination) bool {
		for _, t := range lc {
			if !solved.Test(uint(t.WID)) {
				return false
			}
		}
		return true
	}

	aKnown, bKnown, cKnown := known(c.A), known(c.B), known(c.C)

	// single unknown as the lone term of C: t = (A·w)(B·w) / coeff
	if aKnown && bKnown && !cKnown {
		if len(c.C) != 1 || solved.Test(uint(c.C[0].WID)) || c.C[0].Coeff.IsZero() {
			return false
		}
		av, _ := c.A.Eval(w)
		bv, _ := c.B.Eval(w)
		var res, inv fr.Element
		res.Mul(&av, &bv)
		inv.Inverse(&c.C[0].Coeff)
		res.Mul(&res, &inv)
		set(c.C[0].WID, res)
		return true
	}

	// single linear unknown in A with B and C known:
	// coeff·t = (C·w)/(B·w) - Σ known A terms, provided B·w != 0
	if !aKnown && bKnown && cKnown {
		unknownIdx := -1
		for i, t := range c.A {
			if !solved.Test(uint(t.WID)) {
				if unknownIdx != -1 {
					return false
				}
				unknownIdx = i
			}
		}
		ut := c.A[unknownIdx]
		if ut.Coeff.IsZero() {
			return false
		}
		bv, _ := c.B.Eval(w)
		if bv.IsZero() {
			return false
		}
		cv, _ := c.C.Eval(w)
		var rest, t, res, inv fr.Element
		for i, term := range c.A {
			if i == unknownIdx {
				continue
			}
			v := w[term.WID]
			t.Mul(&term.Coeff, &v)
			rest.Add(&rest, &t)
		}
		inv.Inverse(&bv)
		res.Mul(&cv, &inv)
		res.Sub(&res, &rest)
		inv.Inverse(&ut.Coeff)
		res.Mul(&res, &inv)
		set(ut.WID, res)
		return true
	}

	return false
}

// CheckWitness verifies (A·w)(B·w) = (C·w) for every constraint and returns
// an UnsatisfiedError naming the first violated one.
func (d *Definition) CheckWitness(w Witness) error {
	for i, c := range d.Constraints {
		av, ok := c.A.Eval(w)
		if !ok {
			return fmt.Errorf("constraint %d references an unassigned witness", i)
		}
		bv, _ := c.B.Eval(w)
		cv, _ := c.C.Eval(w)
		var prod fr.Element
		prod.Mul(&av, &bv)
		if !prod.Equal(&cv) {
			return &UnsatisfiedError{
				Constraint: i,
				Msg:        fmt.Sprintf("(%s)·(%s) != %s", av.String(), bv.String(), cv.String()),
			}
		}
	}
	return nil
}

// Vector returns the witness as a dense slice indexed by witness id.
func (w Witness) Vector(numWitnesses int) []fr.Element {
	out := make([]fr.Element, numWitnesses)
	for idx, v := range w {
		if idx < numWitnesses {
			out[idx] = v
		}
	}
	return out
}
