package r1cs

import (
	"fmt"

	"github.com/blang/semver/v4"

	"github.com/francoperez03/izinoir/utils"
)

// definitionMagic marks serialized definitions ("IZR1").
const definitionMagic uint32 = 0x495a5231

// FormatVersion stamps serialized definitions. Major bumps mean the layout
// changed incompatibly and old artifacts must be recompiled.
const FormatVersion = "1.0.0"

// Serialize encodes the definition into a self-describing binary artifact.
// The encoding is deterministic: the same definition always produces the
// same bytes.
func (d *Definition) Serialize() []byte {
	o := &utils.OutputBuf{}
	o.AppendUint32(definitionMagic)
	o.AppendString(FormatVersion)
	o.AppendUint32(uint32(d.NumWitnesses))
	o.AppendUint32(uint32(d.ComparisonBits))

	appendIndices := func(indices []int) {
		o.AppendUint32(uint32(len(indices)))
		for _, idx := range indices {
			o.AppendUint32(uint32(idx))
		}
	}
	appendLC := func(lc LinearCombination) {
		o.AppendUint32(uint32(len(lc)))
		for _, t := range lc {
			o.AppendElement(t.Coeff)
			o.AppendUint32(uint32(t.WID))
		}
	}

	appendIndices(d.PublicInputs)
	appendIndices(d.PrivateInputs)

	o.AppendUint32(uint32(len(d.Constraints)))
	for _, c := range d.Constraints {
		appendLC(c.A)
		appendLC(c.B)
		appendLC(c.C)
	}

	o.AppendUint32(uint32(len(d.Aux)))
	for _, aux := range d.Aux {
		o.AppendUint8(uint8(aux.Kind))
		switch aux.Kind {
		case AuxSubtract:
			o.AppendUint32(uint32(aux.Target))
			o.AppendUint32(uint32(aux.Left))
			o.AppendUint32(uint32(aux.Right))
			o.AppendInt64(aux.Offset)
		case AuxBitDecompose:
			o.AppendUint32(uint32(aux.Source))
			o.AppendUint32(uint32(aux.NumBits))
			appendIndices(aux.Bits)
		}
	}
	return o.Bytes()
}

// Deserialize decodes a definition produced by Serialize, rejecting
// artifacts from an incompatible format major version.
func Deserialize(data []byte) (*Definition, error) {
	i := utils.NewInputBuf(data)
	if magic := i.ReadUint32(); magic != definitionMagic {
		return nil, fmt.Errorf("not an r1cs definition artifact (magic %#x)", magic)
	}
	gotVersion := i.ReadString()
	artifact, err := semver.Parse(gotVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact version %q: %w", gotVersion, err)
	}
	current := semver.MustParse(FormatVersion)
	if artifact.Major != current.Major {
		return nil, fmt.Errorf("artifact version %s is incompatible with %s, recompile the circuit", artifact, current)
	}

	d := &Definition{
		NumWitnesses:   int(i.ReadUint32()),
		ComparisonBits: int(i.ReadUint32()),
	}

	readIndices := func() []int {
		n := int(i.ReadUint32())
		if i.Err() != nil || n < 0 {
			return nil
		}
		out := make([]int, n)
		for k := range out {
			out[k] = int(i.ReadUint32())
		}
		return out
	}
	readLC := func() LinearCombination {
		n := int(i.ReadUint32())
		if i.Err() != nil {
			return nil
		}
		lc := make(LinearCombination, n)
		for k := range lc {
			lc[k].Coeff = i.ReadElement()
			lc[k].WID = int(i.ReadUint32())
		}
		return lc
	}

	d.PublicInputs = readIndices()
	d.PrivateInputs = readIndices()

	nc := int(i.ReadUint32())
	if i.Err() == nil {
		d.Constraints = make([]Constraint, nc)
		for k := range d.Constraints {
			d.Constraints[k].A = readLC()
			d.Constraints[k].B = readLC()
			d.Constraints[k].C = readLC()
		}
	}

	na := int(i.ReadUint32())
	if i.Err() == nil {
		d.Aux = make([]AuxComputation, na)
		for k := range d.Aux {
			d.Aux[k].Kind = AuxKind(i.ReadUint8())
			switch d.Aux[k].Kind {
			case AuxSubtract:
				d.Aux[k].Target = int(i.ReadUint32())
				d.Aux[k].Left = int(i.ReadUint32())
				d.Aux[k].Right = int(i.ReadUint32())
				d.Aux[k].Offset = i.ReadInt64()
			case AuxBitDecompose:
				d.Aux[k].Source = int(i.ReadUint32())
				d.Aux[k].NumBits = int(i.ReadUint32())
				d.Aux[k].Bits = readIndices()
			default:
				return nil, fmt.Errorf("unknown auxiliary computation kind %d", d.Aux[k].Kind)
			}
		}
	}

	if err := i.Err(); err != nil {
		return nil, fmt.Errorf("truncated r1cs definition artifact: %w", err)
	}
	if i.Remaining() != 0 {
		return nil, fmt.Errorf("trailing %d bytes after r1cs definition artifact", i.Remaining())
	}
	return d, nil
}
