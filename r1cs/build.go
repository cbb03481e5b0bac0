package r1cs

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/francoperez03/izinoir/ast"
	"github.com/francoperez03/izinoir/logger"
)

// BuildOption configures the lowering.
type BuildOption func(*buildConfig) error

type buildConfig struct {
	comparisonBits int
}

// WithComparisonBits sets the range width used when lowering comparison
// operators. Operands must fit in n bits at proving time.
func WithComparisonBits(n int) BuildOption {
	return func(cfg *buildConfig) error {
		if n <= 0 || n > 252 {
			return fmt.Errorf("comparison bit width must be in [1, 252], got %d", n)
		}
		cfg.comparisonBits = n
		return nil
	}
}

type binding struct {
	wid     int
	mutable bool
}

type builder struct {
	cfg  buildConfig
	def  *Definition
	vars map[string]binding
	next int
}

// Build lowers a parsed circuit into an R1CS definition. The traversal is
// statement order and the output is fully reproducible: same IR, same
// witness indices, same constraint list.
//
// Private parameters take indices 1..k and public parameters k+1..k+m,
// after the reserved constant-one witness at index 0.
func Build(circuit *ast.ParsedCircuit, opts ...BuildOption) (*Definition, error) {
	cfg := buildConfig{comparisonBits: DefaultComparisonBits}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	b := &builder{
		cfg:  cfg,
		def:  &Definition{ComparisonBits: cfg.comparisonBits},
		vars: make(map[string]binding),
		next: 1, // 0 is the constant one
	}

	for _, p := range circuit.Private {
		wid := b.alloc()
		b.def.PrivateInputs = append(b.def.PrivateInputs, wid)
		if _, dup := b.vars[p.Name]; dup {
			return nil, fmt.Errorf("duplicate parameter name %q", p.Name)
		}
		b.vars[p.Name] = binding{wid: wid}
	}
	for _, p := range circuit.Public {
		wid := b.alloc()
		b.def.PublicInputs = append(b.def.PublicInputs, wid)
		if _, dup := b.vars[p.Name]; dup {
			return nil, fmt.Errorf("duplicate parameter name %q", p.Name)
		}
		b.vars[p.Name] = binding{wid: wid}
	}

	for _, stmt := range circuit.Statements {
		if err := b.lowerStatement(stmt); err != nil {
			return nil, err
		}
	}

	b.def.NumWitnesses = b.next
	logger.Logger().Debug().
		Int("nbWitnesses", b.def.NumWitnesses).
		Int("nbConstraints", len(b.def.Constraints)).
		Int("nbAux", len(b.def.Aux)).
		Msg("built r1cs")
	return b.def, nil
}

func (b *builder) alloc() int {
	wid := b.next
	b.next++
	return wid
}

func (b *builder) addConstraint(a, lb, c LinearCombination) {
	b.def.Constraints = append(b.def.Constraints, Constraint{A: a, B: lb, C: c})
}

func (b *builder) lowerStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Assert:
		return b.lowerAssert(s)
	case *ast.VarDecl:
		wid, err := b.lowerToWitness(s.Init)
		if err != nil {
			return err
		}
		if _, dup := b.vars[s.Name]; dup {
			return fmt.Errorf("redeclaration of %q", s.Name)
		}
		b.vars[s.Name] = binding{wid: wid, mutable: s.Mutable}
		return nil
	case *ast.Assign:
		bound, ok := b.vars[s.Name]
		if !ok {
			return fmt.Errorf("assignment to undeclared variable %q", s.Name)
		}
		if !bound.mutable {
			return fmt.Errorf("assignment to immutable variable %q", s.Name)
		}
		wid, err := b.lowerToWitness(s.Value)
		if err != nil {
			return err
		}
		b.vars[s.Name] = binding{wid: wid, mutable: true}
		return nil
	case *ast.IfStmt:
		return unsupported("if statement", "conditional lowering requires selector gadgets")
	case *ast.ForStmt:
		return unsupported("for loop", "loops are not unrolled by this backend")
	default:
		return unsupported(fmt.Sprintf("statement %T", stmt), "")
	}
}

func (b *builder) lowerAssert(a *ast.Assert) error {
	cond, ok := a.Cond.(*ast.Binary)
	if !ok {
		return unsupported("assert condition", "condition must be a comparison or equality, got %s", ast.ExprString(a.Cond))
	}
	switch cond.Op {
	case ast.OpEq:
		return b.lowerEquality(cond.Left, cond.Right)
	case ast.OpGte:
		return b.lowerComparison(cond.Left, cond.Right, 0)
	case ast.OpGt:
		return b.lowerComparison(cond.Left, cond.Right, -1)
	case ast.OpLte:
		return b.lowerComparison(cond.Right, cond.Left, 0)
	case ast.OpLt:
		return b.lowerComparison(cond.Right, cond.Left, -1)
	case ast.OpNeq:
		return unsupported("operator !=", "")
	case ast.OpAnd:
		return unsupported("operator &&", "")
	case ast.OpOr:
		return unsupported("operator ||", "")
	default:
		return unsupported(fmt.Sprintf("assert on operator %s", cond.Op), "")
	}
}

// lowerEquality pattern-matches the canonical shapes a*b==c, a+b==c and
// a-b==c (mul on either side) to avoid intermediate witnesses; everything
// else falls back to (left - right) · 1 = 0.
func (b *builder) lowerEquality(left, right ast.Expr) error {
	if t, rhs, ok := b.matchShape(left, right); ok {
		switch t.Op {
		case ast.OpMul:
			la, err := b.simpleTerm(t.Left)
			if err != nil {
				return err
			}
			lb, err := b.simpleTerm(t.Right)
			if err != nil {
				return err
			}
			lc, err := b.simpleTerm(rhs)
			if err != nil {
				return err
			}
			b.addConstraint(LinearCombination{la}, LinearCombination{lb}, LinearCombination{lc})
			return nil
		case ast.OpAdd, ast.OpSub:
			la, err := b.simpleTerm(t.Left)
			if err != nil {
				return err
			}
			lb, err := b.simpleTerm(t.Right)
			if err != nil {
				return err
			}
			if t.Op == ast.OpSub {
				lb.Coeff.Neg(&lb.Coeff)
			}
			lc, err := b.simpleTerm(rhs)
			if err != nil {
				return err
			}
			b.addConstraint(LinearCombination{la, lb}, lcOne(), LinearCombination{lc})
			return nil
		}
	}

	// generic fallback
	lt, err := b.lowerOperand(left)
	if err != nil {
		return err
	}
	rt, err := b.lowerOperand(right)
	if err != nil {
		return err
	}
	rt.Coeff.Neg(&rt.Coeff)
	b.addConstraint(LinearCombination{lt, rt}, lcOne(), nil)
	return nil
}

// matchShape recognizes a top-level binary arithmetic node on either side of
// the equality whose operands are all simple (identifier or literal). The
// returned rhs is the non-arithmetic side.
func (b *builder) matchShape(left, right ast.Expr) (bin *ast.Binary, rhs ast.Expr, ok bool) {
	if t, isBin := left.(*ast.Binary); isBin && isArithShape(t) && b.isSimple(t.Left) && b.isSimple(t.Right) && b.isSimple(right) {
		return t, right, true
	}
	if t, isBin := right.(*ast.Binary); isBin && isArithShape(t) && b.isSimple(t.Left) && b.isSimple(t.Right) && b.isSimple(left) {
		return t, left, true
	}
	return nil, nil, false
}

func isArithShape(t *ast.Binary) bool {
	return t.Op == ast.OpMul || t.Op == ast.OpAdd || t.Op == ast.OpSub
}

func (b *builder) isSimple(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.IntLit:
		return true
	case *ast.Ident:
		_, ok := b.vars[x.Name]
		return ok
	}
	return false
}

// simpleTerm converts an identifier or literal into a single term.
func (b *builder) simpleTerm(e ast.Expr) (Term, error) {
	switch x := e.(type) {
	case *ast.IntLit:
		return Term{Coeff: NewElement(x.Value), WID: 0}, nil
	case *ast.Ident:
		bound, ok := b.vars[x.Name]
		if !ok {
			return Term{}, fmt.Errorf("undefined identifier %q", x.Name)
		}
		return Term{Coeff: one(), WID: bound.wid}, nil
	}
	return Term{}, unsupported(fmt.Sprintf("expression %T", e), "%s is not a simple operand", ast.ExprString(e))
}

// lowerOperand reduces an arbitrary arithmetic expression to a single term,
// allocating intermediate witnesses for every binary sub-expression.
func (b *builder) lowerOperand(e ast.Expr) (Term, error) {
	switch x := e.(type) {
	case *ast.IntLit, *ast.Ident:
		return b.simpleTerm(e)
	case *ast.Binary:
		wid, err := b.lowerBinary(x)
		if err != nil {
			return Term{}, err
		}
		return Term{Coeff: one(), WID: wid}, nil
	case *ast.Unary:
		if x.Op != ast.OpNeg {
			return Term{}, unsupported(fmt.Sprintf("operator %s", x.Op), "")
		}
		operand, err := b.lowerOperand(x.Operand)
		if err != nil {
			return Term{}, err
		}
		// (-1)·operand = result
		out := b.alloc()
		operand.Coeff.Neg(&operand.Coeff)
		b.addConstraint(LinearCombination{operand}, lcOne(), LinearCombination{{Coeff: one(), WID: out}})
		return Term{Coeff: one(), WID: out}, nil
	case *ast.IfExpr:
		return Term{}, unsupported("ternary expression", "")
	case *ast.Call:
		if x.Method == "len" {
			return Term{}, unsupported("length access", "")
		}
		return Term{}, unsupported("call expression", "%s", ast.ExprString(x))
	case *ast.Member:
		return Term{}, unsupported("array indexing", "")
	case *ast.ArrayLit:
		return Term{}, unsupported("array literal", "")
	default:
		return Term{}, unsupported(fmt.Sprintf("expression %T", e), "")
	}
}

// lowerBinary allocates a fresh witness for l op r and emits the matching
// constraint. Division and modulo have no R1CS lowering here.
func (b *builder) lowerBinary(x *ast.Binary) (int, error) {
	switch x.Op {
	case ast.OpMul, ast.OpAdd, ast.OpSub:
	case ast.OpDiv, ast.OpMod:
		return 0, unsupported(fmt.Sprintf("operator %s", x.Op), "")
	default:
		return 0, unsupported(fmt.Sprintf("operator %s", x.Op), "nested boolean operators cannot produce a field value")
	}
	lt, err := b.lowerOperand(x.Left)
	if err != nil {
		return 0, err
	}
	rt, err := b.lowerOperand(x.Right)
	if err != nil {
		return 0, err
	}
	out := b.alloc()
	outLC := LinearCombination{{Coeff: one(), WID: out}}
	switch x.Op {
	case ast.OpMul:
		b.addConstraint(LinearCombination{lt}, LinearCombination{rt}, outLC)
	case ast.OpAdd:
		b.addConstraint(LinearCombination{lt, rt}, lcOne(), outLC)
	case ast.OpSub:
		rt.Coeff.Neg(&rt.Coeff)
		b.addConstraint(LinearCombination{lt, rt}, lcOne(), outLC)
	}
	return out, nil
}

// lowerToWitness binds an expression to a witness index. Identifiers alias
// their existing witness; literals get a dedicated constant-constrained
// witness; compound expressions lower through lowerOperand.
func (b *builder) lowerToWitness(e ast.Expr) (int, error) {
	if id, ok := e.(*ast.Ident); ok {
		bound, ok := b.vars[id.Name]
		if !ok {
			return 0, fmt.Errorf("undefined identifier %q", id.Name)
		}
		return bound.wid, nil
	}
	t, err := b.lowerOperand(e)
	if err != nil {
		return 0, err
	}
	if t.WID != 0 {
		return t.WID, nil
	}
	// constant: allocate a witness pinned to the value
	out := b.alloc()
	b.addConstraint(LinearCombination{t}, lcOne(), LinearCombination{{Coeff: one(), WID: out}})
	return out, nil
}

// lowerComparison lowers a >= b (offset 0) or a > b (offset -1):
//
//	diff = a - b + offset        subtract aux + linear constraint
//	bit_i · bit_i = bit_i        booleanity, i in [0, numBits)
//	Σ bit_i · 2^i = diff         weighted sum, with a bit_decompose aux
//
// A diff outside [0, 2^numBits) is unprovable and surfaces as a
// WitnessError at proving time.
func (b *builder) lowerComparison(a, c ast.Expr, offset int64) error {
	at, err := b.lowerOperandIndex(a)
	if err != nil {
		return err
	}
	bt, err := b.lowerOperandIndex(c)
	if err != nil {
		return err
	}

	diff := b.alloc()
	b.def.Aux = append(b.def.Aux, AuxComputation{
		Kind:   AuxSubtract,
		Target: diff,
		Left:   at,
		Right:  bt,
		Offset: offset,
	})

	diffLC := LinearCombination{
		{Coeff: one(), WID: at},
		{Coeff: minusOne(), WID: bt},
	}
	if offset != 0 {
		var off fr.Element
		off.SetInt64(offset)
		diffLC = append(diffLC, Term{Coeff: off, WID: 0})
	}
	b.addConstraint(diffLC, lcOne(), LinearCombination{{Coeff: one(), WID: diff}})

	numBits := b.cfg.comparisonBits
	bits := make([]int, numBits)
	var pow, two fr.Element
	pow.SetOne()
	two.SetUint64(2)
	sum := make(LinearCombination, numBits)
	for i := 0; i < numBits; i++ {
		bits[i] = b.alloc()
		bitLC := LinearCombination{{Coeff: one(), WID: bits[i]}}
		b.addConstraint(bitLC, bitLC, bitLC)
		sum[i] = Term{Coeff: pow, WID: bits[i]}
		pow.Mul(&pow, &two)
	}
	b.addConstraint(sum, lcOne(), LinearCombination{{Coeff: one(), WID: diff}})

	b.def.Aux = append(b.def.Aux, AuxComputation{
		Kind:    AuxBitDecompose,
		Source:  diff,
		Bits:    bits,
		NumBits: numBits,
	})
	return nil
}

// lowerOperandIndex is lowerOperand but always yields a witness index, so
// subtract aux computations have something to read.
func (b *builder) lowerOperandIndex(e ast.Expr) (int, error) {
	return b.lowerToWitness(e)
}
