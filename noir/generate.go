// Package noir renders the canonical IR to Noir source text and the input
// files the Noir toolchain expects. It is a mechanical backend: every IR
// construct has a direct spelling, so unlike the R1CS path nothing here is
// rejected except constructs Noir itself cannot express.
package noir

import (
	"fmt"
	"strings"

	"github.com/francoperez03/izinoir/ast"
)

const indentUnit = "    "

// Generate renders a circuit as a Noir fn main. Public parameters come
// first, marked pub; every parameter is a Field.
func Generate(circuit *ast.ParsedCircuit) (string, error) {
	var sb strings.Builder

	params := make([]string, 0, len(circuit.Public)+len(circuit.Private))
	for _, p := range circuit.Public {
		params = append(params, fmt.Sprintf("%s: pub Field", p.Name))
	}
	for _, p := range circuit.Private {
		params = append(params, fmt.Sprintf("%s: Field", p.Name))
	}
	sb.WriteString("fn main(" + strings.Join(params, ", ") + ") {\n")

	for _, stmt := range circuit.Statements {
		if err := writeStatement(&sb, stmt, 1); err != nil {
			return "", err
		}
	}
	sb.WriteString("}\n")
	return sb.String(), nil
}

func writeStatement(sb *strings.Builder, stmt ast.Statement, depth int) error {
	indent := strings.Repeat(indentUnit, depth)
	switch s := stmt.(type) {
	case *ast.Assert:
		cond, err := renderExpr(s.Cond)
		if err != nil {
			return err
		}
		if s.Message != "" {
			fmt.Fprintf(sb, "%sassert(%s, %q);\n", indent, cond, s.Message)
		} else {
			fmt.Fprintf(sb, "%sassert(%s);\n", indent, cond)
		}
	case *ast.VarDecl:
		init, err := renderExpr(s.Init)
		if err != nil {
			return err
		}
		kw := "let"
		if s.Mutable {
			kw = "let mut"
		}
		fmt.Fprintf(sb, "%s%s %s = %s;\n", indent, kw, s.Name, init)
	case *ast.Assign:
		value, err := renderExpr(s.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(sb, "%s%s = %s;\n", indent, s.Name, value)
	case *ast.IfStmt:
		cond, err := renderExpr(s.Cond)
		if err != nil {
			return err
		}
		fmt.Fprintf(sb, "%sif %s {\n", indent, cond)
		for _, inner := range s.Consequent {
			if err := writeStatement(sb, inner, depth+1); err != nil {
				return err
			}
		}
		if s.Alternate != nil {
			fmt.Fprintf(sb, "%s} else {\n", indent)
			for _, inner := range s.Alternate {
				if err := writeStatement(sb, inner, depth+1); err != nil {
					return err
				}
			}
		}
		fmt.Fprintf(sb, "%s}\n", indent)
	case *ast.ForStmt:
		start, err := renderExpr(s.Start)
		if err != nil {
			return err
		}
		end, err := renderExpr(s.End)
		if err != nil {
			return err
		}
		rangeOp := ".."
		if s.Inclusive {
			rangeOp = "..="
		}
		fmt.Fprintf(sb, "%sfor %s in %s%s%s {\n", indent, s.Variable, start, rangeOp, end)
		for _, inner := range s.Body {
			if err := writeStatement(sb, inner, depth+1); err != nil {
				return err
			}
		}
		fmt.Fprintf(sb, "%s}\n", indent)
	default:
		return fmt.Errorf("noir: cannot render statement %T", stmt)
	}
	return nil
}

// Noir spells boolean combination with the bitwise operators.
var noirBinaryOps = map[ast.BinaryOp]string{
	ast.OpAdd: "+",
	ast.OpSub: "-",
	ast.OpMul: "*",
	ast.OpDiv: "/",
	ast.OpMod: "%",
	ast.OpEq:  "==",
	ast.OpNeq: "!=",
	ast.OpLt:  "<",
	ast.OpLte: "<=",
	ast.OpGt:  ">",
	ast.OpGte: ">=",
	ast.OpAnd: "&",
	ast.OpOr:  "|",
}

func renderExpr(e ast.Expr) (string, error) {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name, nil
	case *ast.IntLit:
		return x.Value.String(), nil
	case *ast.StrLit:
		return fmt.Sprintf("%q", x.Value), nil
	case *ast.Binary:
		op, ok := noirBinaryOps[x.Op]
		if !ok {
			return "", fmt.Errorf("noir: cannot render operator %s", x.Op)
		}
		left, err := renderExpr(x.Left)
		if err != nil {
			return "", err
		}
		right, err := renderExpr(x.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, op, right), nil
	case *ast.Unary:
		operand, err := renderExpr(x.Operand)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%s", x.Op, operand), nil
	case *ast.Member:
		obj, err := renderExpr(x.Object)
		if err != nil {
			return "", err
		}
		idx, err := renderExpr(x.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", obj, idx), nil
	case *ast.ArrayLit:
		parts := make([]string, len(x.Elements))
		for i, el := range x.Elements {
			s, err := renderExpr(el)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case *ast.Call:
		callee, err := renderExpr(x.Callee)
		if err != nil {
			return "", err
		}
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			s, err := renderExpr(a)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		if x.Method != "" {
			return fmt.Sprintf("%s.%s(%s)", callee, x.Method, strings.Join(args, ", ")), nil
		}
		return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", ")), nil
	case *ast.IfExpr:
		cond, err := renderExpr(x.Cond)
		if err != nil {
			return "", err
		}
		consequent, err := renderExpr(x.Consequent)
		if err != nil {
			return "", err
		}
		alternate, err := renderExpr(x.Alternate)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("if %s { %s } else { %s }", cond, consequent, alternate), nil
	default:
		return "", fmt.Errorf("noir: cannot render expression %T", e)
	}
}
