package ast

import (
	"fmt"
	"strings"
)

// ExprString renders an expression in source-like form. The output is
// deterministic and is what diagnostics and tests compare against.
func ExprString(e Expr) string {
	switch x := e.(type) {
	case *Ident:
		return x.Name
	case *IntLit:
		return x.Value.String()
	case *StrLit:
		return fmt.Sprintf("%q", x.Value)
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", ExprString(x.Left), x.Op, ExprString(x.Right))
	case *Unary:
		return fmt.Sprintf("(%s%s)", x.Op, ExprString(x.Operand))
	case *Member:
		return fmt.Sprintf("%s[%s]", ExprString(x.Object), ExprString(x.Index))
	case *ArrayLit:
		parts := make([]string, len(x.Elements))
		for i, el := range x.Elements {
			parts[i] = ExprString(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Call:
		parts := make([]string, len(x.Args))
		for i, a := range x.Args {
			parts[i] = ExprString(a)
		}
		if x.Method != "" {
			return fmt.Sprintf("%s.%s(%s)", ExprString(x.Callee), x.Method, strings.Join(parts, ", "))
		}
		return fmt.Sprintf("%s(%s)", ExprString(x.Callee), strings.Join(parts, ", "))
	case *IfExpr:
		return fmt.Sprintf("(%s ? %s : %s)", ExprString(x.Cond), ExprString(x.Consequent), ExprString(x.Alternate))
	}
	return fmt.Sprintf("<unknown expr %T>", e)
}

// StatementString renders a statement on a single line (blocks nest with
// braces). Used by tests and trace logging.
func StatementString(s Statement) string {
	switch x := s.(type) {
	case *Assert:
		if x.Message != "" {
			return fmt.Sprintf("assert(%s, %q)", ExprString(x.Cond), x.Message)
		}
		return fmt.Sprintf("assert(%s)", ExprString(x.Cond))
	case *VarDecl:
		kw := "let"
		if x.Mutable {
			kw = "let mut"
		}
		return fmt.Sprintf("%s %s = %s", kw, x.Name, ExprString(x.Init))
	case *Assign:
		return fmt.Sprintf("%s = %s", x.Name, ExprString(x.Value))
	case *IfStmt:
		out := fmt.Sprintf("if (%s) { %s }", ExprString(x.Cond), statementsString(x.Consequent))
		if x.Alternate != nil {
			out += fmt.Sprintf(" else { %s }", statementsString(x.Alternate))
		}
		return out
	case *ForStmt:
		cmp := "<"
		if x.Inclusive {
			cmp = "<="
		}
		return fmt.Sprintf("for (%s = %s; %s %s %s; %s++) { %s }",
			x.Variable, ExprString(x.Start), x.Variable, cmp, ExprString(x.End), x.Variable, statementsString(x.Body))
	}
	return fmt.Sprintf("<unknown statement %T>", s)
}

func statementsString(list []Statement) string {
	parts := make([]string, len(list))
	for i, s := range list {
		parts[i] = StatementString(s)
	}
	return strings.Join(parts, "; ")
}
