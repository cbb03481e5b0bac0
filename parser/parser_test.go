package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/francoperez03/izinoir/ast"
)

func requireRule(t *testing.T, err error, rule string) {
	t.Helper()
	require.Error(t, err)
	var perr *Error
	require.True(t, errors.As(err, &perr), "expected *parser.Error, got %T: %v", err, err)
	require.Equal(t, rule, perr.Rule)
}

func TestParseArrowBasic(t *testing.T) {
	c, err := Parse(`([expected], [a, b]) => { assert(a * b == expected); }`)
	require.NoError(t, err)

	require.Equal(t, []ast.CircuitParam{{Name: "expected", Index: 0}}, c.Public)
	require.Equal(t, []ast.CircuitParam{{Name: "a", Index: 0}, {Name: "b", Index: 1}}, c.Private)
	require.Len(t, c.Statements, 1)

	a, ok := c.Statements[0].(*ast.Assert)
	require.True(t, ok)
	require.Equal(t, "((a * b) == expected)", ast.ExprString(a.Cond))
}

func TestParseFunctionForm(t *testing.T) {
	c, err := Parse(`function check([minimum], [balance]) { assert(balance >= minimum, "insufficient balance"); }`)
	require.NoError(t, err)
	require.Len(t, c.Statements, 1)
	a := c.Statements[0].(*ast.Assert)
	require.Equal(t, "insufficient balance", a.Message)
}

func TestParseImplicitAssert(t *testing.T) {
	c, err := Parse(`([x], [y]) => x == y * y`)
	require.NoError(t, err)
	require.Len(t, c.Statements, 1)
	_, ok := c.Statements[0].(*ast.Assert)
	require.True(t, ok, "single-expression body becomes an assert")
}

func TestParseMutPrefix(t *testing.T) {
	c, err := Parse(`([x], [y]) => {
		let mut_acc = y;
		mut_acc = acc + x;
		assert(acc == x);
	}`)
	require.NoError(t, err)
	require.Len(t, c.Statements, 3)

	decl := c.Statements[0].(*ast.VarDecl)
	require.Equal(t, "acc", decl.Name, "mut_ prefix is stripped")
	require.True(t, decl.Mutable)

	assign := c.Statements[1].(*ast.Assign)
	require.Equal(t, "acc", assign.Name)
	require.Equal(t, "(acc + x)", ast.ExprString(assign.Value))
}

func TestParseImmutableDecl(t *testing.T) {
	c, err := Parse(`([x], [y]) => { let t = x + y; assert(t == 5); }`)
	require.NoError(t, err)
	decl := c.Statements[0].(*ast.VarDecl)
	require.False(t, decl.Mutable)
}

func TestParseLengthRewrite(t *testing.T) {
	c, err := Parse(`([n], [items]) => { assert(items.length == n); }`)
	require.NoError(t, err)
	a := c.Statements[0].(*ast.Assert)
	bin := a.Cond.(*ast.Binary)
	call, ok := bin.Left.(*ast.Call)
	require.True(t, ok, ".length becomes a call node")
	require.Equal(t, "len", call.Method)
	require.Empty(t, call.Args)
}

func TestParseForLoop(t *testing.T) {
	tests := []struct {
		name      string
		update    string
		inclusive bool
		test      string
	}{
		{"postfix increment", "i++", false, "i < 4"},
		{"prefix increment", "++i", false, "i < 4"},
		{"explicit add", "i = i + 1", false, "i < 4"},
		{"inclusive bound", "i++", true, "i <= 4"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := `([x], [y]) => { for (let ` + tc.test[:1] + ` = 0; ` + tc.test + `; ` + tc.update + `) { assert(x == y); } }`
			c, err := Parse(src)
			require.NoError(t, err)
			loop := c.Statements[0].(*ast.ForStmt)
			require.Equal(t, "i", loop.Variable)
			require.Equal(t, tc.inclusive, loop.Inclusive)
			require.Len(t, loop.Body, 1)
		})
	}
}

func TestParseForLoopRejections(t *testing.T) {
	tests := []struct {
		name string
		src  string
		rule string
	}{
		{"init without let", `([x], [y]) => { for (i = 0; i < 4; i++) {} }`, RuleForInit},
		{"test on wrong variable", `([x], [y]) => { for (let i = 0; j < 4; i++) {} }`, RuleForTest},
		{"test with wrong operator", `([x], [y]) => { for (let i = 0; i > 4; i++) {} }`, RuleForTest},
		{"update of wrong variable", `([x], [y]) => { for (let i = 0; i < 4; j++) {} }`, RuleForUpdate},
		{"update step not one", `([x], [y]) => { for (let i = 0; i < 4; i = i + 2) {} }`, RuleForUpdate},
		{"decrement update", `([x], [y]) => { for (let i = 0; i < 4; i = i - 1) {} }`, RuleForUpdate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			requireRule(t, err, tc.rule)
		})
	}
}

func TestParseParameterRejections(t *testing.T) {
	tests := []struct {
		name string
		src  string
		rule string
	}{
		{"one parameter", `([a]) => { assert(a == 1); }`, RuleParameterCount},
		{"three parameters", `([a], [b], [c]) => { assert(a == b); }`, RuleParameterCount},
		{"non-array parameter", `(a, [b]) => { assert(a == b); }`, RuleParameterShape},
		{"nested pattern", `([[a]], [b]) => { assert(a == b); }`, RuleParameterShape},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			requireRule(t, err, tc.rule)
		})
	}
}

func TestParseStatementRejections(t *testing.T) {
	tests := []struct {
		name string
		src  string
		rule string
	}{
		{"bare expression", `([a], [b]) => { a + b; }`, RuleStatement},
		{"non-assert call", `([a], [b]) => { check(a); }`, RuleStatement},
		{"decl without initializer", `([a], [b]) => { let x; assert(a == b); }`, RuleDeclInitializer},
		{"assert with no args", `([a], [b]) => { assert(); }`, RuleAssertShape},
		{"assert with numeric message", `([a], [b]) => { assert(a == b, 3); }`, RuleAssertShape},
		{"return statement", `([a], [b]) => { return a; }`, RuleStatement},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			requireRule(t, err, tc.rule)
		})
	}
}

func TestParseIfElseChain(t *testing.T) {
	c, err := Parse(`([x], [y]) => {
		if (x > 1) {
			assert(y == 1);
		} else if (x > 0) {
			assert(y == 2);
		} else {
			assert(y == 3);
		}
	}`)
	require.NoError(t, err)
	outer := c.Statements[0].(*ast.IfStmt)
	require.Len(t, outer.Alternate, 1)
	inner, ok := outer.Alternate[0].(*ast.IfStmt)
	require.True(t, ok, "else-if nests as a single-statement alternate")
	require.Len(t, inner.Alternate, 1)
}

func TestParseTernaryAndPrecedence(t *testing.T) {
	c, err := Parse(`([x], [y]) => { assert(x == y > 2 ? 1 : 0); }`)
	require.NoError(t, err)
	a := c.Statements[0].(*ast.Assert)
	_, ok := a.Cond.(*ast.IfExpr)
	require.True(t, ok, "ternary binds loosest")

	c, err = Parse(`([x], [y]) => { assert(x + y * 2 == 10); }`)
	require.NoError(t, err)
	bin := c.Statements[0].(*ast.Assert).Cond.(*ast.Binary)
	require.Equal(t, "((x + (y * 2)) == 10)", ast.ExprString(bin))
}

func TestParseHexLiteral(t *testing.T) {
	c, err := Parse(`([x], [y]) => { assert(x == 0xff); }`)
	require.NoError(t, err)
	bin := c.Statements[0].(*ast.Assert).Cond.(*ast.Binary)
	lit := bin.Right.(*ast.IntLit)
	require.Equal(t, int64(255), lit.Value.Int64())
}

func TestParseComments(t *testing.T) {
	c, err := Parse(`([x], [y]) => {
		// the relation under proof
		assert(x == y); /* trailing
		block comment */
	}`)
	require.NoError(t, err)
	require.Len(t, c.Statements, 1)
}

func TestParseTrailingGarbage(t *testing.T) {
	_, err := Parse(`([x], [y]) => { assert(x == y); } extra`)
	requireRule(t, err, RuleSyntax)
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("([x], [y]) => {\n  let z;\n}")
	var perr *Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, 2, perr.Pos.Line)
}
