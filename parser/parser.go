package parser

import (
	"math/big"
	"strings"

	"github.com/francoperez03/izinoir/ast"
)

// Binding powers for the Pratt expression parser, lowest first. Postfix
// forms (call, index, property) bind tighter than any operator.
const (
	bpTernary = 1
	bpOr      = 2
	bpAnd     = 3
	bpEq      = 4
	bpCmp     = 5
	bpAdd     = 6
	bpMul     = 7
	bpUnary   = 8
)

var infixBP = map[tokenType]int{
	tOrOr:    bpOr,
	tAndAnd:  bpAnd,
	tEq:      bpEq,
	tNeq:     bpEq,
	tLt:      bpCmp,
	tLte:     bpCmp,
	tGt:      bpCmp,
	tGte:     bpCmp,
	tPlus:    bpAdd,
	tMinus:   bpAdd,
	tStar:    bpMul,
	tSlash:   bpMul,
	tPercent: bpMul,
}

var binaryOps = map[tokenType]ast.BinaryOp{
	tOrOr:    ast.OpOr,
	tAndAnd:  ast.OpAnd,
	tEq:      ast.OpEq,
	tNeq:     ast.OpNeq,
	tLt:      ast.OpLt,
	tLte:     ast.OpLte,
	tGt:      ast.OpGt,
	tGte:     ast.OpGte,
	tPlus:    ast.OpAdd,
	tMinus:   ast.OpSub,
	tStar:    ast.OpMul,
	tSlash:   ast.OpDiv,
	tPercent: ast.OpMod,
}

type parser struct {
	toks []token
	i    int
}

// Parse turns restricted source text into the canonical IR. The source must
// be a function-like text with exactly two array-destructured parameters:
//
//	([a, b], [c]) => { assert(a * c == b); }
//	function([a], [b]) { ... }
//
// A brace-less arrow body is treated as an implicit assert of that
// expression.
func Parse(src string) (*ast.ParsedCircuit, error) {
	p := &parser{toks: lexAll(src)}

	hasFunctionKw := false
	if p.peek().typ == tFunction {
		p.advance()
		hasFunctionKw = true
		if p.peek().typ == tIdent { // optional function name
			p.advance()
		}
	}

	public, private, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	circuit := &ast.ParsedCircuit{Public: public, Private: private}

	if !hasFunctionKw {
		if _, err := p.expect(tArrow, RuleSyntax, "expected => after parameter list"); err != nil {
			return nil, err
		}
	}

	if p.peek().typ == tLBrace {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		circuit.Statements = body
	} else {
		if hasFunctionKw {
			return nil, errAt(RuleSyntax, p.peek().pos, "function body must be a brace block")
		}
		cond, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		circuit.Statements = []ast.Statement{&ast.Assert{Cond: cond}}
	}

	for p.peek().typ == tSemi {
		p.advance()
	}
	if p.peek().typ != tEOF {
		return nil, errAt(RuleSyntax, p.peek().pos, "unexpected %q after function body", p.peek().lexeme)
	}
	return circuit, nil
}

func (p *parser) peek() token  { return p.toks[p.i] }
func (p *parser) peek2() token { // one token of lookahead past the current
	if p.i+1 < len(p.toks) {
		return p.toks[p.i+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) expect(typ tokenType, rule, msg string) (token, error) {
	t := p.peek()
	if t.typ != typ {
		return t, errAt(rule, t.pos, "%s, got %q", msg, t.lexeme)
	}
	return p.advance(), nil
}

// canonicalName strips the source-side mut_ mutability prefix. All IR
// consumers only ever see the canonical name.
func canonicalName(name string) (string, bool) {
	if rest, ok := strings.CutPrefix(name, "mut_"); ok && rest != "" {
		return rest, true
	}
	return name, false
}

func (p *parser) parseParams() ([]ast.CircuitParam, []ast.CircuitParam, error) {
	if _, err := p.expect(tLParen, RuleSyntax, "expected ( opening the parameter list"); err != nil {
		return nil, nil, err
	}
	public, err := p.parseArrayPattern()
	if err != nil {
		return nil, nil, err
	}
	if p.peek().typ == tRParen {
		return nil, nil, errAt(RuleParameterCount, p.peek().pos, "expected exactly 2 parameters, got 1")
	}
	if _, err := p.expect(tComma, RuleSyntax, "expected , between parameters"); err != nil {
		return nil, nil, err
	}
	private, err := p.parseArrayPattern()
	if err != nil {
		return nil, nil, err
	}
	if p.peek().typ == tComma {
		return nil, nil, errAt(RuleParameterCount, p.peek().pos, "expected exactly 2 parameters, got more")
	}
	if _, err := p.expect(tRParen, RuleSyntax, "expected ) closing the parameter list"); err != nil {
		return nil, nil, err
	}
	return public, private, nil
}

func (p *parser) parseArrayPattern() ([]ast.CircuitParam, error) {
	t := p.peek()
	if t.typ != tLBracket {
		return nil, errAt(RuleParameterShape, t.pos, "parameter must be an array-destructuring pattern like [a, b]")
	}
	p.advance()
	var params []ast.CircuitParam
	for p.peek().typ != tRBracket {
		id, err := p.expect(tIdent, RuleParameterShape, "expected identifier in destructuring pattern")
		if err != nil {
			return nil, err
		}
		name, _ := canonicalName(id.lexeme)
		params = append(params, ast.CircuitParam{Name: name, Index: len(params)})
		if p.peek().typ == tComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tRBracket, RuleParameterShape, "expected ] closing destructuring pattern"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(tLBrace, RuleSyntax, "expected {"); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for p.peek().typ != tRBrace {
		if p.peek().typ == tEOF {
			return nil, errAt(RuleSyntax, p.peek().pos, "unexpected end of input inside block")
		}
		if p.peek().typ == tSemi {
			p.advance()
			continue
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.advance() // }
	return stmts, nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	t := p.peek()
	switch t.typ {
	case tLet, tConst:
		return p.parseVarDecl()
	case tIf:
		return p.parseIf()
	case tFor:
		return p.parseFor()
	case tIdent:
		if p.peek2().typ == tAssign {
			return p.parseAssign()
		}
		return p.parseExprStatement()
	default:
		return nil, errAt(RuleStatement, t.pos, "unsupported statement starting with %q", t.lexeme)
	}
}

func (p *parser) parseVarDecl() (ast.Statement, error) {
	p.advance() // let or const
	id, err := p.expect(tIdent, RuleSyntax, "expected variable name")
	if err != nil {
		return nil, err
	}
	name, mutable := canonicalName(id.lexeme)
	if p.peek().typ != tAssign {
		return nil, errAt(RuleDeclInitializer, p.peek().pos, "declaration of %q requires an initializer", name)
	}
	p.advance()
	init, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	p.eatSemi()
	return &ast.VarDecl{Name: name, Mutable: mutable, Init: init}, nil
}

func (p *parser) parseAssign() (ast.Statement, error) {
	id := p.advance()
	name, _ := canonicalName(id.lexeme)
	p.advance() // =
	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	p.eatSemi()
	return &ast.Assign{Name: name, Value: value}, nil
}

// parseExprStatement accepts exactly one shape: a top-level assert call.
// Any other bare expression is a statement the subset does not admit.
func (p *parser) parseExprStatement() (ast.Statement, error) {
	pos := p.peek().pos
	e, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	call, ok := e.(*ast.Call)
	if !ok || call.Method != "" {
		return nil, errAt(RuleStatement, pos, "expression statements other than assert(...) are not supported")
	}
	callee, ok := call.Callee.(*ast.Ident)
	if !ok || callee.Name != "assert" {
		return nil, errAt(RuleStatement, pos, "expression statements other than assert(...) are not supported")
	}
	if len(call.Args) < 1 || len(call.Args) > 2 {
		return nil, errAt(RuleAssertShape, pos, "assert takes 1 or 2 arguments, got %d", len(call.Args))
	}
	a := &ast.Assert{Cond: call.Args[0]}
	if len(call.Args) == 2 {
		msg, ok := call.Args[1].(*ast.StrLit)
		if !ok {
			return nil, errAt(RuleAssertShape, pos, "assert message must be a string literal")
		}
		a.Message = msg.Value
	}
	p.eatSemi()
	return a, nil
}

func (p *parser) parseIf() (ast.Statement, error) {
	p.advance() // if
	if _, err := p.expect(tLParen, RuleSyntax, "expected ( after if"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tRParen, RuleSyntax, "expected ) after if condition"); err != nil {
		return nil, err
	}
	consequent, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Cond: cond, Consequent: consequent}
	if p.peek().typ == tElse {
		p.advance()
		if p.peek().typ == tIf {
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.Alternate = []ast.Statement{nested}
		} else {
			alt, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Alternate = alt
		}
	}
	return stmt, nil
}

// parseFor accepts only the canonical bounded shape:
//
//	for (let i = start; i < end; i++) { ... }
//
// with <= allowed in the test and ++i or i = i + 1 allowed as the update.
// Anything else is rejected with the specific violated sub-rule; there is no
// best-effort translation.
func (p *parser) parseFor() (ast.Statement, error) {
	p.advance() // for
	if _, err := p.expect(tLParen, RuleSyntax, "expected ( after for"); err != nil {
		return nil, err
	}

	// init: let i = start
	if p.peek().typ != tLet {
		return nil, errAt(RuleForInit, p.peek().pos, "for-loop init must be a let declaration")
	}
	p.advance()
	id, err := p.expect(tIdent, RuleForInit, "expected loop variable name")
	if err != nil {
		return nil, err
	}
	loopVar, _ := canonicalName(id.lexeme)
	if _, err := p.expect(tAssign, RuleForInit, "for-loop init must assign a start value"); err != nil {
		return nil, err
	}
	start, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tSemi, RuleSyntax, "expected ; after for-loop init"); err != nil {
		return nil, err
	}

	// test: i < end or i <= end, with the loop variable on the left
	testID := p.peek()
	if testID.typ != tIdent {
		return nil, errAt(RuleForTest, testID.pos, "for-loop test must compare the loop variable")
	}
	p.advance()
	if name, _ := canonicalName(testID.lexeme); name != loopVar {
		return nil, errAt(RuleForTest, testID.pos, "for-loop test must compare loop variable %q, got %q", loopVar, testID.lexeme)
	}
	var inclusive bool
	switch p.peek().typ {
	case tLt:
		inclusive = false
	case tLte:
		inclusive = true
	default:
		return nil, errAt(RuleForTest, p.peek().pos, "for-loop test must use < or <=")
	}
	p.advance()
	end, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tSemi, RuleSyntax, "expected ; after for-loop test"); err != nil {
		return nil, err
	}

	// update: i++, ++i or i = i + 1
	if err := p.parseForUpdate(loopVar); err != nil {
		return nil, err
	}
	if _, err := p.expect(tRParen, RuleSyntax, "expected ) after for-loop header"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Variable: loopVar, Start: start, End: end, Inclusive: inclusive, Body: body}, nil
}

func (p *parser) parseForUpdate(loopVar string) error {
	matchVar := func(t token) bool {
		name, _ := canonicalName(t.lexeme)
		return t.typ == tIdent && name == loopVar
	}
	t := p.peek()
	switch {
	case t.typ == tInc: // ++i
		p.advance()
		v := p.advance()
		if !matchVar(v) {
			return errAt(RuleForUpdate, v.pos, "for-loop update must increment loop variable %q", loopVar)
		}
		return nil
	case matchVar(t) && p.peek2().typ == tInc: // i++
		p.advance()
		p.advance()
		return nil
	case matchVar(t) && p.peek2().typ == tAssign: // i = i + 1
		p.advance()
		p.advance()
		rhs1 := p.advance()
		if !matchVar(rhs1) {
			return errAt(RuleForUpdate, rhs1.pos, "for-loop update must be exactly i++, ++i or i = i + 1")
		}
		if op := p.advance(); op.typ != tPlus {
			return errAt(RuleForUpdate, op.pos, "for-loop update must be exactly i++, ++i or i = i + 1")
		}
		one := p.advance()
		if one.typ != tInt || one.lexeme != "1" {
			return errAt(RuleForUpdate, one.pos, "for-loop update step must be exactly +1")
		}
		return nil
	}
	return errAt(RuleForUpdate, t.pos, "for-loop update must be exactly i++, ++i or i = i + 1")
}

func (p *parser) eatSemi() {
	if p.peek().typ == tSemi {
		p.advance()
	}
}

func (p *parser) parseExpr(minBP int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		switch t.typ {
		case tLParen: // call
			p.advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			left = &ast.Call{Callee: left, Args: args}
			continue
		case tLBracket: // computed indexing
			p.advance()
			idx, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tRBracket, RuleSyntax, "expected ] closing index"); err != nil {
				return nil, err
			}
			left = &ast.Member{Object: left, Index: idx}
			continue
		case tDot:
			p.advance()
			prop, err := p.expect(tIdent, RuleSyntax, "expected property name after .")
			if err != nil {
				return nil, err
			}
			// .length is length access, rewritten to a synthetic
			// zero-argument len call: both backends treat length as a
			// call, not a field.
			if prop.lexeme == "length" {
				left = &ast.Call{Callee: left, Method: "len"}
				continue
			}
			if p.peek().typ != tLParen {
				return nil, errAt(RuleExpression, prop.pos, "property access %q is not supported (only .length and method calls)", prop.lexeme)
			}
			p.advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			left = &ast.Call{Callee: left, Method: prop.lexeme, Args: args}
			continue
		case tQuestion:
			if minBP > bpTernary {
				return left, nil
			}
			p.advance()
			consequent, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tColon, RuleSyntax, "expected : in ternary expression"); err != nil {
				return nil, err
			}
			alternate, err := p.parseExpr(bpTernary)
			if err != nil {
				return nil, err
			}
			left = &ast.IfExpr{Cond: left, Consequent: consequent, Alternate: alternate}
			continue
		}

		bp, ok := infixBP[t.typ]
		if !ok || bp < minBP {
			return left, nil
		}
		p.advance()
		right, err := p.parseExpr(bp + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: binaryOps[t.typ], Left: left, Right: right}
	}
}

func (p *parser) parsePrefix() (ast.Expr, error) {
	t := p.peek()
	switch t.typ {
	case tIdent:
		p.advance()
		name, _ := canonicalName(t.lexeme)
		return &ast.Ident{Name: name}, nil
	case tInt:
		p.advance()
		v := new(big.Int)
		if _, ok := v.SetString(t.lexeme, 0); !ok {
			return nil, errAt(RuleSyntax, t.pos, "invalid numeric literal %q", t.lexeme)
		}
		return &ast.IntLit{Value: v}, nil
	case tString:
		p.advance()
		return &ast.StrLit{Value: t.lexeme}, nil
	case tMinus:
		p.advance()
		operand, err := p.parseExpr(bpUnary)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.OpNeg, Operand: operand}, nil
	case tBang:
		p.advance()
		operand, err := p.parseExpr(bpUnary)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.OpNot, Operand: operand}, nil
	case tLParen:
		p.advance()
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tRParen, RuleSyntax, "expected ) closing group"); err != nil {
			return nil, err
		}
		return e, nil
	case tLBracket:
		p.advance()
		var elems []ast.Expr
		for p.peek().typ != tRBracket {
			e, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if p.peek().typ == tComma {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(tRBracket, RuleSyntax, "expected ] closing array literal"); err != nil {
			return nil, err
		}
		return &ast.ArrayLit{Elements: elems}, nil
	case tIllegal:
		return nil, errAt(RuleSyntax, t.pos, "illegal token %q", t.lexeme)
	}
	return nil, errAt(RuleExpression, t.pos, "unsupported expression starting with %q", t.lexeme)
}

func (p *parser) parseArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	for p.peek().typ != tRParen {
		a, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.peek().typ == tComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tRParen, RuleSyntax, "expected ) closing argument list"); err != nil {
		return nil, err
	}
	return args, nil
}
