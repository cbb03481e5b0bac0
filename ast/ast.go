// Package ast defines the canonical intermediate representation shared by
// every front-end and backend. A front-end adapter (currently parser/) emits
// a ParsedCircuit; the Noir generator and the R1CS builder consume it without
// knowing which source language produced it.
package ast

import "math/big"

// CircuitParam is one entry of the public or private argument list.
// Index is the position in the original list and is what aligns
// externally-supplied input values with witnesses.
type CircuitParam struct {
	Name  string
	Index int
}

// ParsedCircuit is the root of the IR. It is built once per compile and
// never mutated afterwards.
type ParsedCircuit struct {
	Public     []CircuitParam
	Private    []CircuitParam
	Statements []Statement
}

// BinaryOp enumerates the binary operators the IR admits.
type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpMod BinaryOp = "%"
	OpEq  BinaryOp = "=="
	OpNeq BinaryOp = "!="
	OpLt  BinaryOp = "<"
	OpLte BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGte BinaryOp = ">="
	OpAnd BinaryOp = "&&"
	OpOr  BinaryOp = "||"
)

// UnaryOp enumerates the unary operators the IR admits.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "!"
)

// Expr is the expression variant union. Implementations are the *Expr
// structs below and nothing else.
type Expr interface {
	isExpr()
}

// Ident is a reference to a parameter or a declared variable. The name is
// canonical: any mut_ prefix has already been stripped by the front-end.
type Ident struct {
	Name string
}

// IntLit is a numeric literal. The value is kept as a big.Int so field-sized
// constants survive the trip from source text.
type IntLit struct {
	Value *big.Int
}

// StrLit is a string literal; it only appears as an assert message.
type StrLit struct {
	Value string
}

// Binary is a binary operation left op right.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Unary is a prefix operation op operand.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

// Member is computed indexing object[index]. Plain .length property access
// never reaches the IR; front-ends rewrite it to Call{Method: "len"}.
type Member struct {
	Object Expr
	Index  Expr
}

// ArrayLit is an array literal [e0, e1, ...].
type ArrayLit struct {
	Elements []Expr
}

// Call is a function or method call. For method calls Callee is the receiver
// and Method the name; for plain calls Method is empty and Callee the target.
type Call struct {
	Callee Expr
	Method string
	Args   []Expr
}

// IfExpr is the ternary cond ? consequent : alternate.
type IfExpr struct {
	Cond       Expr
	Consequent Expr
	Alternate  Expr
}

func (*Ident) isExpr()    {}
func (*IntLit) isExpr()   {}
func (*StrLit) isExpr()   {}
func (*Binary) isExpr()   {}
func (*Unary) isExpr()    {}
func (*Member) isExpr()   {}
func (*ArrayLit) isExpr() {}
func (*Call) isExpr()     {}
func (*IfExpr) isExpr()   {}

// Statement is the statement variant union.
type Statement interface {
	isStatement()
}

// Assert is assert(cond) or assert(cond, msg).
type Assert struct {
	Cond    Expr
	Message string
}

// VarDecl declares a new variable. Mutable is explicit here; the source-side
// mut_ naming convention is a front-end concern and is gone by this point.
type VarDecl struct {
	Name    string
	Mutable bool
	Init    Expr
}

// Assign reassigns a previously declared variable.
type Assign struct {
	Name  string
	Value Expr
}

// IfStmt is if (cond) { ... } else { ... }. Alternate may be nil.
type IfStmt struct {
	Cond       Expr
	Consequent []Statement
	Alternate  []Statement
}

// ForStmt is the single accepted loop shape:
// for (let v = start; v < end; v++) with an optional <= test.
type ForStmt struct {
	Variable  string
	Start     Expr
	End       Expr
	Inclusive bool
	Body      []Statement
}

func (*Assert) isStatement()  {}
func (*VarDecl) isStatement() {}
func (*Assign) isStatement()  {}
func (*IfStmt) isStatement()  {}
func (*ForStmt) isStatement() {}
