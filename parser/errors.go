package parser

import "fmt"

// Rule names identify which acceptance rule a source violated. They are part
// of the diagnostic contract: callers and tests match on them.
const (
	RuleParameterCount  = "parameter-count"
	RuleParameterShape  = "parameter-shape"
	RuleStatement       = "unsupported-statement"
	RuleExpression      = "unsupported-expression"
	RuleDeclInitializer = "declaration-initializer"
	RuleAssertShape     = "assert-shape"
	RuleForInit         = "for-init"
	RuleForTest         = "for-test"
	RuleForUpdate       = "for-update"
	RuleSyntax          = "syntax"
)

// Error is a parse failure. It always names the violated rule and where the
// offending token sits in the source.
type Error struct {
	Rule string
	Pos  Position
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %s [%s]: %s", e.Pos, e.Rule, e.Msg)
}

func errAt(rule string, pos Position, format string, args ...interface{}) *Error {
	return &Error{Rule: rule, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
