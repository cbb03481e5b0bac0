package r1cs

import "fmt"

// UnsupportedError reports IR that is valid but that this backend cannot
// lower (it may be lowerable by the Noir backends). Distinct from a parse
// error on purpose.
type UnsupportedError struct {
	Construct string
	Detail    string
}

func (e *UnsupportedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s is unsupported in the R1CS backend", e.Construct)
	}
	return fmt.Sprintf("%s is unsupported in the R1CS backend: %s", e.Construct, e.Detail)
}

func unsupported(construct, format string, args ...interface{}) *UnsupportedError {
	return &UnsupportedError{Construct: construct, Detail: fmt.Sprintf(format, args...)}
}

// WitnessError reports that an auxiliary computation cannot produce a valid
// value for the given inputs, i.e. the asserted relation is false. It aborts
// only the current proof attempt; the compiled circuit stays usable.
type WitnessError struct {
	Index int
	Msg   string
}

func (e *WitnessError) Error() string {
	return fmt.Sprintf("witness computation failed at index %d: %s", e.Index, e.Msg)
}

func witnessErr(index int, format string, args ...interface{}) *WitnessError {
	return &WitnessError{Index: index, Msg: fmt.Sprintf(format, args...)}
}

// UnsatisfiedError reports a fully solved witness that violates a
// constraint, i.e. an asserted equality is false for the given inputs.
// Distinct from WitnessError (no witness could be derived at all) and from
// engine failures.
type UnsatisfiedError struct {
	Constraint int
	Msg        string
}

func (e *UnsatisfiedError) Error() string {
	return fmt.Sprintf("constraint %d not satisfied: %s", e.Constraint, e.Msg)
}
