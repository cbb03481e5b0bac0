package backend

import "fmt"

// EngineError wraps an opaque failure from an external proving engine with
// enough context to tell which engine and operation failed. It is never
// swallowed or downgraded to a default value.
type EngineError struct {
	Engine string
	Op     string
	Stderr string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s %s failed: %v (stderr: %s)", e.Engine, e.Op, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Engine, e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// NewEngineError builds an EngineError.
func NewEngineError(engine, op string, err error) *EngineError {
	return &EngineError{Engine: engine, Op: op, Err: err}
}

// NewEngineErrorStderr builds an EngineError carrying captured stderr.
func NewEngineErrorStderr(engine, op, stderr string, err error) *EngineError {
	return &EngineError{Engine: engine, Op: op, Stderr: stderr, Err: err}
}
