// Package chain defines the contract for turning a generic proof record
// into a chain-specific, binary-exact form. Formatters own byte layout,
// account sizing and cost estimation for their target; callers never
// hand-assemble chain bytes.
package chain

import "fmt"

// Metadata describes a formatter's target.
type Metadata struct {
	// Chain is the target chain identifier, e.g. "solana".
	Chain string
	// ProvingSystem is the proof system the on-chain verifier expects.
	ProvingSystem string
	// ProofSize is the exact proof length in bytes the target accepts.
	ProofSize int
	// MaxPublicInputs is the verifier's public-input bound.
	MaxPublicInputs int
}

// FormattedProof is a chain-ready proof record. Raw bytes and base64 forms
// are both populated so callers embedding the result in JSON transports do
// not re-encode.
type FormattedProof struct {
	Proof        []byte
	ProofBase64  string
	PublicInputs [][]byte
	// PublicInputsHex holds each input as 0x-prefixed 32-byte big-endian hex.
	PublicInputsHex []string
	// VerifyingKeyAccount is the verifier account body, ready to write
	// on-chain after the runtime discriminator.
	VerifyingKeyAccount       []byte
	VerifyingKeyAccountBase64 string
	// AccountSize is the full on-chain account size including discriminator.
	AccountSize int
	// RentLamports estimates the rent-exempt balance for AccountSize.
	RentLamports uint64
}

// Formatter converts proofs for one target chain.
type Formatter interface {
	// FormatProof converts proof bytes, public inputs (0x hex or decimal
	// strings) and a raw verifying key into the chain's exact layout.
	FormatProof(proof []byte, publicInputs []string, verifyingKey []byte) (*FormattedProof, error)
	Metadata() Metadata
}

// FormatError reports a size or layout mismatch against the target chain's
// expected binary format.
type FormatError struct {
	Chain string
	Field string
	Msg   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s format: %s: %s", e.Chain, e.Field, e.Msg)
}

// Errorf builds a FormatError.
func Errorf(chain, field, format string, args ...interface{}) *FormatError {
	return &FormatError{Chain: chain, Field: field, Msg: fmt.Sprintf(format, args...)}
}
