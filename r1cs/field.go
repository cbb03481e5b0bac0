package r1cs

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// FieldSize is the byte width of a serialized field element.
const FieldSize = 32

// ParseFieldElement parses a field element from a hex string. It tolerates
// a 0x prefix, odd-length digits and empty/zero spellings, and reduces the
// value into the field.
func ParseFieldElement(s string) (fr.Element, error) {
	var e fr.Element
	s = strings.TrimSpace(s)
	if s == "" || s == "0" || s == "0x0" || s == "0x00" {
		return e, nil
	}
	digits := strings.TrimPrefix(s, "0x")
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return e, fmt.Errorf("invalid field element %q: %w", s, err)
	}
	v := new(big.Int).SetBytes(raw)
	e.SetBigInt(v)
	return e, nil
}

// ParseInput parses a user-supplied input value: decimal by default, hex
// with a 0x prefix. This is the accepted spelling for public inputs on
// every backend; FormatFieldElement is the emitted one.
func ParseInput(s string) (fr.Element, error) {
	var e fr.Element
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return ParseFieldElement(s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return e, fmt.Errorf("invalid input %q: not a decimal or 0x-hex integer", s)
	}
	e.SetBigInt(v)
	return e, nil
}

// FormatFieldElement renders a field element as a 0x-prefixed 32-byte
// big-endian hex string, the wire format for public inputs.
func FormatFieldElement(e fr.Element) string {
	b := e.Bytes()
	return "0x" + hex.EncodeToString(b[:])
}

// ElementBytes returns the 32-byte big-endian encoding of e.
func ElementBytes(e fr.Element) [FieldSize]byte {
	return e.Bytes()
}
