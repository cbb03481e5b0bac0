// Package solana formats Groth16 proofs and verifying keys for a
// Solana-style on-chain verifier. The verifier account layout is a binary
// compatibility contract: every offset below must match the on-chain
// program exactly, byte for byte.
package solana

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/francoperez03/izinoir/chain"
	"github.com/francoperez03/izinoir/r1cs"
)

const (
	// G1Size is an uncompressed big-endian G1 point.
	G1Size = 64
	// G2Size is an uncompressed big-endian G2 point (x.c0|x.c1|y.c0|y.c1).
	G2Size = 128
	// FieldSize is a big-endian field element.
	FieldSize = 32
	// ProofSize is A(G1) + B(G2) + C(G1).
	ProofSize = 256
	// DiscriminatorSize is the runtime's account discriminator.
	DiscriminatorSize = 8
	// MaxPublicInputs bounds on-chain verification compute.
	MaxPublicInputs = 16

	// vkAccountFixedSize covers discriminator, authority, input count,
	// alpha G1, beta/gamma/delta G2 and the k vector length prefix.
	vkAccountFixedSize = DiscriminatorSize + 32 + 1 + G1Size + 3*G2Size + 4

	// lamportsPerByteYear approximates the runtime's rent rate; the 128-byte
	// bias matches its per-account overhead.
	lamportsPerByteYear = 6960
	accountOverhead     = 128
)

// AccountSize returns the full verifier account size for n public inputs.
// The k vector holds n+1 G1 points, one per input plus the constant term.
func AccountSize(nrPublicInputs int) int {
	return vkAccountFixedSize + (nrPublicInputs+1)*G1Size
}

// RentLamports estimates the rent-exempt balance for an account of the
// given size.
func RentLamports(size int) uint64 {
	return uint64(accountOverhead+size) * lamportsPerByteYear
}

// Formatter implements chain.Formatter for the Solana Groth16 verifier.
type Formatter struct{}

// New returns the Solana formatter.
func New() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Metadata() chain.Metadata {
	return chain.Metadata{
		Chain:           "solana",
		ProvingSystem:   "groth16",
		ProofSize:       ProofSize,
		MaxPublicInputs: MaxPublicInputs,
	}
}

// verifyingKey is the subset of a gnark raw verifying key the on-chain
// verifier needs.
type verifyingKey struct {
	alphaG1 []byte
	betaG2  []byte
	gammaG2 []byte
	deltaG2 []byte
	k       [][]byte
}

// FormatProof converts a 256-byte proof, its public inputs and a gnark raw
// verifying key into the verifier's exact byte layout.
func (f *Formatter) FormatProof(proof []byte, publicInputs []string, rawVK []byte) (*chain.FormattedProof, error) {
	if len(proof) != ProofSize {
		return nil, chain.Errorf("solana", "proof", "expected %d bytes, got %d", ProofSize, len(proof))
	}
	if len(publicInputs) > MaxPublicInputs {
		return nil, chain.Errorf("solana", "public inputs", "verifier supports at most %d, got %d", MaxPublicInputs, len(publicInputs))
	}

	inputBytes := make([][]byte, len(publicInputs))
	inputHex := make([]string, len(publicInputs))
	for i, s := range publicInputs {
		b, err := encodePublicInput(s)
		if err != nil {
			return nil, err
		}
		inputBytes[i] = b
		inputHex[i] = "0x" + hex.EncodeToString(b)
	}

	vk, err := parseRawVerifyingKey(rawVK)
	if err != nil {
		return nil, err
	}
	if len(vk.k) != len(publicInputs)+1 {
		return nil, chain.Errorf("solana", "verifying key", "k vector has %d points, want %d for %d public inputs",
			len(vk.k), len(publicInputs)+1, len(publicInputs))
	}

	body := accountBody(vk, len(publicInputs))
	size := AccountSize(len(publicInputs))
	return &chain.FormattedProof{
		Proof:                     proof,
		ProofBase64:               base64.StdEncoding.EncodeToString(proof),
		PublicInputs:              inputBytes,
		PublicInputsHex:           inputHex,
		VerifyingKeyAccount:       body,
		VerifyingKeyAccountBase64: base64.StdEncoding.EncodeToString(body),
		AccountSize:               size,
		RentLamports:              RentLamports(size),
	}, nil
}

// VerifyingKeyAccount converts a gnark raw verifying key into the verifier
// account body for a circuit with the given public-input count, without
// requiring a proof.
func VerifyingKeyAccount(rawVK []byte, nrPublicInputs int) ([]byte, error) {
	if nrPublicInputs < 0 || nrPublicInputs > MaxPublicInputs {
		return nil, chain.Errorf("solana", "public inputs", "verifier supports at most %d, got %d", MaxPublicInputs, nrPublicInputs)
	}
	vk, err := parseRawVerifyingKey(rawVK)
	if err != nil {
		return nil, err
	}
	if len(vk.k) != nrPublicInputs+1 {
		return nil, chain.Errorf("solana", "verifying key", "k vector has %d points, want %d for %d public inputs",
			len(vk.k), nrPublicInputs+1, nrPublicInputs)
	}
	return accountBody(vk, nrPublicInputs), nil
}

// encodePublicInput parses a 0x-hex or decimal input into a 32-byte
// big-endian array, rejecting values outside the scalar field.
func encodePublicInput(s string) ([]byte, error) {
	var v *big.Int
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, ok = new(big.Int).SetString(s[2:], 16)
	} else {
		v, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		return nil, chain.Errorf("solana", "public input", "not a field element: %q", s)
	}
	if v.Sign() < 0 || v.Cmp(r1cs.Modulus()) >= 0 {
		return nil, chain.Errorf("solana", "public input", "value %s outside the scalar field", v)
	}
	b := make([]byte, FieldSize)
	v.FillBytes(b)
	return b, nil
}

// parseRawVerifyingKey reads the points the verifier needs out of the gnark
// raw encoding:
//
//	alpha G1 | beta G1 | beta G2 | gamma G2 | delta G1 | delta G2 |
//	uint32 BE k count | k G1 points | commitment data (ignored)
//
// Trailing commitment bytes are tolerated; anything shorter than the fixed
// region is a layout error.
func parseRawVerifyingKey(raw []byte) (*verifyingKey, error) {
	const fixed = G1Size + G1Size + G2Size + G2Size + G1Size + G2Size + 4
	if len(raw) < fixed {
		return nil, chain.Errorf("solana", "verifying key", "raw key too short: %d bytes, need at least %d", len(raw), fixed)
	}
	off := 0
	take := func(n int) []byte {
		b := raw[off : off+n]
		off += n
		return b
	}
	vk := &verifyingKey{}
	vk.alphaG1 = take(G1Size)
	take(G1Size) // beta G1, unused by the verifier
	vk.betaG2 = take(G2Size)
	vk.gammaG2 = take(G2Size)
	take(G1Size) // delta G1, unused by the verifier
	vk.deltaG2 = take(G2Size)

	kLen := int(binary.BigEndian.Uint32(take(4)))
	if kLen < 1 || kLen > MaxPublicInputs+1 {
		return nil, chain.Errorf("solana", "verifying key", "k vector length %d out of range", kLen)
	}
	if len(raw) < off+kLen*G1Size {
		return nil, chain.Errorf("solana", "verifying key", "raw key truncated: %d k points declared, %d bytes remain", kLen, len(raw)-off)
	}
	vk.k = make([][]byte, kLen)
	for i := range vk.k {
		vk.k[i] = take(G1Size)
	}
	return vk, nil
}

// accountBody serializes the verifier account payload after the 8-byte
// discriminator: authority (zeroed, assigned at initialization), input
// count, alpha G1, beta/gamma/delta G2, then the k vector with its borsh
// u32 little-endian length prefix.
func accountBody(vk *verifyingKey, nrPublicInputs int) []byte {
	body := make([]byte, 0, AccountSize(nrPublicInputs)-DiscriminatorSize)
	body = append(body, make([]byte, 32)...)
	body = append(body, byte(nrPublicInputs))
	body = append(body, vk.alphaG1...)
	body = append(body, vk.betaG2...)
	body = append(body, vk.gammaG2...)
	body = append(body, vk.deltaG2...)
	body = binary.LittleEndian.AppendUint32(body, uint32(len(vk.k)))
	for _, p := range vk.k {
		body = append(body, p...)
	}
	return body
}
