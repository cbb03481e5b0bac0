// Command izinoir compiles restricted-JavaScript circuits and drives the
// proving backends from the command line.
//
// Usage:
//
//	izinoir compile  -src circuit.js -name payment -out build/ [-noir] [-bits 64]
//	izinoir prove    -src circuit.js -backend groth16 -inputs inputs.json -out proof.bin
//	izinoir verify   -src circuit.js -backend groth16 -proof proof.bin -inputs public.json
//	izinoir vk-export -src circuit.js -out vk_account.bin
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"

	izinoir "github.com/francoperez03/izinoir"
	"github.com/francoperez03/izinoir/backend"
	"github.com/francoperez03/izinoir/backend/groth16"
	"github.com/francoperez03/izinoir/chain/solana"
	"github.com/francoperez03/izinoir/logger"
	"github.com/francoperez03/izinoir/r1cs"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "compile":
		err = runCompile(os.Args[2:])
	case "prove":
		err = runProve(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "vk-export":
		err = runVKExport(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		logger.Logger().Error().Err(err).Msg(os.Args[1] + " failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: izinoir <compile|prove|verify|vk-export> [flags]")
	os.Exit(2)
}

// manifest is the compiled-circuit metadata written next to the .r1cs
// artifact.
type manifest struct {
	Name           string    `cbor:"name"`
	Version        string    `cbor:"version"`
	NbPublic       int       `cbor:"nbPublic"`
	NbPrivate      int       `cbor:"nbPrivate"`
	NbConstraints  int       `cbor:"nbConstraints"`
	ComparisonBits int       `cbor:"comparisonBits"`
	CreatedAt      time.Time `cbor:"createdAt"`
}

func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	src := fs.String("src", "", "circuit source file")
	name := fs.String("name", "circuit", "circuit name")
	out := fs.String("out", ".", "output directory")
	bits := fs.Int("bits", 0, "comparison bit width (default 64)")
	emitNoir := fs.Bool("noir", false, "also write generated Noir source")
	fs.Parse(args)

	source, err := readSource(*src)
	if err != nil {
		return err
	}
	var opts []r1cs.BuildOption
	if *bits != 0 {
		opts = append(opts, r1cs.WithComparisonBits(*bits))
	}
	def, err := izinoir.BuildR1CS(source, opts...)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(*out, *name+".r1cs"), def.Serialize(), 0o644); err != nil {
		return err
	}

	m := manifest{
		Name:           *name,
		Version:        r1cs.FormatVersion,
		NbPublic:       len(def.PublicInputs),
		NbPrivate:      len(def.PrivateInputs),
		NbConstraints:  len(def.Constraints),
		ComparisonBits: def.ComparisonBits,
		CreatedAt:      time.Now().UTC(),
	}
	manifestBytes, err := cbor.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(*out, *name+".manifest.cbor"), manifestBytes, 0o644); err != nil {
		return err
	}

	if *emitNoir {
		noirSrc, err := izinoir.GenerateNoir(source)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(*out, *name+".nr"), []byte(noirSrc), 0o644); err != nil {
			return err
		}
	}
	logger.Logger().Info().
		Str("name", *name).
		Int("constraints", len(def.Constraints)).
		Int("witnesses", def.NumWitnesses).
		Msg("compiled")
	return nil
}

// inputsFile is the JSON shape of -inputs: decimal or 0x-hex strings.
type inputsFile struct {
	Public  []string `json:"public"`
	Private []string `json:"private"`
}

func runProve(args []string) error {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	src := fs.String("src", "", "circuit source file")
	backendName := fs.String("backend", "groth16", "proving backend (groth16|nargo)")
	inputsPath := fs.String("inputs", "", "inputs JSON file")
	out := fs.String("out", "proof.bin", "proof output file")
	bits := fs.Int("bits", 0, "comparison bit width (default 64)")
	fs.Parse(args)

	source, err := readSource(*src)
	if err != nil {
		return err
	}
	public, private, err := readInputs(*inputsPath)
	if err != nil {
		return err
	}
	system, err := izinoir.NewBackend(izinoir.BackendKind(*backendName))
	if err != nil {
		return err
	}
	var opts []backend.CompileOption
	if *bits != 0 {
		opts = append(opts, backend.WithComparisonBits(*bits))
	}
	proof, err := izinoir.Prove(context.Background(), system, source, public, private, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, proof.Bytes, 0o644); err != nil {
		return err
	}
	publicsJSON, err := json.MarshalIndent(proof.PublicInputs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out+".public.json", publicsJSON, 0o644); err != nil {
		return err
	}
	logger.Logger().Info().Int("bytes", len(proof.Bytes)).Str("out", *out).Msg("proof written")
	return nil
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	src := fs.String("src", "", "circuit source file")
	backendName := fs.String("backend", "groth16", "proving backend (groth16|nargo)")
	proofPath := fs.String("proof", "", "proof file")
	inputsPath := fs.String("inputs", "", "public inputs JSON file (array of strings)")
	fs.Parse(args)

	source, err := readSource(*src)
	if err != nil {
		return err
	}
	proofBytes, err := os.ReadFile(*proofPath)
	if err != nil {
		return err
	}
	inputsJSON, err := os.ReadFile(*inputsPath)
	if err != nil {
		return err
	}
	var publicInputs []string
	if err := json.Unmarshal(inputsJSON, &publicInputs); err != nil {
		return fmt.Errorf("parse public inputs: %w", err)
	}
	system, err := izinoir.NewBackend(izinoir.BackendKind(*backendName))
	if err != nil {
		return err
	}
	ctx := context.Background()
	circuit, err := system.Compile(ctx, source)
	if err != nil {
		return err
	}
	ok, err := system.VerifyProof(ctx, circuit, proofBytes, publicInputs)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("proof rejected")
	}
	logger.Logger().Info().Msg("proof verified")
	return nil
}

func runVKExport(args []string) error {
	fs := flag.NewFlagSet("vk-export", flag.ExitOnError)
	src := fs.String("src", "", "circuit source file")
	out := fs.String("out", "vk_account.bin", "verifier account body output file")
	fs.Parse(args)

	source, err := readSource(*src)
	if err != nil {
		return err
	}
	b := groth16.New()
	ctx := context.Background()
	compiled, err := b.Compile(ctx, source, backend.WithEagerSetup())
	if err != nil {
		return err
	}
	circuit := compiled.(*groth16.Circuit)
	rawVK, err := circuit.VerifyingKeyRaw(ctx)
	if err != nil {
		return err
	}
	body, err := solana.VerifyingKeyAccount(rawVK, compiled.NbPublicInputs())
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, body, 0o644); err != nil {
		return err
	}
	size := solana.AccountSize(compiled.NbPublicInputs())
	logger.Logger().Info().
		Int("accountSize", size).
		Uint64("rentLamports", solana.RentLamports(size)).
		Str("out", *out).
		Msg("verifier account body written")
	return nil
}

func readSource(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("-src is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readInputs(path string) (public, private []*big.Int, err error) {
	if path == "" {
		return nil, nil, fmt.Errorf("-inputs is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var f inputsFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, nil, fmt.Errorf("parse inputs: %w", err)
	}
	// Decimal by default, hex with a 0x prefix.
	parse := func(values []string) ([]*big.Int, error) {
		out := make([]*big.Int, len(values))
		for i, s := range values {
			e, err := r1cs.ParseInput(s)
			if err != nil {
				return nil, err
			}
			out[i] = new(big.Int)
			e.BigInt(out[i])
		}
		return out, nil
	}
	if public, err = parse(f.Public); err != nil {
		return nil, nil, err
	}
	if private, err = parse(f.Private); err != nil {
		return nil, nil, err
	}
	return public, private, nil
}
