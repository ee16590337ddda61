// Command merkle-tool computes airdrop merkle roots and proofs offline from a
// recipient CSV, without running the API server. Useful for verifying a
// published root against the original recipient list or for generating a
// single proof by hand.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sablier-labs/merkle-api-go/pkg/campaign"
	"github.com/sablier-labs/merkle-api-go/pkg/chain"
	"github.com/sablier-labs/merkle-api-go/pkg/ingest"
)

func main() {
	csvFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "csv",
			Usage:    "Path to the recipient CSV file (header `address,amount`)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "chain",
			Value: "evm",
			Usage: "Chain of the recipient addresses: evm or solana",
		},
		&cli.IntFlag{
			Name:  "decimals",
			Usage: "Token decimal count used to scale CSV amounts",
		},
	}

	app := &cli.App{
		Name:    "merkle-tool",
		Usage:   "Offline merkle root and proof computation for airdrop campaigns",
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:   "root",
				Usage:  "Compute the merkle root of a recipient CSV",
				Flags:  csvFlags,
				Action: runRoot,
			},
			{
				Name:  "proof",
				Usage: "Print the claim data and merkle proof for one address",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "address",
						Usage:    "Recipient address to prove",
						Required: true,
					},
				}, csvFlags...),
				Action: runProof,
			},
			{
				Name:  "verify",
				Usage: "Verify a proof against a root without the CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "chain", Value: "evm", Usage: "Chain of the claim address: evm or solana"},
					&cli.StringFlag{Name: "root", Usage: "Merkle root (hex)", Required: true},
					&cli.Uint64Flag{Name: "index", Usage: "Leaf index of the claim", Required: true},
					&cli.StringFlag{Name: "address", Usage: "Claim address", Required: true},
					&cli.Uint64Flag{Name: "amount", Usage: "Claim amount in the smallest denomination", Required: true},
					&cli.StringFlag{Name: "proof", Usage: "Comma-separated sibling hashes (hex), leaf to root"},
				},
				Action: runVerify,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func buildFromCSV(c *cli.Context) (*campaign.Campaign, error) {
	tag := chain.Tag(c.String("chain"))
	codec, err := chain.FromTag(tag)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(c.String("csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	result, err := ingest.ParseCSV(f, codec, c.Int("decimals"))
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		for _, re := range result.Errors {
			fmt.Fprintf(os.Stderr, "row %d: %s\n", re.Row, re.Message)
		}
		return nil, fmt.Errorf("csv validation failed with %d error(s)", len(result.Errors))
	}

	return campaign.Create(result.Recipients, tag, campaign.CreateOptions{})
}

func runRoot(c *cli.Context) error {
	cmp, err := buildFromCSV(c)
	if err != nil {
		return err
	}

	fmt.Printf("root:        %s\n", cmp.RootHex())
	fmt.Printf("leaves:      %d\n", cmp.LeafCount())
	fmt.Printf("totalAmount: %d\n", cmp.TotalAmount())
	return nil
}

func runProof(c *cli.Context) error {
	cmp, err := buildFromCSV(c)
	if err != nil {
		return err
	}

	result, err := cmp.Lookup(c.String("address"))
	if err != nil {
		return err
	}
	if !result.Eligible {
		return fmt.Errorf("address %s is not a recipient", c.String("address"))
	}

	proof := make([]string, len(result.Proof))
	for i, h := range result.Proof {
		proof[i] = hex.EncodeToString(h[:])
	}

	out, err := json.MarshalIndent(map[string]any{
		"root":    cmp.RootHex(),
		"index":   result.Index,
		"address": result.Address,
		"amount":  result.Amount,
		"proof":   proof,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runVerify(c *cli.Context) error {
	root, err := parseHash(c.String("root"))
	if err != nil {
		return fmt.Errorf("invalid root: %w", err)
	}

	var proof [][32]byte
	if raw := strings.TrimSpace(c.String("proof")); raw != "" {
		for i, part := range strings.Split(raw, ",") {
			h, err := parseHash(strings.TrimSpace(part))
			if err != nil {
				return fmt.Errorf("invalid proof element %d: %w", i, err)
			}
			proof = append(proof, h)
		}
	}

	valid, err := campaign.CheckValidity(root, campaign.LeafData{
		Index:   c.Uint64("index"),
		Address: c.String("address"),
		Amount:  c.Uint64("amount"),
	}, proof, chain.Tag(c.String("chain")))
	if err != nil {
		return err
	}

	if !valid {
		fmt.Println("INVALID")
		os.Exit(1)
	}
	fmt.Println("VALID")
	return nil
}

func parseHash(s string) ([32]byte, error) {
	var out [32]byte
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("not valid hex")
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
