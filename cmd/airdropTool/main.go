package main

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/merkle-airdrop-go/internal/aws"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/allocations"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/claimSigner"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/claimSigner/awsKmsClaimSigner"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/claimSigner/localClaimSigner"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/config"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/logger"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/signatureValidator"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/typedData"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

func main() {
	domainFlags := []cli.Flag{
		&cli.Uint64Flag{
			Name:    "chain-id",
			Usage:   fmt.Sprintf("Ethereum chain ID: %s", config.GetSupportedChainIDsString()),
			Value:   uint64(config.ChainId_EthereumAnvil),
			EnvVars: []string{config.EnvAirdropChainID},
		},
		&cli.StringFlag{
			Name:     "verifying-contract",
			Usage:    "Address bound into the EIP-712 domain",
			EnvVars:  []string{config.EnvAirdropVerifyingContract},
			Required: true,
		},
	}

	app := &cli.App{
		Name:  "airdrop-tool",
		Usage: "Tooling for building and claiming a merkle airdrop",
		Description: `Builds the eligibility tree, computes and signs claim digests,
and checks proofs against a published merkle file.`,
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:  "generate-input",
				Usage: "Write an input file giving every account the same amount",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "account",
						Usage:    "Eligible account (repeatable)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "amount",
						Usage:    "Amount in base units for every account",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Input file to write",
						Value: "input.json",
					},
				},
				Action: generateInputCommand,
			},
			{
				Name:  "make-merkle",
				Usage: "Build the merkle tree and write every account's proof",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "input",
						Usage: "Input file with the allocations",
						Value: "input.json",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Merkle file to write",
						Value: "output.json",
					},
				},
				Action: makeMerkleCommand,
			},
			{
				Name:  "message-hash",
				Usage: "Print the digest an account signs to claim an amount",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "account", Usage: "Claiming account", Required: true},
					&cli.StringFlag{Name: "amount", Usage: "Amount in base units", Required: true},
				}, domainFlags...),
				Action: messageHashCommand,
			},
			{
				Name:  "sign",
				Usage: "Sign a claim for the signer's own account",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "amount", Usage: "Amount in base units", Required: true},
					&cli.StringFlag{Name: "private-key", Usage: "Hex private key of the claiming account", EnvVars: []string{"AIRDROP_CLAIMANT_PRIVATE_KEY"}},
					&cli.StringFlag{Name: "kms-key-id", Usage: "AWS KMS key id or alias of the claiming account"},
					&cli.StringFlag{Name: "aws-region", Usage: "AWS region override for KMS"},
				}, domainFlags...),
				Action: signCommand,
			},
			{
				Name:  "split-signature",
				Usage: "Split a 65 byte signature into v, r and s",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "signature", Usage: "Hex encoded r || s || v", Required: true},
				},
				Action: splitSignatureCommand,
			},
			{
				Name:  "verify-proof",
				Usage: "Check an account's proof in a merkle file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "merkle-file", Usage: "Merkle file", Value: "output.json"},
					&cli.StringFlag{Name: "account", Usage: "Account to check", Required: true},
				},
				Action: verifyProofCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func generateInputCommand(c *cli.Context) error {
	amount, err := types.ParseAmount(c.String("amount"))
	if err != nil {
		return err
	}

	var accounts []common.Address
	for _, a := range c.StringSlice("account") {
		if !common.IsHexAddress(a) {
			return fmt.Errorf("invalid account address: %q", a)
		}
		accounts = append(accounts, common.HexToAddress(a))
	}

	if err := allocations.GenerateDefaultInput(c.String("output"), accounts, amount); err != nil {
		return err
	}
	fmt.Printf("Wrote %d allocations to %s\n", len(accounts), c.String("output"))
	return nil
}

func makeMerkleCommand(c *cli.Context) error {
	allocs, err := allocations.ReadInput(c.String("input"))
	if err != nil {
		return err
	}

	tree, err := merkle.BuildMerkleTree(allocs)
	if err != nil {
		return fmt.Errorf("failed to build merkle tree: %w", err)
	}

	out, err := allocations.BuildOutput(tree)
	if err != nil {
		return err
	}
	if err := allocations.WriteOutput(c.String("output"), out); err != nil {
		return err
	}

	fmt.Printf("Merkle root:  %s\n", out.MerkleRoot)
	fmt.Printf("Accounts:     %d\n", len(out.Claims))
	fmt.Printf("Total amount: %s\n", out.TotalAmount)
	fmt.Printf("Wrote proofs to %s\n", c.String("output"))
	return nil
}

func domainFromFlags(c *cli.Context) (*typedData.Domain, error) {
	chainID := config.ChainId(c.Uint64("chain-id"))
	if _, ok := config.ChainIdToName[chainID]; !ok {
		return nil, fmt.Errorf("unsupported chain ID %d. Supported: %s", chainID, config.GetSupportedChainIDsString())
	}
	contract := c.String("verifying-contract")
	if !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("invalid verifying contract address: %q", contract)
	}
	return typedData.NewDomain(chainID.BigInt(), common.HexToAddress(contract)), nil
}

func parsePositiveAmount(s string) (*big.Int, error) {
	amount, err := types.ParseAmount(s)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return amount, nil
}

func messageHashCommand(c *cli.Context) error {
	domain, err := domainFromFlags(c)
	if err != nil {
		return err
	}
	if !common.IsHexAddress(c.String("account")) {
		return fmt.Errorf("invalid account address: %q", c.String("account"))
	}
	amount, err := parsePositiveAmount(c.String("amount"))
	if err != nil {
		return err
	}

	digest, err := domain.ClaimDigest(common.HexToAddress(c.String("account")), amount)
	if err != nil {
		return err
	}
	fmt.Println(digest.Hex())
	return nil
}

func signCommand(c *cli.Context) error {
	domain, err := domainFromFlags(c)
	if err != nil {
		return err
	}
	amount, err := parsePositiveAmount(c.String("amount"))
	if err != nil {
		return err
	}

	var signer claimSigner.IClaimSigner
	switch {
	case c.String("private-key") != "" && c.String("kms-key-id") != "":
		return fmt.Errorf("use either --private-key or --kms-key-id, not both")
	case c.String("private-key") != "":
		signer, err = localClaimSigner.NewLocalClaimSignerFromHex(c.String("private-key"))
		if err != nil {
			return err
		}
	case c.String("kms-key-id") != "":
		l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		awsCfg, err := aws.LoadAWSConfig(c.Context, c.String("aws-region"))
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		if arn, err := aws.CallerArn(c.Context, awsCfg); err == nil {
			l.Sugar().Infow("Signing with AWS KMS", "caller", arn, "keyId", c.String("kms-key-id"))
		}
		signer = awsKmsClaimSigner.NewAWSKMSClaimSigner(awsCfg, c.String("kms-key-id"), l)
	default:
		return fmt.Errorf("one of --private-key or --kms-key-id is required")
	}

	claim, err := claimSigner.SignClaim(c.Context, signer, domain, amount)
	if err != nil {
		return err
	}

	fmt.Printf("account:   %s\n", claim.Account.Hex())
	fmt.Printf("amount:    %s\n", claim.Amount.String())
	fmt.Printf("digest:    %s\n", claim.Digest.Hex())
	printSignature(claim.Signature)
	return nil
}

func splitSignatureCommand(c *cli.Context) error {
	raw, err := hexutil.Decode(ensureHexPrefix(c.String("signature")))
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	sig, err := types.SignatureFromBytes(raw)
	if err != nil {
		return err
	}
	printSignature(sig)
	return nil
}

func verifyProofCommand(c *cli.Context) error {
	out, err := allocations.ReadOutput(c.String("merkle-file"))
	if err != nil {
		return err
	}
	if !common.IsHexAddress(c.String("account")) {
		return fmt.Errorf("invalid account address: %q", c.String("account"))
	}
	account := common.HexToAddress(c.String("account"))

	entry, ok := out.Lookup(account)
	if !ok {
		return fmt.Errorf("%s is not in the eligibility set", account.Hex())
	}
	root, err := out.Root()
	if err != nil {
		return err
	}
	proof, err := entry.DecodeProof()
	if err != nil {
		return err
	}
	amount, err := types.ParseAmount(entry.Amount)
	if err != nil {
		return err
	}
	leaf, err := merkle.HashLeaf(account, amount)
	if err != nil {
		return err
	}
	if !merkle.VerifyProof(proof, root, leaf) {
		return fmt.Errorf("proof for %s does not verify against %s", account.Hex(), out.MerkleRoot)
	}

	fmt.Printf("valid: %s may claim %s under %s\n", account.Hex(), entry.Amount, out.MerkleRoot)
	return nil
}

func printSignature(sig *types.Signature) {
	fmt.Printf("signature: %s\n", sig.String())
	fmt.Printf("v:         %d\n", sig.V)
	fmt.Printf("r:         %s\n", hexutil.Encode(sig.R[:]))
	fmt.Printf("s:         %s\n", hexutil.Encode(sig.S[:]))
	if !signatureValidator.IsCanonical(sig) {
		fmt.Println("warning: signature is not in canonical low-s form and will be rejected")
	}
}

func ensureHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}
