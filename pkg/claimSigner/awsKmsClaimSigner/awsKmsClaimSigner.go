package awsKmsClaimSigner

import (
	"context"
	cryptoEcdsa "crypto/ecdsa"
	"encoding/asn1"
	"fmt"
	"math/big"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmsTypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// KMSClient is the subset of the KMS API the signer uses.
type KMSClient interface {
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
}

var (
	secp256k1N     = crypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)

// AWSKMSClaimSigner signs claim digests with an ECC_SECG_P256K1 key held in AWS KMS.
type AWSKMSClaimSigner struct {
	logger    *zap.Logger
	kmsClient KMSClient
	keyId     string

	mu        sync.Mutex
	publicKey *cryptoEcdsa.PublicKey
}

func NewAWSKMSClaimSigner(awsCfg aws.Config, keyId string, logger *zap.Logger) *AWSKMSClaimSigner {
	return NewAWSKMSClaimSignerWithClient(kms.NewFromConfig(awsCfg), keyId, logger)
}

func NewAWSKMSClaimSignerWithClient(client KMSClient, keyId string, logger *zap.Logger) *AWSKMSClaimSigner {
	return &AWSKMSClaimSigner{
		logger:    logger,
		kmsClient: client,
		keyId:     keyId,
	}
}

func (a *AWSKMSClaimSigner) Address(ctx context.Context) (common.Address, error) {
	pk, err := a.getPublicKey(ctx)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pk), nil
}

func (a *AWSKMSClaimSigner) SignDigest(ctx context.Context, digest common.Hash) (*types.Signature, error) {
	expectedPubKey, err := a.getPublicKey(ctx)
	if err != nil {
		return nil, err
	}

	signOutput, err := a.kmsClient.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(a.keyId),
		Message:          digest.Bytes(),
		SigningAlgorithm: kmsTypes.SigningAlgorithmSpecEcdsaSha256,
		MessageType:      kmsTypes.MessageTypeDigest,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to sign with key %s", a.keyId)
	}

	r, s, err := parseDERSignature(signOutput.Signature)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse KMS signature")
	}

	// KMS does not canonicalize s
	if s.Cmp(secp256k1HalfN) > 0 {
		s = new(big.Int).Sub(secp256k1N, s)
	}

	sig := make([]byte, 65)
	r.FillBytes(sig[0:32])
	s.FillBytes(sig[32:64])

	for recoveryId := byte(0); recoveryId < 2; recoveryId++ {
		sig[64] = recoveryId

		recovered, err := crypto.SigToPub(digest.Bytes(), sig)
		if err != nil {
			a.logger.Debug("Signature recovery failed",
				zap.Uint8("recoveryId", recoveryId),
				zap.Error(err))
			continue
		}

		if recovered.X.Cmp(expectedPubKey.X) == 0 && recovered.Y.Cmp(expectedPubKey.Y) == 0 {
			sig[64] = 27 + recoveryId
			return types.SignatureFromBytes(sig)
		}
	}

	return nil, fmt.Errorf("could not determine valid recovery ID for key %s", a.keyId)
}

func (a *AWSKMSClaimSigner) getPublicKey(ctx context.Context) (*cryptoEcdsa.PublicKey, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.publicKey != nil {
		return a.publicKey, nil
	}

	out, err := a.kmsClient.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(a.keyId),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get public key for key %s", a.keyId)
	}

	pk, err := parseECDSAPublicKey(out.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse public key for key %s", a.keyId)
	}

	a.publicKey = pk
	return pk, nil
}

type asn1EcSig struct {
	R asn1.RawValue
	S asn1.RawValue
}

type asn1EcPublicKey struct {
	EcPublicKeyInfo asn1EcPublicKeyInfo
	PublicKey       asn1.BitString
}

type asn1EcPublicKeyInfo struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.ObjectIdentifier
}

// parseECDSAPublicKey parses the DER-encoded SubjectPublicKeyInfo returned by KMS
func parseECDSAPublicKey(derBytes []byte) (*cryptoEcdsa.PublicKey, error) {
	var pub asn1EcPublicKey
	if _, err := asn1.Unmarshal(derBytes, &pub); err != nil {
		return nil, fmt.Errorf("failed to parse ASN.1 public key: %w", err)
	}
	return crypto.UnmarshalPubkey(pub.PublicKey.Bytes)
}

func parseDERSignature(der []byte) (*big.Int, *big.Int, error) {
	var sig asn1EcSig
	if _, err := asn1.Unmarshal(der, &sig); err != nil {
		return nil, nil, err
	}

	r := new(big.Int).SetBytes(sig.R.Bytes)
	s := new(big.Int).SetBytes(sig.S.Bytes)
	if r.Sign() == 0 || s.Sign() == 0 || r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return nil, nil, fmt.Errorf("signature component out of range")
	}
	return r, s, nil
}
