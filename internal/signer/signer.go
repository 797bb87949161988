// Package signer provides the wallet collaborator contract: an address
// plus the ability to sign arbitrary payloads binding RFQ mutations to
// their creator.
package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs serialized RFQ payloads on behalf of one account.
type Signer interface {
	// Address returns the signer's 0x-prefixed account address.
	Address(ctx context.Context) (string, error)

	// SignPayload signs the serialized payload and returns a hex signature.
	SignPayload(ctx context.Context, payload []byte) (string, error)
}

// LocalSigner signs with an in-memory secp256k1 key using the Ethereum
// signed-message scheme.
type LocalSigner struct {
	key     *ecdsa.PrivateKey
	address string
}

// NewLocalSigner builds a signer from a hex-encoded private key
// (0x prefix optional).
func NewLocalSigner(hexKey string) (*LocalSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}
	return &LocalSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}, nil
}

// Address returns the account address derived from the key.
func (s *LocalSigner) Address(_ context.Context) (string, error) {
	return s.address, nil
}

// SignPayload signs keccak256 of the prefixed payload and returns the
// 65-byte signature hex-encoded with the legacy 27/28 recovery id.
func (s *LocalSigner) SignPayload(_ context.Context, payload []byte) (string, error) {
	digest := accounts.TextHash(payload)
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return "", fmt.Errorf("sign payload: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// VerifyPayload reports whether sigHex is a valid signature over payload
// by the given address.
func VerifyPayload(address string, payload []byte, sigHex string) (bool, error) {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return false, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return false, fmt.Errorf("invalid signature length %d", len(sig))
	}

	// Undo the legacy recovery id offset before recovery.
	cp := make([]byte, len(sig))
	copy(cp, sig)
	if cp[crypto.RecoveryIDOffset] >= 27 {
		cp[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(payload), cp)
	if err != nil {
		return false, fmt.Errorf("recover signer: %w", err)
	}
	recovered := crypto.PubkeyToAddress(*pub).Hex()
	return strings.EqualFold(recovered, address), nil
}
