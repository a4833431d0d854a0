package ledger

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"carmint/internal/domain"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// Signer holds the wallet's ed25519 payment key and witnesses unsigned
// minting transactions with it.
type Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewSigner builds a signer from a 32-byte ed25519 seed in hex.
func NewSigner(seedHex string) (*Signer, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("%w: decode signing key: %v", domain.ErrSigning, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: signing key must be %d bytes, got %d",
			domain.ErrSigning, ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Signer{priv: priv, pub: priv.Public().(ed25519.PublicKey)}, nil
}

// KeyHash returns the blake2b-224 hash of the wallet's public key, the
// payment credential the minting policy binds to.
func (s *Signer) KeyHash() ([]byte, error) {
	h, err := blake2b.New(paymentKeyHashLen, nil)
	if err != nil {
		return nil, err
	}
	h.Write(s.pub)
	return h.Sum(nil), nil
}

// Sign witnesses the transaction body and attaches the minting script.
// A key that does not hash to the policy's credential cannot satisfy the
// script, so the mismatch is rejected here instead of at the ledger.
func (s *Signer) Sign(unsigned domain.UnsignedTx) (domain.SignedTx, error) {
	keyHash, err := s.KeyHash()
	if err != nil {
		return domain.SignedTx{}, err
	}
	if !bytes.Equal(keyHash, unsigned.KeyHash) {
		return domain.SignedTx{}, fmt.Errorf("%w: wallet key does not match policy credential", domain.ErrSigning)
	}

	witnesses := witnessSet{
		VKeys: []vkeyWitness{{
			VKey:      s.pub,
			Signature: ed25519.Sign(s.priv, unsigned.BodyHash),
		}},
		NativeScripts: []cbor.RawMessage{cbor.RawMessage(unsigned.ScriptCBOR)},
	}
	raw, err := marshalSignedTx(unsigned.Body, witnesses, unsigned.AuxData)
	if err != nil {
		return domain.SignedTx{}, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	return domain.SignedTx{
		CBOR: raw,
		Hash: hex.EncodeToString(unsigned.BodyHash),
	}, nil
}
